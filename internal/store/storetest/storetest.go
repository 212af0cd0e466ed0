// Package storetest holds the behavior every store.Store backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a backend. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("IdentityLifecycle", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.CreateIdentity(ctx, model.Identity{Email: "alice@example.com", PasswordHash: "hash"})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "alice@example.com", created.Email)
		assert.NotZero(t, created.CreatedAt)

		byID, err := s.GetIdentityByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "hash", byID.PasswordHash)

		byEmail, err := s.GetIdentityByEmail(ctx, "ALICE@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)

		_, err = s.CreateIdentity(ctx, model.Identity{Email: "Alice@Example.com", PasswordHash: "other"})
		assert.ErrorIs(t, err, store.ErrConflict)

		_, err = s.GetIdentityByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.GetIdentityByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("SessionLifecycle", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.CreateIdentity(ctx, model.Identity{Email: "bob@example.com", PasswordHash: "hash"})
		require.NoError(t, err)

		sess, err := s.CreateSession(ctx, model.Session{IdentityID: id.ID, ExpiresAt: time.Now().Add(time.Hour)})
		require.NoError(t, err)
		assert.NotEmpty(t, sess.ID)
		assert.True(t, sess.Active(time.Now()))

		got, err := s.GetSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, id.ID, got.IdentityID)
		assert.Nil(t, got.RevokedAt)

		require.NoError(t, s.RevokeSession(ctx, sess.ID))
		require.NoError(t, s.RevokeSession(ctx, sess.ID), "revoking twice is a no-op")

		got, err = s.GetSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.NotNil(t, got.RevokedAt)
		assert.False(t, got.Active(time.Now()))

		assert.ErrorIs(t, s.RevokeSession(ctx, "00000000-0000-0000-0000-000000000000"), store.ErrNotFound)

		_, err = s.CreateSession(ctx, model.Session{
			IdentityID: "00000000-0000-0000-0000-000000000000",
			ExpiresAt:  time.Now().Add(time.Hour),
		})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("ProfileCreateAndGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.CreateIdentity(ctx, model.Identity{Email: "carol@example.com", PasswordHash: "hash"})
		require.NoError(t, err)

		_, err = s.GetProfile(ctx, id.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)

		p, err := s.CreateProfile(ctx, model.Profile{UserID: id.ID, Email: id.Email, FirstName: "carol"})
		require.NoError(t, err)
		assert.Equal(t, model.RoleUser, p.Role)
		assert.False(t, p.HasPin())

		_, err = s.CreateProfile(ctx, model.Profile{UserID: id.ID})
		assert.ErrorIs(t, err, store.ErrConflict)

		got, err := s.GetProfile(ctx, id.ID)
		require.NoError(t, err)
		assert.Equal(t, "carol", got.FirstName)
		assert.Empty(t, got.PinHash)
	})

	t.Run("UpsertPinHashCreatesMissingProfile", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.CreateIdentity(ctx, model.Identity{Email: "dave@example.com", PasswordHash: "hash"})
		require.NoError(t, err)

		p, err := s.UpsertPinHash(ctx, model.Profile{UserID: id.ID, Email: id.Email, FirstName: "dave"}, "digest-1")
		require.NoError(t, err)
		assert.Equal(t, "digest-1", p.PinHash)
		assert.Equal(t, model.RoleUser, p.Role)
		assert.NotNil(t, p.PinUpdatedAt)

		got, err := s.GetProfile(ctx, id.ID)
		require.NoError(t, err)
		assert.Equal(t, "digest-1", got.PinHash)
		assert.Equal(t, "dave", got.FirstName)
	})

	t.Run("UpsertPinHashOverwritesAndKeepsFields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		id, err := s.CreateIdentity(ctx, model.Identity{Email: "erin@example.com", PasswordHash: "hash"})
		require.NoError(t, err)
		_, err = s.CreateProfile(ctx, model.Profile{UserID: id.ID, Email: id.Email, FirstName: "Erin", Role: model.RoleAdmin})
		require.NoError(t, err)

		_, err = s.UpsertPinHash(ctx, model.Profile{UserID: id.ID, FirstName: "ignored"}, "digest-1")
		require.NoError(t, err)
		p, err := s.UpsertPinHash(ctx, model.Profile{UserID: id.ID, FirstName: "ignored"}, "digest-2")
		require.NoError(t, err)

		assert.Equal(t, "digest-2", p.PinHash)
		assert.Equal(t, "Erin", p.FirstName)
		assert.Equal(t, model.RoleAdmin, p.Role)
	})

	t.Run("UpsertPinHashUnknownIdentity", func(t *testing.T) {
		s := newStore(t)
		_, err := s.UpsertPinHash(context.Background(), model.Profile{UserID: "00000000-0000-0000-0000-000000000000"}, "digest")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("ListProfilesFiltersByRole", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for i, email := range []string{"u1@example.com", "u2@example.com", "root@example.com"} {
			id, err := s.CreateIdentity(ctx, model.Identity{Email: email, PasswordHash: "hash"})
			require.NoError(t, err)
			role := model.RoleUser
			if i == 2 {
				role = model.RoleAdmin
			}
			_, err = s.CreateProfile(ctx, model.Profile{UserID: id.ID, Email: email, Role: role})
			require.NoError(t, err)
		}

		all, err := s.ListProfiles(ctx, store.ProfileFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		admins, err := s.ListProfiles(ctx, store.ProfileFilter{Role: model.RoleAdmin})
		require.NoError(t, err)
		require.Len(t, admins, 1)
		assert.Equal(t, "root@example.com", admins[0].Email)

		limited, err := s.ListProfiles(ctx, store.ProfileFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, limited, 2)
	})

	t.Run("PurgeSessions", func(t *testing.T) {
		s := newStore(t)
		purger, ok := s.(store.SessionPurger)
		if !ok {
			t.Skip("store does not purge sessions")
		}
		ctx := context.Background()

		id, err := s.CreateIdentity(ctx, model.Identity{Email: "frank@example.com", PasswordHash: "hash"})
		require.NoError(t, err)
		dead, err := s.CreateSession(ctx, model.Session{IdentityID: id.ID, ExpiresAt: time.Now().Add(-time.Hour)})
		require.NoError(t, err)
		live, err := s.CreateSession(ctx, model.Session{IdentityID: id.ID, ExpiresAt: time.Now().Add(time.Hour)})
		require.NoError(t, err)

		n, err := purger.PurgeSessions(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = s.GetSession(ctx, dead.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.GetSession(ctx, live.ID)
		assert.NoError(t, err)
	})
}
