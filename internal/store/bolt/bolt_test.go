package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"
	"pingate-bank/web/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStoreFromFile(filepath.Join(t.TempDir(), "bank.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return newTestStore(t)
	})
}

func TestPinHashSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.db")
	ctx := context.Background()

	s, err := NewStoreFromFile(path, nil)
	require.NoError(t, err)
	id, err := s.CreateIdentity(ctx, model.Identity{Email: "persist@example.com", PasswordHash: "pw-hash"})
	require.NoError(t, err)
	_, err = s.UpsertPinHash(ctx, model.Profile{UserID: id.ID}, "digest")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewStoreFromFile(path, nil)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetIdentityByEmail(ctx, "persist@example.com")
	require.NoError(t, err)
	assert.Equal(t, "pw-hash", got.PasswordHash)

	p, err := s.GetProfile(ctx, id.ID)
	require.NoError(t, err)
	assert.Equal(t, "digest", p.PinHash)
}

func TestCreateIdentity_EmptyEmail(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateIdentity(context.Background(), model.Identity{Email: " "})
	assert.ErrorIs(t, err, store.ErrConflict)
}
