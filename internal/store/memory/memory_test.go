package memory

import (
	"context"
	"strings"
	"testing"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"
	"pingate-bank/web/internal/store/storetest"

	"github.com/stretchr/testify/assert"
)

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return NewStore()
	})
}

func TestCreateIdentity_RequiresEmail(t *testing.T) {
	s := NewStore()

	_, err := s.CreateIdentity(context.Background(), model.Identity{Email: "   "})
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "email_required"))
}

func TestCreateProfile_RequiresUserID(t *testing.T) {
	s := NewStore()

	_, err := s.CreateProfile(context.Background(), model.Profile{})
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "user_id_required"))
}

func TestReset(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.CreateIdentity(ctx, model.Identity{Email: "a@example.com"})
	assert.NoError(t, err)

	s.Reset(ctx)

	_, err = s.GetIdentityByEmail(ctx, "a@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetProfile_ReturnsCopy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	id, err := s.CreateIdentity(ctx, model.Identity{Email: "copy@example.com"})
	assert.NoError(t, err)
	_, err = s.CreateProfile(ctx, model.Profile{UserID: id.ID, FirstName: "orig"})
	assert.NoError(t, err)

	p, err := s.GetProfile(ctx, id.ID)
	assert.NoError(t, err)
	p.FirstName = "mutated"

	again, err := s.GetProfile(ctx, id.ID)
	assert.NoError(t, err)
	assert.Equal(t, "orig", again.FirstName)
}
