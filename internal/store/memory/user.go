package memory

import (
	"context"
	"strings"
	"time"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"
)

func (s *Store) CreateIdentity(_ context.Context, id model.Identity) (model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.TrimSpace(id.Email)
	if email == "" {
		return model.Identity{}, errWithCode("email_required")
	}

	for _, existing := range s.identities {
		if strings.EqualFold(existing.Email, email) {
			return model.Identity{}, store.ErrConflict
		}
	}

	now := time.Now().UTC()
	if strings.TrimSpace(id.ID) == "" {
		id.ID = newID()
	}
	id.Email = email
	id.CreatedAt = now
	id.UpdatedAt = now
	s.identities[id.ID] = id
	return id, nil
}

func (s *Store) GetIdentityByID(_ context.Context, id string) (*model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.identities[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetIdentityByEmail(_ context.Context, email string) (*model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.identities {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}
