package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"
)

func (s *Store) CreateProfile(_ context.Context, p model.Profile) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(p.UserID) == "" {
		return model.Profile{}, errWithCode("user_id_required")
	}
	if _, ok := s.identities[p.UserID]; !ok {
		return model.Profile{}, store.ErrNotFound
	}
	if _, ok := s.profiles[p.UserID]; ok {
		return model.Profile{}, store.ErrConflict
	}
	return s.insertProfileLocked(p), nil
}

func (s *Store) insertProfileLocked(p model.Profile) model.Profile {
	now := time.Now().UTC()
	if p.Role == "" {
		p.Role = model.RoleUser
	}
	if p.PinHash != "" {
		p.PinUpdatedAt = &now
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	s.profiles[p.UserID] = p
	return p
}

func (s *Store) GetProfile(_ context.Context, userID string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListProfiles(_ context.Context, f store.ProfileFilter) ([]model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		if f.Role != "" && p.Role != f.Role {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) UpsertPinHash(_ context.Context, defaults model.Profile, pinHash string) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.identities[defaults.UserID]; !ok {
		return model.Profile{}, store.ErrNotFound
	}

	existing, ok := s.profiles[defaults.UserID]
	if !ok {
		defaults.PinHash = pinHash
		return s.insertProfileLocked(defaults), nil
	}

	now := time.Now().UTC()
	existing.PinHash = pinHash
	existing.PinUpdatedAt = &now
	existing.UpdatedAt = now
	s.profiles[existing.UserID] = existing
	return existing, nil
}
