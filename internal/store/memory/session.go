package memory

import (
	"context"
	"strings"
	"time"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"
)

func (s *Store) CreateSession(_ context.Context, sess model.Session) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.identities[sess.IdentityID]; !ok {
		return model.Session{}, store.ErrNotFound
	}
	if strings.TrimSpace(sess.ID) == "" {
		sess.ID = newID()
	}
	if _, dup := s.sessions[sess.ID]; dup {
		return model.Session{}, store.ErrConflict
	}
	sess.CreatedAt = time.Now().UTC()
	sess.RevokedAt = nil
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *Store) GetSession(_ context.Context, id string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sess, nil
}

func (s *Store) RevokeSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return store.ErrNotFound
	}
	if sess.RevokedAt == nil {
		now := time.Now().UTC()
		sess.RevokedAt = &now
		s.sessions[id] = sess
	}
	return nil
}

// PurgeSessions drops sessions that expired or were revoked before cutoff.
func (s *Store) PurgeSessions(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if sess.ExpiresAt.Before(cutoff) || (sess.RevokedAt != nil && sess.RevokedAt.Before(cutoff)) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}
