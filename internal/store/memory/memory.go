package memory

import (
	"context"
	"sync"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"
)

// Store is an in-process credential store. Everything is lost on restart.
type Store struct {
	mu sync.Mutex

	identities map[string]model.Identity
	sessions   map[string]model.Session
	profiles   map[string]model.Profile
}

var _ store.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		identities: make(map[string]model.Identity),
		sessions:   make(map[string]model.Session),
		profiles:   make(map[string]model.Profile),
	}
}

func (s *Store) Close() error { return nil }

type codeError string

func (e codeError) Error() string { return string(e) }

func errWithCode(code string) error { return codeError(code) }

// Reset drops all data. Tests use it between cases.
func (s *Store) Reset(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identities = make(map[string]model.Identity)
	s.sessions = make(map[string]model.Session)
	s.profiles = make(map[string]model.Profile)
}
