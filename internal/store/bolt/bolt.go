// Package bolt provides a single-file credential store backed by BBolt.
package bolt

import (
	"encoding/json"
	"fmt"
	"time"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var (
	bucketIdentities = []byte("identities")
	bucketEmails     = []byte("identity_emails")
	bucketSessions   = []byte("identity_sessions")
	bucketProfiles   = []byte("profiles")
)

// Store implements store.Store on top of a BBolt database.
type Store struct {
	db *bbolt.DB
}

var _ store.Store = (*Store)(nil)

// NewStore wraps an already opened database and creates missing buckets.
func NewStore(db *bbolt.DB) (*Store, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketIdentities, bucketEmails, bucketSessions, bucketProfiles} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewStoreFromFile opens (or creates) the database at path.
func NewStoreFromFile(path string, options *bbolt.Options) (*Store, error) {
	if options == nil {
		options = &bbolt.Options{Timeout: 5 * time.Second}
	}
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	s, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Records mirror the model types but keep the secret fields that the model
// hides from JSON.
type identityRecord struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r identityRecord) model() model.Identity {
	return model.Identity{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type profileRecord struct {
	UserID       string     `json:"user_id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         model.Role `json:"role"`
	PinHash      string     `json:"pin_hash,omitempty"`
	PinUpdatedAt *time.Time `json:"pin_updated_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (r profileRecord) model() model.Profile {
	return model.Profile(r)
}

func newProfileRecord(p model.Profile) profileRecord {
	return profileRecord(p)
}

func getJSON(b *bbolt.Bucket, key string, v any) error {
	data := b.Get([]byte(key))
	if data == nil {
		return store.ErrNotFound
	}
	return json.Unmarshal(data, v)
}

func putJSON(b *bbolt.Bucket, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), data)
}

func newID() string {
	return uuid.NewString()
}
