package bolt

import (
	"context"
	"strings"
	"time"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"

	"go.etcd.io/bbolt"
)

func emailKey(email string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) CreateIdentity(_ context.Context, id model.Identity) (model.Identity, error) {
	id.Email = strings.TrimSpace(id.Email)
	if id.Email == "" {
		return model.Identity{}, store.ErrConflict
	}
	if strings.TrimSpace(id.ID) == "" {
		id.ID = newID()
	}
	now := time.Now().UTC()
	id.CreatedAt = now
	id.UpdatedAt = now

	err := s.db.Update(func(tx *bbolt.Tx) error {
		emails := tx.Bucket(bucketEmails)
		if emails.Get(emailKey(id.Email)) != nil {
			return store.ErrConflict
		}
		identities := tx.Bucket(bucketIdentities)
		if identities.Get([]byte(id.ID)) != nil {
			return store.ErrConflict
		}
		if err := emails.Put(emailKey(id.Email), []byte(id.ID)); err != nil {
			return err
		}
		return putJSON(identities, id.ID, identityRecord(id))
	})
	if err != nil {
		return model.Identity{}, err
	}
	return id, nil
}

func (s *Store) GetIdentityByID(_ context.Context, id string) (*model.Identity, error) {
	var rec identityRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket(bucketIdentities), id, &rec)
	})
	if err != nil {
		return nil, err
	}
	out := rec.model()
	return &out, nil
}

func (s *Store) GetIdentityByEmail(_ context.Context, email string) (*model.Identity, error) {
	var rec identityRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(bucketEmails).Get(emailKey(email))
		if id == nil {
			return store.ErrNotFound
		}
		return getJSON(tx.Bucket(bucketIdentities), string(id), &rec)
	})
	if err != nil {
		return nil, err
	}
	out := rec.model()
	return &out, nil
}
