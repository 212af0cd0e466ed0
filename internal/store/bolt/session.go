package bolt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"

	"go.etcd.io/bbolt"
)

func (s *Store) CreateSession(_ context.Context, sess model.Session) (model.Session, error) {
	if strings.TrimSpace(sess.ID) == "" {
		sess.ID = newID()
	}
	sess.CreatedAt = time.Now().UTC()
	sess.RevokedAt = nil

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketIdentities).Get([]byte(sess.IdentityID)) == nil {
			return store.ErrNotFound
		}
		sessions := tx.Bucket(bucketSessions)
		if sessions.Get([]byte(sess.ID)) != nil {
			return store.ErrConflict
		}
		return putJSON(sessions, sess.ID, sess)
	})
	if err != nil {
		return model.Session{}, err
	}
	return sess, nil
}

func (s *Store) GetSession(_ context.Context, id string) (*model.Session, error) {
	var sess model.Session
	err := s.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket(bucketSessions), id, &sess)
	})
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) RevokeSession(_ context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		var sess model.Session
		if err := getJSON(b, id, &sess); err != nil {
			return err
		}
		if sess.RevokedAt != nil {
			return nil
		}
		now := time.Now().UTC()
		sess.RevokedAt = &now
		return putJSON(b, id, sess)
	})
}

// PurgeSessions drops sessions that expired or were revoked before cutoff.
func (s *Store) PurgeSessions(_ context.Context, cutoff time.Time) (int, error) {
	n := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var sess model.Session
			if err := json.Unmarshal(v, &sess); err != nil {
				return err
			}
			if sess.ExpiresAt.Before(cutoff) || (sess.RevokedAt != nil && sess.RevokedAt.Before(cutoff)) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		n = len(stale)
		return nil
	})
	return n, err
}
