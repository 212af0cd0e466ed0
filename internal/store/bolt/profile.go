package bolt

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"

	"go.etcd.io/bbolt"
)

func stampNewProfile(p model.Profile) model.Profile {
	now := time.Now().UTC()
	if p.Role == "" {
		p.Role = model.RoleUser
	}
	if p.PinHash != "" {
		p.PinUpdatedAt = &now
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p
}

func (s *Store) CreateProfile(_ context.Context, p model.Profile) (model.Profile, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return model.Profile{}, store.ErrNotFound
	}
	p = stampNewProfile(p)

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketIdentities).Get([]byte(p.UserID)) == nil {
			return store.ErrNotFound
		}
		profiles := tx.Bucket(bucketProfiles)
		if profiles.Get([]byte(p.UserID)) != nil {
			return store.ErrConflict
		}
		return putJSON(profiles, p.UserID, newProfileRecord(p))
	})
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

func (s *Store) GetProfile(_ context.Context, userID string) (*model.Profile, error) {
	var rec profileRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return getJSON(tx.Bucket(bucketProfiles), userID, &rec)
	})
	if err != nil {
		return nil, err
	}
	out := rec.model()
	return &out, nil
}

func (s *Store) ListProfiles(_ context.Context, f store.ProfileFilter) ([]model.Profile, error) {
	var out []model.Profile
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketProfiles).ForEach(func(_, v []byte) error {
			var rec profileRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if f.Role != "" && rec.Role != f.Role {
				return nil
			}
			out = append(out, rec.model())
			return nil
		})
	})
	if err != nil {
		return nil, err
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
	var out model.Profile
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketIdentities).Get([]byte(defaults.UserID)) == nil {
			return store.ErrNotFound
		}
		profiles := tx.Bucket(bucketProfiles)

		var rec profileRecord
		switch err := getJSON(profiles, defaults.UserID, &rec); err {
		case nil:
			now := time.Now().UTC()
			rec.PinHash = pinHash
			rec.PinUpdatedAt = &now
			rec.UpdatedAt = now
			out = rec.model()
		case store.ErrNotFound:
			defaults.PinHash = pinHash
			out = stampNewProfile(defaults)
		default:
			return err
		}
		return putJSON(profiles, out.UserID, newProfileRecord(out))
	})
	if err != nil {
		return model.Profile{}, err
	}
	return out, nil
}
