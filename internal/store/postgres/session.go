package postgres

import (
	"context"
	"errors"
	"time"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateSession(ctx context.Context, sess model.Session) (model.Session, error) {
	var out model.Session
	err := s.pool.QueryRow(ctx, `
		insert into public.identity_sessions (id, identity_id, expires_at)
		values (coalesce(nullif($1, '')::uuid, gen_random_uuid()), $2::uuid, $3)
		returning id::text, identity_id::text, expires_at, created_at, revoked_at
	`, sess.ID, sess.IdentityID, sess.ExpiresAt).Scan(
		&out.ID,
		&out.IdentityID,
		&out.ExpiresAt,
		&out.CreatedAt,
		&out.RevokedAt,
	)
	if err != nil {
		return model.Session{}, mapPgErr(err)
	}
	return out, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var out model.Session
	err := s.pool.QueryRow(ctx, `
		select id::text, identity_id::text, expires_at, created_at, revoked_at
		from public.identity_sessions
		where id = $1::uuid
	`, id).Scan(&out.ID, &out.IdentityID, &out.ExpiresAt, &out.CreatedAt, &out.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	return &out, nil
}

func (s *Store) RevokeSession(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		update public.identity_sessions
		set revoked_at = coalesce(revoked_at, now())
		where id = $1::uuid
	`, id)
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// PurgeSessions drops sessions that expired or were revoked before cutoff.
func (s *Store) PurgeSessions(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		delete from public.identity_sessions
		where expires_at < $1
		   or (revoked_at is not null and revoked_at < $1)
	`, cutoff)
	if err != nil {
		return 0, mapPgErr(err)
	}
	return int(tag.RowsAffected()), nil
}
