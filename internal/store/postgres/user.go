package postgres

import (
	"context"
	"errors"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"

	"github.com/jackc/pgx/v5"
)

const identityColumns = `id::text, email, password_hash, created_at, updated_at`

func scanIdentity(row pgx.Row) (*model.Identity, error) {
	var u model.Identity
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	return &u, nil
}

func (s *Store) CreateIdentity(ctx context.Context, id model.Identity) (model.Identity, error) {
	out, err := scanIdentity(s.pool.QueryRow(ctx, `
		insert into public.identities (id, email, password_hash)
		values (coalesce(nullif($1, '')::uuid, gen_random_uuid()), $2, $3)
		returning `+identityColumns,
		id.ID, id.Email, id.PasswordHash))
	if err != nil {
		return model.Identity{}, err
	}
	return *out, nil
}

func (s *Store) GetIdentityByID(ctx context.Context, id string) (*model.Identity, error) {
	return scanIdentity(s.pool.QueryRow(ctx, `
		select `+identityColumns+`
		from public.identities
		where id = $1::uuid
	`, id))
}

func (s *Store) GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error) {
	return scanIdentity(s.pool.QueryRow(ctx, `
		select `+identityColumns+`
		from public.identities
		where lower(email) = lower($1)
	`, email))
}
