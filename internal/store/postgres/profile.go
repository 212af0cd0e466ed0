package postgres

import (
	"context"
	"errors"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store"

	"github.com/jackc/pgx/v5"
)

const profileColumns = `user_id::text, email, first_name, last_name, role, coalesce(pin_hash, ''), pin_updated_at, created_at, updated_at`

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	var role string
	err := row.Scan(
		&p.UserID,
		&p.Email,
		&p.FirstName,
		&p.LastName,
		&role,
		&p.PinHash,
		&p.PinUpdatedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	p.Role = model.Role(role)
	return &p, nil
}

func roleOrDefault(r model.Role) string {
	if r == "" {
		return string(model.RoleUser)
	}
	return string(r)
}

func (s *Store) CreateProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	out, err := scanProfile(s.pool.QueryRow(ctx, `
		insert into public.profiles (user_id, email, first_name, last_name, role, pin_hash, pin_updated_at)
		values ($1::uuid, $2, $3, $4, $5, nullif($6, ''), case when $6 = '' then null else now() end)
		returning `+profileColumns,
		p.UserID, p.Email, p.FirstName, p.LastName, roleOrDefault(p.Role), p.PinHash))
	if err != nil {
		return model.Profile{}, err
	}
	return *out, nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return scanProfile(s.pool.QueryRow(ctx, `
		select `+profileColumns+`
		from public.profiles
		where user_id = $1::uuid
	`, userID))
}

func (s *Store) ListProfiles(ctx context.Context, f store.ProfileFilter) ([]model.Profile, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 1000
	}

	rows, err := s.pool.Query(ctx, `
		select `+profileColumns+`
		from public.profiles
		where ($1 = '' or role = $1)
		order by created_at desc, user_id
		limit $2
	`, string(f.Role), limit)
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer rows.Close()

	var out []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgErr(err)
	}
	return out, nil
}

func (s *Store) UpsertPinHash(ctx context.Context, defaults model.Profile, pinHash string) (model.Profile, error) {
	out, err := scanProfile(s.pool.QueryRow(ctx, `
		insert into public.profiles (user_id, email, first_name, last_name, role, pin_hash, pin_updated_at)
		values ($1::uuid, $2, $3, $4, $5, $6, now())
		on conflict (user_id) do update
		set pin_hash = excluded.pin_hash,
		    pin_updated_at = excluded.pin_updated_at
		returning `+profileColumns,
		defaults.UserID, defaults.Email, defaults.FirstName, defaults.LastName, roleOrDefault(defaults.Role), pinHash))
	if err != nil {
		return model.Profile{}, err
	}
	return *out, nil
}
