package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gharkaam/authcore/core"
)

const uniqueViolation = "23505"

// Users is the Postgres-backed core.UserDirectory over the identity and
// profile tables.
type Users struct {
	pg *pgxpool.Pool
}

func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pg: pool}
}

func (u *Users) FindIdentityByPhone(ctx context.Context, phone string) (string, error) {
	row := u.pg.QueryRow(ctx, `SELECT id FROM auth.identities WHERE phone = $1`, phone)
	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", core.ErrUserNotFound
		}
		return "", err
	}
	return id, nil
}

func (u *Users) CreateIdentity(ctx context.Context, phone string) (string, error) {
	row := u.pg.QueryRow(ctx, `
		INSERT INTO auth.identities (phone) VALUES ($1)
		RETURNING id`, phone)
	var id string
	if err := row.Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return "", core.ErrIdentityExists
		}
		return "", err
	}
	return id, nil
}

func (u *Users) FindProfileByPhone(ctx context.Context, phone string) (*core.Profile, error) {
	row := u.pg.QueryRow(ctx, `
		SELECT user_id, phone, is_complete FROM auth.profiles WHERE phone = $1`, phone)
	var p core.Profile
	if err := row.Scan(&p.UserID, &p.Phone, &p.IsComplete); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (u *Users) CreateProfile(ctx context.Context, userID, phone string) (*core.Profile, error) {
	_, err := u.pg.Exec(ctx, `
		INSERT INTO auth.profiles (user_id, phone) VALUES ($1, $2)`, userID, phone)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, core.ErrProfileExists
		}
		return nil, err
	}
	return &core.Profile{UserID: userID, Phone: phone}, nil
}

func (u *Users) TouchLastActive(ctx context.Context, userID string) error {
	tag, err := u.pg.Exec(ctx, `
		UPDATE auth.profiles SET last_active_at = NOW() WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
