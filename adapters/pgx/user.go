package pgx

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lborres/roster/core"
)

const userColumns = `id, email, password_hash, google_id, name, picture, auth_provider, created_at, updated_at`

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	id := uuid.NewString()
	query := `INSERT INTO public.users (id, email, password_hash, google_id, name, picture, auth_provider)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`

	err := a.pool.QueryRow(ctx, query,
		id, user.Email, user.PasswordHash, user.GoogleID, user.Name, user.Picture, string(user.AuthProvider),
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateIdentity
		}
		return err
	}

	user.ID = id
	return nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM public.users WHERE id = $1`
	return scanUser(a.pool.QueryRow(ctx, q, id))
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM public.users WHERE email = $1`
	return scanUser(a.pool.QueryRow(ctx, q, email))
}

func (a *Adapter) SetGoogleID(ctx context.Context, userID, googleID string) error {
	tag, err := a.pool.Exec(ctx,
		`UPDATE public.users SET google_id = $1, updated_at = now() WHERE id = $2`, googleID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*core.User, error) {
	user := &core.User{}
	var provider string
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.GoogleID, &user.Name,
		&user.Picture, &provider, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	user.AuthProvider = core.AuthProvider(provider)
	return user, nil
}
