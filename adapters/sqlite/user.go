package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/lborres/roster/core"
)

const userColumns = `id, email, password_hash, google_id, name, picture, auth_provider, created_at, updated_at`

func (a *Adapter) CreateUser(ctx context.Context, user *core.User) error {
	id := uuid.NewString()
	now := a.now().UTC()

	q := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := a.db.ExecContext(ctx, q,
		id, user.Email, user.PasswordHash, user.GoogleID, user.Name, user.Picture,
		string(user.AuthProvider), toMillis(now), toMillis(now))
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateIdentity
		}
		return err
	}

	user.ID = id
	user.CreatedAt = fromMillis(toMillis(now))
	user.UpdatedAt = user.CreatedAt
	return nil
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	row := a.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	row := a.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (a *Adapter) SetGoogleID(ctx context.Context, userID, googleID string) error {
	res, err := a.db.ExecContext(ctx,
		`UPDATE users SET google_id = ?, updated_at = ? WHERE id = ?`,
		googleID, toMillis(a.now()), userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrUserNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*core.User, error) {
	user := &core.User{}
	var provider string
	var createdAt, updatedAt int64
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.GoogleID, &user.Name,
		&user.Picture, &provider, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	user.AuthProvider = core.AuthProvider(provider)
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return user, nil
}
