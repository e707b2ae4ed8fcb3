package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/campusbook/facility-reservation/internal/model"
)

// UserRepo provides access to the users table.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userCols = "id, name, email, username, password_hash, role, is_active, last_login, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }, u *model.User) error {
	var last sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &u.IsActive, &last, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return err
	}
	if last.Valid {
		t := last.Time
		u.LastLogin = &t
	}
	return nil
}

// Create inserts a user and populates the generated ID.  Username and email
// are stored normalized (trimmed, email lower-cased).  Duplicate keys map to
// ErrUsernameExists / ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	const q = `INSERT INTO users (name, email, username, password_hash, role, is_active)
	           VALUES (?, ?, ?, ?, ?, TRUE)`
	res, err := r.db.ExecContext(ctx, q, u.Name, u.Email, u.Username, u.PasswordHash, u.Role)
	if err != nil {
		// MySQL error 1062: duplicate entry for a unique key.
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "email") {
				return ErrEmailExists
			}
			return ErrUsernameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id = ?", u.ID), u)
}

// GetByUsername fetches a user by exact username.  Returns ErrUserNotFound
// when no row matches.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE username = ? LIMIT 1",
		strings.TrimSpace(username)), &u)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email = ? LIMIT 1",
		strings.ToLower(strings.TrimSpace(email))), &u)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	var u model.User
	err := scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id = ? LIMIT 1", id), &u)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateLastLogin stamps the user's last successful login time.
func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET last_login = UTC_TIMESTAMP() WHERE id = ?", id)
	return err
}
