package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/submission-service/internal/platform/db"
)

const selectUser = `
	SELECT u.id, u.username, u.email, u.password_hash, u.role_id, r.name,
	       u.is_active, u.last_login, u.created_at, u.updated_at
	FROM users u
	JOIN roles r ON r.id = u.role_id`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByEmail fetches a user by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, selectUser+` WHERE u.email = $1`, email)
}

// FindByUsername fetches a user by username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, selectUser+` WHERE u.username = $1`, username)
}

// FindByID fetches a user by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findOne(ctx, selectUser+` WHERE u.id = $1`, id)
}

// Create inserts a user and returns the stored record.
func (r *Repository) Create(ctx context.Context, in NewUser) (*User, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, role_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		in.Username, in.Email, in.PasswordHash, in.RoleID,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// UpdateLastLogin stamps the login time.
func (r *Repository) UpdateLastLogin(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// UpdatePassword replaces the stored hash.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, hash string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// UpsertByEmail creates or refreshes an account keyed by email, re-activating it.
func (r *Repository) UpsertByEmail(ctx context.Context, in NewUser) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, role_id, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (email) DO UPDATE
		SET username = EXCLUDED.username,
		    password_hash = EXCLUDED.password_hash,
		    role_id = EXCLUDED.role_id,
		    is_active = TRUE,
		    updated_at = NOW()
		RETURNING id`,
		in.Username, in.Email, in.PasswordHash, in.RoleID,
	).Scan(&id)
	return id, err
}

func (r *Repository) findOne(ctx context.Context, query string, arg any) (*User, error) {
	var (
		u         User
		lastLogin pgtype.Timestamptz
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RoleID, &u.RoleName,
		&u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}
