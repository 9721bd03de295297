package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lms-backend/internal/model"
	"lms-backend/pkg/apierror"
)

const userColumns = `id, name, email, avatar_key, avatar_url, role, is_verified, course_ids, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id), id, false)
}

func (r *UserRepository) FindByIDWithPassword(ctx context.Context, id string) (model.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+`, password_hash FROM users WHERE id = $1`, id), id, true)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email)), email, false)
}

func (r *UserRepository) FindByEmailWithPassword(ctx context.Context, email string) (model.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+`, password_hash FROM users WHERE lower(email) = lower($1)`,
		strings.TrimSpace(email)), email, true)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`,
		strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, avatar_key, avatar_url, role, is_verified, course_ids, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Avatar.Key, u.Avatar.URL, u.Role, u.IsVerified, u.Courses, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return apierror.Conflict("Email already exist")
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Update persists everything except the password hash, which has its own
// write path.
func (r *UserRepository) Update(ctx context.Context, u model.User) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET name = $2, email = $3, avatar_key = $4, avatar_url = $5,
		        role = $6, is_verified = $7, course_ids = $8, updated_at = $9
		 WHERE id = $1`,
		u.ID, u.Name, u.Email, u.Avatar.Key, u.Avatar.URL, u.Role, u.IsVerified, u.Courses, u.UpdatedAt)
	if isUniqueViolation(err) {
		return apierror.Conflict("Email already exist")
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("User not found")
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("User not found")
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierror.NotFound("User not found")
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Avatar.Key, &u.Avatar.URL,
			&u.Role, &u.IsVerified, &u.Courses, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *UserRepository) scanUser(row pgx.Row, lookup string, withPassword bool) (model.User, error) {
	var u model.User
	dest := []any{&u.ID, &u.Name, &u.Email, &u.Avatar.Key, &u.Avatar.URL,
		&u.Role, &u.IsVerified, &u.Courses, &u.CreatedAt, &u.UpdatedAt}
	if withPassword {
		dest = append(dest, &u.PasswordHash)
	}

	err := row.Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, apierror.New("NOT_FOUND", "User not found", lookup, 404)
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
