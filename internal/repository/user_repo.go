package repository

import (
	"context"
	"errors"
	"fmt"

	"courseai/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	// CreateUser returns ErrDuplicate if the email is already registered
	CreateUser(ctx context.Context, u *model.User) error
	// EnsureAdmin creates the user for email if needed and grants it the admin role
	EnsureAdmin(ctx context.Context, email, name string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
}

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

const userColumns = `user_id, name, email, password_hash, role, created_at, updated_at`

func scanUser(row pgx.Row, u *model.User) error {
	var role string
	if err := row.Scan(&u.UserID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return err
	}
	u.Role = model.Role(role)
	return nil
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) error {
	query := `INSERT INTO users (name, email, password_hash, role)
              VALUES ($1, lower($2), $3, $4) RETURNING ` + userColumns
	err := scanUser(r.pool.QueryRow(ctx, query, u.Name, u.Email, u.PasswordHash, string(u.Role)), u)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return fmt.Errorf("creating user %s: %w", u.Email, ErrDuplicate)
		}
		return fmt.Errorf("creating user %s: %w", u.Email, err)
	}
	return nil
}

func (r *userRepo) EnsureAdmin(ctx context.Context, email, name string) (*model.User, error) {
	query := `INSERT INTO users (name, email, password_hash, role)
              VALUES ($1, lower($2), '', 'admin')
              ON CONFLICT (email) DO UPDATE SET role = 'admin', updated_at = NOW()
              RETURNING ` + userColumns
	var u model.User
	if err := scanUser(r.pool.QueryRow(ctx, query, name, email), &u); err != nil {
		return nil, fmt.Errorf("ensuring admin user %s: %w", email, err)
	}
	return &u, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if !validID(id) {
		return nil, nil
	}
	var u model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	if err := scanUser(r.pool.QueryRow(ctx, query, id), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting user by id %s: %w", id, err)
	}
	return &u, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	if err := scanUser(r.pool.QueryRow(ctx, query, email), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return &u, nil
}

func (r *userRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}
	return users, nil
}

// DeleteUser removes the user; their courses, enrollments and reviews cascade
func (r *userRepo) DeleteUser(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting user %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
