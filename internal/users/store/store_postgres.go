package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"signup/internal/users/models"
	"signup/pkg/platform/sentinel"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresStore persists users in PostgreSQL. id and created_at come from
// column defaults.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	query := `
		INSERT INTO users (name, email, phone)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, query, user.Name, user.Email, nullString(user.Phone)).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isPostgresUniqueViolation(err) {
			return fmt.Errorf("create user: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create user: %w", err)
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return nil
}

func (s *PostgresStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListNewestFirst(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, created_at FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		var (
			u     models.User
			phone sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &phone, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Phone = fromNullString(phone)
		u.CreatedAt = u.CreatedAt.UTC()
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func isPostgresUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
