package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"signup/internal/users/models"
	"signup/pkg/platform/sentinel"
)

// SQLiteStore persists users in SQLite. CreatedAt is assigned from the
// store clock and kept as Unix nanoseconds.
type SQLiteStore struct {
	db    *sql.DB
	clock func() time.Time
}

// NewSQLite constructs a SQLite-backed user store.
func NewSQLite(db *sql.DB, opts ...SQLiteOption) *SQLiteStore {
	s := &SQLiteStore{db: db, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithSQLiteClock overrides the timestamp source used for CreatedAt.
func WithSQLiteClock(clock func() time.Time) SQLiteOption {
	return func(s *SQLiteStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func (s *SQLiteStore) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	createdAt := s.clock().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, phone, created_at) VALUES (?, ?, ?, ?)`,
		user.Name, user.Email, nullString(user.Phone), createdAt.UnixNano(),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return fmt.Errorf("create user: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read user id: %w", err)
	}
	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

func (s *SQLiteStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func (s *SQLiteStore) ListNewestFirst(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, created_at FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		var (
			u         models.User
			phone     sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &phone, &createdAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Phone = fromNullString(phone)
		u.CreatedAt = time.Unix(0, createdAt).UTC()
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed: users.email")
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
