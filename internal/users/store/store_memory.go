package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"signup/internal/users/models"
	"signup/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded user store for tests and local runs.
type InMemory struct {
	mu     sync.RWMutex
	users  []*models.User
	emails map[string]struct{}
	nextID int64
	clock  func() time.Time
}

// Option configures an InMemory store.
type Option func(*InMemory)

// WithClock overrides the timestamp source used for CreatedAt.
func WithClock(clock func() time.Time) Option {
	return func(s *InMemory) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewInMemory(opts ...Option) *InMemory {
	s := &InMemory{
		emails: make(map[string]struct{}),
		nextID: 1,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemory) Create(_ context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[user.Email]; taken {
		return fmt.Errorf("create user: %w", sentinel.ErrAlreadyUsed)
	}
	user.ID = s.nextID
	user.CreatedAt = s.clock().UTC()
	s.nextID++

	s.users = append(s.users, clone(user))
	s.emails[user.Email] = struct{}{}
	return nil
}

func (s *InMemory) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.emails[email]
	return ok, nil
}

func (s *InMemory) ListNewestFirst(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, clone(u))
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func clone(u *models.User) *models.User {
	cp := *u
	if u.Phone != nil {
		phone := *u.Phone
		cp.Phone = &phone
	}
	return &cp
}
