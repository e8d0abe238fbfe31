package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/suite"

	"signup/internal/users/models"
	"signup/pkg/platform/sentinel"
)

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListNewestFirst(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
}

// userStoreSuite holds the behaviour every user store must share. Backend
// suites embed it and set store in SetupTest.
type userStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store userStore
}

func (s *userStoreSuite) newUser(name, email, phone string) *models.User {
	return models.NewUser(name, email, phone)
}

func (s *userStoreSuite) TestCreateAssignsIdentity() {
	u := s.newUser("Test", "test@example.com", "1234")
	s.Require().NoError(s.store.Create(s.ctx, u))

	s.NotZero(u.ID)
	s.False(u.CreatedAt.IsZero())

	users, err := s.store.ListNewestFirst(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Equal(u.ID, users[0].ID)
	s.Equal("test@example.com", users[0].Email)
	s.Require().NotNil(users[0].Phone)
	s.Equal("1234", *users[0].Phone)
	s.True(u.CreatedAt.Equal(users[0].CreatedAt))
}

func (s *userStoreSuite) TestAbsentPhoneRoundTrips() {
	s.Require().NoError(s.store.Create(s.ctx, s.newUser("Ana", "ana@demo.com", "")))

	users, err := s.store.ListNewestFirst(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Nil(users[0].Phone)
}

func (s *userStoreSuite) TestEmailUniqueness() {
	s.Run("rejects duplicate email", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newUser("First", "dup@example.com", "")))

		err := s.store.Create(s.ctx, s.newUser("Second", "dup@example.com", ""))
		s.Require().Error(err)
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)

		count, err := s.store.Count(s.ctx)
		s.Require().NoError(err)
		s.Equal(1, count)
	})

	s.Run("comparison is case-sensitive", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newUser("Upper", "DUP@example.com", "")))
	})
}

func (s *userStoreSuite) TestExistsByEmail() {
	s.Require().NoError(s.store.Create(s.ctx, s.newUser("Ana", "ana@demo.com", "")))

	exists, err := s.store.ExistsByEmail(s.ctx, "ana@demo.com")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.store.ExistsByEmail(s.ctx, "ANA@demo.com")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *userStoreSuite) TestListNewestFirst() {
	s.Run("empty store returns empty slice", func() {
		users, err := s.store.ListNewestFirst(s.ctx)
		s.Require().NoError(err)
		s.NotNil(users)
		s.Empty(users)
	})

	s.Run("returns every user newest first", func() {
		const n = 5
		for i := 0; i < n; i++ {
			s.Require().NoError(s.store.Create(s.ctx, s.newUser(fmt.Sprintf("User %d", i), fmt.Sprintf("user%d@example.com", i), "")))
		}

		users, err := s.store.ListNewestFirst(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(users, n)
		for i := 1; i < len(users); i++ {
			prev, cur := users[i-1], users[i]
			s.False(cur.CreatedAt.After(prev.CreatedAt), "users must be ordered by created_at descending")
			if cur.CreatedAt.Equal(prev.CreatedAt) {
				s.Greater(prev.ID, cur.ID)
			}
		}
		s.Equal("user4@example.com", users[0].Email)
		s.Equal("user0@example.com", users[n-1].Email)
	})
}

// TestConcurrentDuplicateEmail verifies that racing creates with the same email
// result in exactly one success.
func (s *userStoreSuite) TestConcurrentDuplicateEmail() {
	const goroutines = 20
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.store.Create(s.ctx, s.newUser(fmt.Sprintf("Racer %d", i), "race@example.com", ""))
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				conflicts.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflicts.Load(), "all others should conflict")
}
