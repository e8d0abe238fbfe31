//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"signup/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	userStoreSuite
	postgres *containers.PostgresContainer
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(Migrate(context.Background(), s.postgres.DB))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "users"))
	s.store = NewPostgres(s.postgres.DB.SQL)
}

// TestPhoneCheckConstraint verifies the table itself rejects non-digit phones.
func (s *PostgresStoreSuite) TestPhoneCheckConstraint() {
	_, err := s.postgres.DB.SQL.ExecContext(s.ctx,
		`INSERT INTO users (name, email, phone) VALUES ('Bad', 'bad@example.com', '12-34')`)
	s.Require().Error(err)
}
