//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bloodlink/internal/account/models"
	"bloodlink/internal/account/store"
	platformpg "bloodlink/internal/platform/postgres"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
	"bloodlink/pkg/testutil/containers"
)

type PostgresAccountSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresAccountSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresAccountSuite))
}

func (s *PostgresAccountSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresAccountSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(),
		"blood_requests", "donors", "hospitals", "accounts")
	s.Require().NoError(err)
}

func (s *PostgresAccountSuite) newAccount(email string) *models.Account {
	account, err := models.NewAccount(
		domain.AccountID(uuid.New()), email, "hash", domain.RoleDonor,
		time.Now().UTC(),
	)
	s.Require().NoError(err)
	return account
}

func (s *PostgresAccountSuite) TestCreateAndFind() {
	ctx := context.Background()
	account := s.newAccount("ravi@example.com")
	s.Require().NoError(s.store.Create(ctx, account))

	byEmail, err := s.store.FindByEmail(ctx, "ravi@example.com")
	s.Require().NoError(err)
	s.Equal(account.ID, byEmail.ID)
	s.Equal(domain.RoleDonor, byEmail.Role)

	byID, err := s.store.FindByID(ctx, account.ID)
	s.Require().NoError(err)
	s.Equal("ravi@example.com", byID.Email)
}

func (s *PostgresAccountSuite) TestUniqueEmail() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newAccount("dup@example.com")))

	err := s.store.Create(ctx, s.newAccount("dup@example.com"))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresAccountSuite) TestNotFound() {
	_, err := s.store.FindByEmail(context.Background(), "nobody@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByID(context.Background(), domain.AccountID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresAccountSuite) TestTxRollbackDiscardsWrites() {
	ctx := context.Background()
	runner := platformpg.NewTxRunner(s.postgres.DB)

	boom := errors.New("profile creation failed")
	err := runner.InTx(ctx, func(ctx context.Context) error {
		s.Require().NoError(s.store.Create(ctx, s.newAccount("ghost@example.com")))
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.FindByEmail(ctx, "ghost@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresAccountSuite) TestTxCommitKeepsWrites() {
	ctx := context.Background()
	runner := platformpg.NewTxRunner(s.postgres.DB)

	err := runner.InTx(ctx, func(ctx context.Context) error {
		return s.store.Create(ctx, s.newAccount("kept@example.com"))
	})
	s.Require().NoError(err)

	_, err = s.store.FindByEmail(ctx, "kept@example.com")
	s.NoError(err)
}
