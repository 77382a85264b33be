//go:build integration

package hospital_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bloodlink/internal/hospital/models"
	"bloodlink/internal/hospital/store/hospital"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/geo"
	"bloodlink/pkg/platform/sentinel"
	"bloodlink/pkg/testutil/containers"
)

type PostgresHospitalSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *hospital.Postgres
}

func TestPostgresHospitalSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresHospitalSuite))
}

func (s *PostgresHospitalSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = hospital.NewPostgres(s.postgres.DB)
}

func (s *PostgresHospitalSuite) SetupTest() {
	ctx := context.Background()
	// Truncate in dependency order
	err := s.postgres.TruncateTables(ctx, "blood_requests", "donors", "hospitals", "accounts")
	s.Require().NoError(err)
}

// insertAccount satisfies the hospitals.account_id foreign key.
func (s *PostgresHospitalSuite) insertAccount() domain.AccountID {
	accountID := domain.AccountID(uuid.New())
	now := time.Now().UTC()
	_, err := s.postgres.DB.ExecContext(context.Background(),
		`INSERT INTO accounts (id, email, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, 'x', 'hospital', $3, $3)`,
		uuid.UUID(accountID), uuid.NewString()+"@example.com", now,
	)
	s.Require().NoError(err)
	return accountID
}

func (s *PostgresHospitalSuite) newHospital(accountID domain.AccountID, coords *geo.Point) *models.Hospital {
	h, err := models.NewHospital(
		domain.HospitalID(uuid.New()), accountID,
		"City General", "admin@citygeneral.example.com", "+91-11-2300-0000", "DL-4821",
		models.Location{City: "Delhi", Coordinates: coords},
		time.Now().UTC(),
	)
	s.Require().NoError(err)
	return h
}

func (s *PostgresHospitalSuite) TestCreateAndFind() {
	ctx := context.Background()
	accountID := s.insertAccount()
	created := s.newHospital(accountID, &geo.Point{Longitude: 77.20, Latitude: 28.61})
	s.Require().NoError(s.store.Create(ctx, created))

	s.Run("by account", func() {
		found, err := s.store.FindByAccount(ctx, accountID)
		s.Require().NoError(err)
		s.Equal(created.ID, found.ID)
		s.Equal("City General", found.Name)
		s.Equal("DL-4821", found.License)
		s.Require().NotNil(found.Location.Coordinates)
		s.InDelta(28.61, found.Location.Coordinates.Latitude, 0.0001)
	})

	s.Run("by id", func() {
		found, err := s.store.FindByID(ctx, created.ID)
		s.Require().NoError(err)
		s.Equal(accountID, found.AccountID)
	})
}

func (s *PostgresHospitalSuite) TestNilCoordinatesRoundTrip() {
	ctx := context.Background()
	accountID := s.insertAccount()
	s.Require().NoError(s.store.Create(ctx, s.newHospital(accountID, nil)))

	found, err := s.store.FindByAccount(ctx, accountID)
	s.Require().NoError(err)
	s.Nil(found.Location.Coordinates)
}

func (s *PostgresHospitalSuite) TestSecondProfilePerAccountConflicts() {
	ctx := context.Background()
	accountID := s.insertAccount()
	s.Require().NoError(s.store.Create(ctx, s.newHospital(accountID, nil)))

	err := s.store.Create(ctx, s.newHospital(accountID, nil))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresHospitalSuite) TestNotFound() {
	ctx := context.Background()

	_, err := s.store.FindByAccount(ctx, domain.AccountID(uuid.New()))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByID(ctx, domain.HospitalID(uuid.New()))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
