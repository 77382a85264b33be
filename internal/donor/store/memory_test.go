package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bloodlink/internal/donor/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/geo"
	"bloodlink/pkg/platform/sentinel"
)

type DonorStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *DonorStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestDonorStoreSuite(t *testing.T) {
	suite.Run(t, new(DonorStoreSuite))
}

func (s *DonorStoreSuite) newDonor(bt domain.BloodType, opts ...func(*models.Donor)) *models.Donor {
	donor, err := models.NewDonor(
		domain.DonorID(uuid.New()), domain.AccountID(uuid.New()),
		"Asha Rao", "asha@example.com", "+91-98000-00000",
		bt, 29, models.Location{City: "Pune"}, time.Now(),
	)
	s.Require().NoError(err)
	for _, opt := range opts {
		opt(donor)
	}
	return donor
}

func withCoords(lon, lat float64) func(*models.Donor) {
	return func(d *models.Donor) {
		d.Location.Coordinates = &geo.Point{Longitude: lon, Latitude: lat}
	}
}

// TestCreationAndLookups verifies the store correctly creates and retrieves
// donor profiles.
func (s *DonorStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds donor by account", func() {
		donor := s.newDonor(domain.OPositive)
		s.Require().NoError(s.store.Create(s.ctx, donor))

		found, err := s.store.FindByAccount(s.ctx, donor.AccountID)
		s.Require().NoError(err)
		s.Equal(donor.ID, found.ID)
		s.Equal(domain.OPositive, found.BloodType)
	})

	s.Run("returns ErrNotFound for unknown account", func() {
		_, err := s.store.FindByAccount(s.ctx, domain.AccountID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects second profile for same account", func() {
		donor := s.newDonor(domain.APositive)
		s.Require().NoError(s.store.Create(s.ctx, donor))

		duplicate := s.newDonor(domain.BNegative)
		duplicate.AccountID = donor.AccountID
		s.Require().ErrorIs(s.store.Create(s.ctx, duplicate), sentinel.ErrConflict)
	})

	s.Run("reads return copies not aliases", func() {
		donor := s.newDonor(domain.ABPositive)
		s.Require().NoError(s.store.Create(s.ctx, donor))

		found, err := s.store.FindByAccount(s.ctx, donor.AccountID)
		s.Require().NoError(err)
		found.Name = "mutated"

		again, err := s.store.FindByAccount(s.ctx, donor.AccountID)
		s.Require().NoError(err)
		s.Equal("Asha Rao", again.Name)
	})
}

// TestListFiltering verifies blood-type, availability, and proximity filters.
func (s *DonorStoreSuite) TestListFiltering() {
	s.Run("availableOnly drops unavailable donors", func() {
		available := s.newDonor(domain.OPositive)
		unavailable := s.newDonor(domain.OPositive)
		unavailable.IsAvailable = false
		s.Require().NoError(s.store.Create(s.ctx, available))
		s.Require().NoError(s.store.Create(s.ctx, unavailable))

		donors, err := s.store.List(s.ctx, Filter{AvailableOnly: true})
		s.Require().NoError(err)
		for _, d := range donors {
			s.True(d.IsAvailable)
		}
		s.Len(donors, 1)
	})

	s.Run("blood type set restricts results", func() {
		s.store = NewInMemory()
		s.Require().NoError(s.store.Create(s.ctx, s.newDonor(domain.ONegative)))
		s.Require().NoError(s.store.Create(s.ctx, s.newDonor(domain.APositive)))

		donors, err := s.store.List(s.ctx, Filter{
			BloodTypes: []domain.BloodType{domain.ONegative, domain.OPositive},
		})
		s.Require().NoError(err)
		s.Require().Len(donors, 1)
		s.Equal(domain.ONegative, donors[0].BloodType)
	})

	s.Run("proximity excludes donors without coordinates and beyond radius", func() {
		s.store = NewInMemory()
		near := s.newDonor(domain.BPositive, withCoords(77.20, 28.61))
		far := s.newDonor(domain.BPositive, withCoords(72.87, 19.07)) // ~1150 km away
		noCoords := s.newDonor(domain.BPositive)
		s.Require().NoError(s.store.Create(s.ctx, near))
		s.Require().NoError(s.store.Create(s.ctx, far))
		s.Require().NoError(s.store.Create(s.ctx, noCoords))

		origin := &geo.Point{Longitude: 77.21, Latitude: 28.62}
		donors, err := s.store.List(s.ctx, Filter{
			Origin:            origin,
			MaxDistanceMeters: 50_000,
		})
		s.Require().NoError(err)
		s.Require().Len(donors, 1)
		s.Equal(near.ID, donors[0].ID)
	})

	s.Run("proximity orders by distance ascending", func() {
		s.store = NewInMemory()
		closer := s.newDonor(domain.OPositive, withCoords(77.21, 28.62))
		farther := s.newDonor(domain.OPositive, withCoords(77.40, 28.80))
		s.Require().NoError(s.store.Create(s.ctx, farther))
		s.Require().NoError(s.store.Create(s.ctx, closer))

		origin := &geo.Point{Longitude: 77.2090, Latitude: 28.6139}
		donors, err := s.store.List(s.ctx, Filter{Origin: origin, MaxDistanceMeters: 100_000})
		s.Require().NoError(err)
		s.Require().Len(donors, 2)
		s.Equal(closer.ID, donors[0].ID)
		s.Equal(farther.ID, donors[1].ID)
	})

	s.Run("default order is registration time descending", func() {
		s.store = NewInMemory()
		older := s.newDonor(domain.ABNegative)
		older.CreatedAt = time.Now().Add(-time.Hour)
		newer := s.newDonor(domain.ABNegative)
		s.Require().NoError(s.store.Create(s.ctx, older))
		s.Require().NoError(s.store.Create(s.ctx, newer))

		donors, err := s.store.List(s.ctx, Filter{})
		s.Require().NoError(err)
		s.Require().Len(donors, 2)
		s.Equal(newer.ID, donors[0].ID)
		s.Equal(older.ID, donors[1].ID)
	})
}

// TestExecute verifies the atomic validate-then-mutate contract.
func (s *DonorStoreSuite) TestExecute() {
	s.Run("applies mutation under lock", func() {
		donor := s.newDonor(domain.ONegative)
		s.Require().NoError(s.store.Create(s.ctx, donor))

		updated, err := s.store.Execute(s.ctx, donor.AccountID,
			func(d *models.Donor) error { return nil },
			func(d *models.Donor) { d.ApplyToggle(time.Now()) },
		)
		s.Require().NoError(err)
		s.False(updated.IsAvailable)

		found, err := s.store.FindByAccount(s.ctx, donor.AccountID)
		s.Require().NoError(err)
		s.False(found.IsAvailable)
	})

	s.Run("validation failure leaves record untouched", func() {
		donor := s.newDonor(domain.ONegative)
		s.Require().NoError(s.store.Create(s.ctx, donor))

		_, err := s.store.Execute(s.ctx, donor.AccountID,
			func(d *models.Donor) error { return sentinel.ErrInvalidState },
			func(d *models.Donor) { d.IsAvailable = false },
		)
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)

		found, err := s.store.FindByAccount(s.ctx, donor.AccountID)
		s.Require().NoError(err)
		s.True(found.IsAvailable)
	})

	s.Run("unknown account returns ErrNotFound", func() {
		_, err := s.store.Execute(s.ctx, domain.AccountID(uuid.New()),
			func(d *models.Donor) error { return nil },
			func(d *models.Donor) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestCounts verifies the dashboard aggregation queries.
func (s *DonorStoreSuite) TestCounts() {
	for i := 0; i < 6; i++ {
		s.Require().NoError(s.store.Create(s.ctx, s.newDonor(domain.OPositive)))
	}
	for i := 0; i < 4; i++ {
		d := s.newDonor(domain.ABPositive)
		d.IsAvailable = false
		s.Require().NoError(s.store.Create(s.ctx, d))
	}

	total, available, err := s.store.CountByAvailability(s.ctx)
	s.Require().NoError(err)
	s.Equal(10, total)
	s.Equal(6, available)

	counts, err := s.store.CountAvailableByBloodType(s.ctx)
	s.Require().NoError(err)
	s.Equal(6, counts[domain.OPositive])
	s.Zero(counts[domain.ABPositive], "unavailable donors excluded from breakdown")
}
