package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bloodlink/internal/compat"
	"bloodlink/internal/donor/metrics"
	"bloodlink/internal/donor/models"
	"bloodlink/internal/donor/store"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/geo"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/sentinel"
	"bloodlink/pkg/requestcontext"
)

// DefaultSearchRadiusMeters bounds proximity searches that do not specify
// an explicit radius.
const DefaultSearchRadiusMeters = 50_000

type DonorStore interface {
	Create(ctx context.Context, donor *models.Donor) error
	FindByAccount(ctx context.Context, accountID domain.AccountID) (*models.Donor, error)
	List(ctx context.Context, filter store.Filter) ([]*models.Donor, error)
	Execute(ctx context.Context, accountID domain.AccountID, validate func(*models.Donor) error, mutate func(*models.Donor)) (*models.Donor, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RegisterInput carries the donor-facing fields of a registration request.
// Account identity arrives separately from the authenticated context.
type RegisterInput struct {
	Name      string
	Email     string
	Phone     string
	BloodType domain.BloodType
	Age       int
	Location  models.Location
}

// SearchFilter narrows donor listings. A nil Origin disables proximity
// filtering; a zero MaxDistanceMeters with a non-nil Origin falls back to
// DefaultSearchRadiusMeters.
type SearchFilter struct {
	BloodTypes        []domain.BloodType
	AvailableOnly     bool
	Origin            *geo.Point
	MaxDistanceMeters float64
}

// Service orchestrates donor registration, availability, and search.
type Service struct {
	donors         DonorStore
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(donors DonorStore, opts ...Option) *Service {
	s := &Service{donors: donors}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the donor profile for an account. Each account holds at
// most one profile; a second registration returns a conflict.
func (s *Service) Register(ctx context.Context, accountID domain.AccountID, in RegisterInput) (*models.Donor, error) {
	donor, err := models.NewDonor(
		domain.DonorID(uuid.New()), accountID,
		in.Name, in.Email, in.Phone, in.BloodType, in.Age, in.Location,
		requestcontext.Now(ctx),
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.donors.Create(ctx, donor); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "donor profile already exists for this account")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create donor profile")
	}

	s.logAudit(ctx, audit.EventDonorRegistered, audit.Event{
		AccountID: accountID,
		BloodType: donor.BloodType.String(),
		Subject:   donor.ID.String(),
	}, "donor_id", donor.ID, "blood_type", donor.BloodType)
	if s.metrics != nil {
		s.metrics.IncrementDonorRegistered()
	}
	return donor, nil
}

// Search lists donors matching the filter. Requested blood types widen
// through the compatibility table to every donor type that can transfuse
// them, so a search for A- also returns O- donors. With an origin, results
// come back ordered nearest first and donors without coordinates are
// excluded.
func (s *Service) Search(ctx context.Context, filter SearchFilter) ([]*models.Donor, error) {
	start := time.Now()

	bloodTypes, err := expandCompatibleDonors(filter.BloodTypes)
	if err != nil {
		return nil, err
	}

	radius := filter.MaxDistanceMeters
	if filter.Origin != nil && radius <= 0 {
		radius = DefaultSearchRadiusMeters
	}

	donors, err := s.donors.List(ctx, store.Filter{
		BloodTypes:        bloodTypes,
		AvailableOnly:     filter.AvailableOnly,
		Origin:            filter.Origin,
		MaxDistanceMeters: radius,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donors")
	}

	if s.metrics != nil {
		s.metrics.ObserveListDonors(start)
		if filter.Origin != nil {
			s.metrics.ObserveProximityResults(len(donors))
		}
	}
	return donors, nil
}

// expandCompatibleDonors maps each requested recipient type to the donor
// types that can transfuse it, deduplicated with order preserved.
func expandCompatibleDonors(types []domain.BloodType) ([]domain.BloodType, error) {
	if len(types) == 0 {
		return nil, nil
	}

	seen := make(map[domain.BloodType]struct{}, len(types))
	expanded := make([]domain.BloodType, 0, len(types))
	for _, t := range types {
		donors, err := compat.CompatibleDonors(t)
		if err != nil {
			return nil, err
		}
		for _, d := range donors {
			if _, ok := seen[d]; !ok {
				seen[d] = struct{}{}
				expanded = append(expanded, d)
			}
		}
	}
	return expanded, nil
}

// ProfileByAccount returns the donor profile owned by the account.
func (s *Service) ProfileByAccount(ctx context.Context, accountID domain.AccountID) (*models.Donor, error) {
	donor, err := s.donors.FindByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donor profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donor profile")
	}
	return donor, nil
}

// ToggleAvailability flips the donor's availability flag and returns the
// updated profile. The read-toggle-write cycle runs under the store's lock
// so concurrent toggles never lose an update.
func (s *Service) ToggleAvailability(ctx context.Context, accountID domain.AccountID) (*models.Donor, error) {
	now := requestcontext.Now(ctx)
	donor, err := s.donors.Execute(ctx, accountID,
		func(d *models.Donor) error { return nil },
		func(d *models.Donor) { d.ApplyToggle(now) },
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donor profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to toggle availability")
	}

	s.logAudit(ctx, audit.EventAvailabilityToggled, audit.Event{
		AccountID: accountID,
		Subject:   donor.ID.String(),
	}, "donor_id", donor.ID, "is_available", donor.IsAvailable)
	if s.metrics != nil {
		s.metrics.IncrementAvailabilityToggled()
	}
	return donor, nil
}

// UpdateProfile applies a partial update to the donor's mutable fields.
// Blood type is immutable after registration and is not part of the update.
func (s *Service) UpdateProfile(ctx context.Context, accountID domain.AccountID, update models.ProfileUpdate) (*models.Donor, error) {
	now := requestcontext.Now(ctx)
	donor, err := s.donors.Execute(ctx, accountID,
		func(d *models.Donor) error { return nil },
		func(d *models.Donor) { d.ApplyProfileUpdate(update, now) },
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donor profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update donor profile")
	}

	s.logAudit(ctx, audit.EventProfileUpdated, audit.Event{
		AccountID: accountID,
		Subject:   donor.ID.String(),
	}, "donor_id", donor.ID)
	if s.metrics != nil {
		s.metrics.IncrementProfileUpdated()
	}
	return donor, nil
}

func (s *Service) logAudit(ctx context.Context, action audit.Action, event audit.Event, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
		event.RequestID = requestID
	}
	if s.logger != nil {
		args := append(attributes, "event", string(action), "log_type", "audit")
		s.logger.InfoContext(ctx, string(action), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	event.Action = string(action)
	_ = s.auditPublisher.Emit(ctx, event)
}
