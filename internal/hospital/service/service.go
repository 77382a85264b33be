package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	donormodels "bloodlink/internal/donor/models"
	"bloodlink/internal/hospital/metrics"
	"bloodlink/internal/hospital/models"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/geo"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/sentinel"
	"bloodlink/pkg/requestcontext"
)

// recentRequestLimit caps the dashboard's recent-request list.
const recentRequestLimit = 10

// dashboardCacheKey is the shared cache key; the dashboard is global, not
// per-hospital.
const dashboardCacheKey = "bloodlink:dashboard"

type HospitalStore interface {
	Create(ctx context.Context, hospital *models.Hospital) error
	FindByAccount(ctx context.Context, accountID domain.AccountID) (*models.Hospital, error)
}

type RequestStore interface {
	Create(ctx context.Context, request *models.BloodRequest) error
	FindByHospital(ctx context.Context, hospitalID domain.HospitalID, id domain.RequestID) (*models.BloodRequest, error)
	ListByHospital(ctx context.Context, hospitalID domain.HospitalID) ([]*models.BloodRequest, error)
	Execute(ctx context.Context, hospitalID domain.HospitalID, id domain.RequestID, validate func(*models.BloodRequest) error, mutate func(*models.BloodRequest)) (*models.BloodRequest, error)
	CountActive(ctx context.Context) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*models.BloodRequest, error)
}

// Matcher finds donors able to supply a recipient blood type.
type Matcher interface {
	FindCompatibleDonors(ctx context.Context, recipientType domain.BloodType, origin *geo.Point, radiusMeters float64) ([]*donormodels.Donor, error)
}

// DonorStats exposes the donor aggregations the dashboard needs.
type DonorStats interface {
	CountByAvailability(ctx context.Context) (total int, available int, err error)
	CountAvailableByBloodType(ctx context.Context) (map[domain.BloodType]int, error)
}

// Cache stores serialized dashboard payloads. A nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// RegisterInput carries the hospital-facing fields of a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	License  string
	Location models.Location
}

// AddRequestInput carries a new blood request.
type AddRequestInput struct {
	BloodType domain.BloodType
	Units     int
	Urgency   models.Urgency
	Notes     string
}

// Service orchestrates hospital registration, the blood request ledger, donor
// matching, and the dashboard.
type Service struct {
	hospitals      HospitalStore
	requests       RequestStore
	matcher        Matcher
	donorStats     DonorStats
	cache          Cache
	cacheTTL       time.Duration
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
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

// WithDashboardCache caches dashboard aggregations for ttl.
func WithDashboardCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// New constructs a Service.
func New(hospitals HospitalStore, requests RequestStore, matcher Matcher, donorStats DonorStats, opts ...Option) *Service {
	s := &Service{
		hospitals:  hospitals,
		requests:   requests,
		matcher:    matcher,
		donorStats: donorStats,
		tracer:     otel.Tracer("bloodlink/hospital"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the hospital profile for an account.
func (s *Service) Register(ctx context.Context, accountID domain.AccountID, in RegisterInput) (*models.Hospital, error) {
	hospital, err := models.NewHospital(
		domain.HospitalID(uuid.New()), accountID,
		in.Name, in.Email, in.Phone, in.License, in.Location,
		requestcontext.Now(ctx),
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.hospitals.Create(ctx, hospital); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "hospital profile already exists for this account")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create hospital profile")
	}

	s.logAudit(ctx, audit.EventHospitalRegistered, audit.Event{
		AccountID: accountID,
		Subject:   hospital.ID.String(),
	}, "hospital_id", hospital.ID)
	if s.metrics != nil {
		s.metrics.IncrementHospitalRegistered()
	}
	return hospital, nil
}

// ProfileByAccount returns the hospital profile owned by the account.
func (s *Service) ProfileByAccount(ctx context.Context, accountID domain.AccountID) (*models.Hospital, error) {
	hospital, err := s.hospitals.FindByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "hospital profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load hospital profile")
	}
	return hospital, nil
}

// AddRequest records a blood request for the hospital and returns it along
// with the donors currently able to supply it, nearest first when the
// hospital has coordinates.
func (s *Service) AddRequest(ctx context.Context, accountID domain.AccountID, in AddRequestInput) (*models.BloodRequest, []*donormodels.Donor, error) {
	hospital, err := s.ProfileByAccount(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	request, err := models.NewBloodRequest(
		domain.RequestID(uuid.New()), hospital.ID,
		in.BloodType, in.Units, in.Urgency, in.Notes,
		requestcontext.Now(ctx),
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, nil, err
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create blood request")
	}

	// Matching is best-effort: the request is already recorded, so a
	// matching failure must not fail the creation.
	donors, err := s.matcher.FindCompatibleDonors(ctx, request.BloodType, hospital.Location.Coordinates, 0)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "donor matching failed for new request",
				"request_id", requestcontext.RequestID(ctx),
				"blood_request_id", request.ID,
				"error", err,
			)
		}
		donors = nil
	}

	s.logAudit(ctx, audit.EventRequestCreated, audit.Event{
		AccountID: accountID,
		Subject:   request.ID.String(),
		BloodType: request.BloodType.String(),
	}, "blood_request_id", request.ID, "blood_type", request.BloodType, "urgency", request.Urgency)
	if s.metrics != nil {
		s.metrics.IncrementRequestCreated(request.BloodType.String(), request.Urgency.String())
	}
	return request, donors, nil
}

// ListRequests returns the hospital's requests, newest first.
func (s *Service) ListRequests(ctx context.Context, accountID domain.AccountID) ([]*models.BloodRequest, error) {
	hospital, err := s.ProfileByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	requests, err := s.requests.ListByHospital(ctx, hospital.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list blood requests")
	}
	return requests, nil
}

// FulfillRequest marks a request fulfilled. Fulfillment is permanent;
// fulfilling an already-fulfilled request is a conflict. The check-then-set
// runs under the store's lock so concurrent attempts serialize.
func (s *Service) FulfillRequest(ctx context.Context, accountID domain.AccountID, requestID domain.RequestID) (*models.BloodRequest, error) {
	hospital, err := s.ProfileByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	request, err := s.requests.Execute(ctx, hospital.ID, requestID,
		func(r *models.BloodRequest) error { return r.CanFulfill() },
		func(r *models.BloodRequest) { r.ApplyFulfill(now) },
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "blood request not found")
		}
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to fulfill blood request")
	}

	s.logAudit(ctx, audit.EventRequestFulfilled, audit.Event{
		AccountID: accountID,
		Subject:   request.ID.String(),
		BloodType: request.BloodType.String(),
	}, "blood_request_id", request.ID)
	if s.metrics != nil {
		s.metrics.IncrementRequestFulfilled()
	}
	return request, nil
}

// FindDonors runs a donor search for the hospital, centered on its
// coordinates when it has them.
func (s *Service) FindDonors(ctx context.Context, accountID domain.AccountID, bloodType domain.BloodType, radiusMeters float64) ([]*donormodels.Donor, error) {
	hospital, err := s.ProfileByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.matcher.FindCompatibleDonors(ctx, bloodType, hospital.Location.Coordinates, radiusMeters)
}

// Dashboard aggregates donor supply and request demand. Results are cached
// briefly when a cache is configured; the aggregation queries fan out
// concurrently.
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "hospital.dashboard")
	defer span.End()

	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, dashboardCacheKey); ok {
			var cached models.DashboardStats
			if err := json.Unmarshal(raw, &cached); err == nil {
				span.SetAttributes(attribute.Bool("cache_hit", true))
				if s.metrics != nil {
					s.metrics.IncrementDashboardCacheHit()
				}
				return &cached, nil
			}
		}
	}
	span.SetAttributes(attribute.Bool("cache_hit", false))

	var (
		total, available int
		byType           map[domain.BloodType]int
		activeRequests   int
		recent           []*models.BloodRequest
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, available, err = s.donorStats.CountByAvailability(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		byType, err = s.donorStats.CountAvailableByBloodType(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		activeRequests, err = s.requests.CountActive(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.requests.ListRecent(gctx, recentRequestLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build dashboard")
	}

	stats := &models.DashboardStats{
		TotalDonors:       total,
		AvailableDonors:   available,
		UnavailableDonors: total - available,
		BloodTypeStats:    make([]models.BloodTypeCount, 0, len(domain.AllBloodTypes)),
		ActiveRequests:    activeRequests,
		RecentRequests:    recent,
	}
	for _, bt := range domain.AllBloodTypes {
		stats.BloodTypeStats = append(stats.BloodTypeStats, models.BloodTypeCount{
			BloodType: bt.String(),
			Count:     byType[bt],
		})
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			s.cache.Set(ctx, dashboardCacheKey, raw, s.cacheTTL)
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveDashboard(start)
	}
	return stats, nil
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
