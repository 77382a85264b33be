// Package matching finds donors able to supply blood for a recipient type,
// optionally ranked by proximity to the requesting site.
package matching

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bloodlink/internal/compat"
	"bloodlink/internal/donor/models"
	"bloodlink/internal/donor/store"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/geo"
)

// DefaultSearchRadiusMeters bounds hospital-initiated donor searches that do
// not specify an explicit radius. Wider than the public donor listing default
// since hospitals draw from a larger catchment.
const DefaultSearchRadiusMeters = 100_000

// DonorSource lists donor profiles. Satisfied by the donor store.
type DonorSource interface {
	List(ctx context.Context, filter store.Filter) ([]*models.Donor, error)
}

// Service resolves compatible donors for a recipient blood type. Matching is
// by the transfusion relation: a donor qualifies when their type can be given
// to the recipient, not the other way around.
type Service struct {
	donors DonorSource
	logger *slog.Logger
	tracer trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service.
func New(donors DonorSource, opts ...Option) *Service {
	s := &Service{
		donors: donors,
		tracer: otel.Tracer("bloodlink/matching"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindCompatibleDonors returns available donors whose blood type can be
// transfused to the recipient type. With an origin, only donors with
// coordinates inside the radius are returned, nearest first; radiusMeters
// of zero falls back to DefaultSearchRadiusMeters. Without an origin,
// results come back newest registration first.
func (s *Service) FindCompatibleDonors(ctx context.Context, recipientType domain.BloodType, origin *geo.Point, radiusMeters float64) ([]*models.Donor, error) {
	ctx, span := s.tracer.Start(ctx, "matching.FindCompatibleDonors",
		trace.WithAttributes(
			attribute.String("blood_type", recipientType.String()),
			attribute.Bool("proximity", origin != nil),
		),
	)
	defer span.End()

	donorTypes, err := compat.CompatibleDonors(recipientType)
	if err != nil {
		return nil, err
	}

	radius := radiusMeters
	if origin != nil && radius <= 0 {
		radius = DefaultSearchRadiusMeters
	}

	donors, err := s.donors.List(ctx, store.Filter{
		BloodTypes:        donorTypes,
		AvailableOnly:     true,
		Origin:            origin,
		MaxDistanceMeters: radius,
	})
	if err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to match donors")
	}

	span.SetAttributes(attribute.Int("matched", len(donors)))
	if s.logger != nil {
		s.logger.DebugContext(ctx, "matched donors",
			"blood_type", recipientType,
			"matched", len(donors),
		)
	}
	return donors, nil
}
