package request

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"bloodlink/internal/hospital/models"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
)

const requestColumns = `id, hospital_id, blood_type, units, urgency,
	is_fulfilled, fulfilled_at, notes, created_at, updated_at`

// Postgres persists blood requests in the blood_requests table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, request *models.BloodRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blood_requests (
			id, hospital_id, blood_type, units, urgency,
			is_fulfilled, fulfilled_at, notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		uuid.UUID(request.ID), uuid.UUID(request.HospitalID),
		request.BloodType.String(), request.Units, string(request.Urgency),
		request.IsFulfilled, request.FulfilledAt, request.Notes,
		request.CreatedAt, request.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create blood request: %w", err)
	}
	return nil
}

func (s *Postgres) FindByHospital(ctx context.Context, hospitalID domain.HospitalID, id domain.RequestID) (*models.BloodRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM blood_requests WHERE id = $1 AND hospital_id = $2`,
		uuid.UUID(id), uuid.UUID(hospitalID))
	request, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find blood request: %w", err)
	}
	return request, nil
}

func (s *Postgres) ListByHospital(ctx context.Context, hospitalID domain.HospitalID) ([]*models.BloodRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM blood_requests
		 WHERE hospital_id = $1
		 ORDER BY created_at DESC, id ASC`,
		uuid.UUID(hospitalID))
	if err != nil {
		return nil, fmt.Errorf("list blood requests: %w", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Postgres) Execute(ctx context.Context, hospitalID domain.HospitalID, id domain.RequestID, validate func(*models.BloodRequest) error, mutate func(*models.BloodRequest)) (*models.BloodRequest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin execute: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM blood_requests
		 WHERE id = $1 AND hospital_id = $2 FOR UPDATE`,
		uuid.UUID(id), uuid.UUID(hospitalID))
	request, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load blood request for update: %w", err)
	}

	if err := validate(request); err != nil {
		return nil, err
	}
	mutate(request)

	_, err = tx.ExecContext(ctx, `
		UPDATE blood_requests SET
			is_fulfilled = $1, fulfilled_at = $2, notes = $3, updated_at = $4
		WHERE id = $5`,
		request.IsFulfilled, request.FulfilledAt, request.Notes, request.UpdatedAt,
		uuid.UUID(request.ID),
	)
	if err != nil {
		return nil, fmt.Errorf("update blood request: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit execute: %w", err)
	}
	return request, nil
}

func (s *Postgres) CountActive(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blood_requests WHERE NOT is_fulfilled`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active requests: %w", err)
	}
	return count, nil
}

func (s *Postgres) ListRecent(ctx context.Context, limit int) ([]*models.BloodRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM blood_requests
		 ORDER BY created_at DESC, id ASC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("list recent requests: %w", err)
	}
	defer rows.Close()
	return collectRequests(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.BloodRequest, error) {
	var (
		r              models.BloodRequest
		id, hospitalID uuid.UUID
		bloodType      string
		urgency        string
	)
	err := row.Scan(
		&id, &hospitalID, &bloodType, &r.Units, &urgency,
		&r.IsFulfilled, &r.FulfilledAt, &r.Notes,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.ID = domain.RequestID(id)
	r.HospitalID = domain.HospitalID(hospitalID)
	r.BloodType = domain.BloodType(bloodType)
	r.Urgency = models.Urgency(urgency)
	return &r, nil
}

func collectRequests(rows *sql.Rows) ([]*models.BloodRequest, error) {
	var out []*models.BloodRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blood request: %w", err)
		}
		out = append(out, request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blood requests: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
