package hospital

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"bloodlink/internal/hospital/models"
	platformpg "bloodlink/internal/platform/postgres"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/geo"
	"bloodlink/pkg/platform/sentinel"
)

const hospitalColumns = `id, account_id, name, email, phone, license,
	longitude, latitude, address, city, state, created_at, updated_at`

// Postgres persists hospital profiles in the hospitals table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, hospital *models.Hospital) error {
	var lon, lat sql.NullFloat64
	if c := hospital.Location.Coordinates; c != nil {
		lon = sql.NullFloat64{Float64: c.Longitude, Valid: true}
		lat = sql.NullFloat64{Float64: c.Latitude, Valid: true}
	}

	_, err := platformpg.QuerierFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO hospitals (
			id, account_id, name, email, phone, license,
			longitude, latitude, address, city, state, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		uuid.UUID(hospital.ID), uuid.UUID(hospital.AccountID),
		hospital.Name, hospital.Email, hospital.Phone, hospital.License,
		lon, lat,
		hospital.Location.Address, hospital.Location.City, hospital.Location.State,
		hospital.CreatedAt, hospital.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create hospital: %w", err)
	}
	return nil
}

func (s *Postgres) FindByAccount(ctx context.Context, accountID domain.AccountID) (*models.Hospital, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+hospitalColumns+` FROM hospitals WHERE account_id = $1`,
		uuid.UUID(accountID))
	return s.scan(row, "find hospital by account")
}

func (s *Postgres) FindByID(ctx context.Context, id domain.HospitalID) (*models.Hospital, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+hospitalColumns+` FROM hospitals WHERE id = $1`,
		uuid.UUID(id))
	return s.scan(row, "find hospital by id")
}

func (s *Postgres) scan(row *sql.Row, op string) (*models.Hospital, error) {
	var (
		h        models.Hospital
		id, acct uuid.UUID
		lon, lat sql.NullFloat64
	)
	err := row.Scan(
		&id, &acct, &h.Name, &h.Email, &h.Phone, &h.License,
		&lon, &lat,
		&h.Location.Address, &h.Location.City, &h.Location.State,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	h.ID = domain.HospitalID(id)
	h.AccountID = domain.AccountID(acct)
	if lon.Valid && lat.Valid {
		h.Location.Coordinates = &geo.Point{Longitude: lon.Float64, Latitude: lat.Float64}
	}
	return &h, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
