package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"bloodlink/internal/donor/models"
	platformpg "bloodlink/internal/platform/postgres"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/geo"
	"bloodlink/pkg/platform/sentinel"
)

// haversineSQL computes great-circle distance in meters between a donor row
// and an origin point. Must agree with pkg/geo so memory and Postgres
// proximity results match. Placeholders: lon, lat.
const haversineSQL = `2 * 6371008.8 * asin(sqrt(
	pow(sin(radians(latitude - %[2]s) / 2), 2) +
	cos(radians(%[2]s)) * cos(radians(latitude)) *
	pow(sin(radians(longitude - %[1]s) / 2), 2)))`

const donorColumns = `id, account_id, name, email, phone, blood_type, age,
	is_available, longitude, latitude, address, city, state,
	last_donated, total_donations, medical_conditions, emergency_contact,
	created_at, updated_at`

// Postgres persists donor profiles in the donors table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, donor *models.Donor) error {
	var lon, lat sql.NullFloat64
	if c := donor.Location.Coordinates; c != nil {
		lon = sql.NullFloat64{Float64: c.Longitude, Valid: true}
		lat = sql.NullFloat64{Float64: c.Latitude, Valid: true}
	}

	_, err := platformpg.QuerierFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO donors (
			id, account_id, name, email, phone, blood_type, age,
			is_available, longitude, latitude, address, city, state,
			last_donated, total_donations, medical_conditions, emergency_contact,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		uuid.UUID(donor.ID), uuid.UUID(donor.AccountID),
		donor.Name, donor.Email, donor.Phone, donor.BloodType.String(), donor.Age,
		donor.IsAvailable, lon, lat,
		donor.Location.Address, donor.Location.City, donor.Location.State,
		donor.LastDonated, donor.TotalDonations, donor.MedicalConditions, donor.EmergencyContact,
		donor.CreatedAt, donor.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create donor: %w", err)
	}
	return nil
}

func (s *Postgres) FindByAccount(ctx context.Context, accountID domain.AccountID) (*models.Donor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+donorColumns+` FROM donors WHERE account_id = $1`,
		uuid.UUID(accountID))
	donor, err := scanDonor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find donor by account: %w", err)
	}
	return donor, nil
}

func (s *Postgres) List(ctx context.Context, filter Filter) ([]*models.Donor, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.AvailableOnly {
		conds = append(conds, "is_available = TRUE")
	}
	if len(filter.BloodTypes) > 0 {
		types := make([]string, len(filter.BloodTypes))
		for i, bt := range filter.BloodTypes {
			types[i] = bt.String()
		}
		conds = append(conds, "blood_type = ANY("+arg(pq.Array(types))+")")
	}

	order := "ORDER BY created_at DESC, id ASC"
	if filter.Origin != nil {
		lonPh := arg(filter.Origin.Longitude)
		latPh := arg(filter.Origin.Latitude)
		distance := fmt.Sprintf(haversineSQL, lonPh, latPh)
		conds = append(conds,
			"longitude IS NOT NULL AND latitude IS NOT NULL",
			"("+distance+") <= "+arg(filter.MaxDistanceMeters))
		order = "ORDER BY (" + distance + ") ASC, id ASC"
	}

	query := `SELECT ` + donorColumns + ` FROM donors`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " " + order

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	defer rows.Close()

	var donors []*models.Donor
	for rows.Next() {
		donor, err := scanDonor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan donor: %w", err)
		}
		donors = append(donors, donor)
	}
	return donors, rows.Err()
}

func (s *Postgres) Execute(ctx context.Context, accountID domain.AccountID,
	validate func(*models.Donor) error,
	mutate func(*models.Donor)) (*models.Donor, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin donor tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Row lock covers validate and mutate so concurrent toggles serialize.
	row := tx.QueryRowContext(ctx,
		`SELECT `+donorColumns+` FROM donors WHERE account_id = $1 FOR UPDATE`,
		uuid.UUID(accountID))
	donor, err := scanDonor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock donor: %w", err)
	}

	if err := validate(donor); err != nil {
		return nil, err
	}
	mutate(donor)

	var lon, lat sql.NullFloat64
	if c := donor.Location.Coordinates; c != nil {
		lon = sql.NullFloat64{Float64: c.Longitude, Valid: true}
		lat = sql.NullFloat64{Float64: c.Latitude, Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE donors SET
			phone = $2, is_available = $3, longitude = $4, latitude = $5,
			address = $6, city = $7, state = $8, last_donated = $9,
			total_donations = $10, medical_conditions = $11,
			emergency_contact = $12, updated_at = $13
		WHERE account_id = $1`,
		uuid.UUID(accountID),
		donor.Phone, donor.IsAvailable, lon, lat,
		donor.Location.Address, donor.Location.City, donor.Location.State,
		donor.LastDonated, donor.TotalDonations, donor.MedicalConditions,
		donor.EmergencyContact, donor.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update donor: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit donor tx: %w", err)
	}
	return donor, nil
}

func (s *Postgres) CountByAvailability(ctx context.Context) (int, int, error) {
	var total, available int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_available)
		FROM donors`).Scan(&total, &available)
	if err != nil {
		return 0, 0, fmt.Errorf("count donors: %w", err)
	}
	return total, available, nil
}

func (s *Postgres) CountAvailableByBloodType(ctx context.Context) (map[domain.BloodType]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT blood_type, COUNT(*)
		FROM donors
		WHERE is_available
		GROUP BY blood_type`)
	if err != nil {
		return nil, fmt.Errorf("count donors by blood type: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.BloodType]int)
	for rows.Next() {
		var bt string
		var n int
		if err := rows.Scan(&bt, &n); err != nil {
			return nil, fmt.Errorf("scan blood type count: %w", err)
		}
		counts[domain.BloodType(bt)] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDonor(row rowScanner) (*models.Donor, error) {
	var (
		donor    models.Donor
		id       uuid.UUID
		account  uuid.UUID
		blood    string
		lon, lat sql.NullFloat64
	)
	err := row.Scan(
		&id, &account, &donor.Name, &donor.Email, &donor.Phone, &blood, &donor.Age,
		&donor.IsAvailable, &lon, &lat,
		&donor.Location.Address, &donor.Location.City, &donor.Location.State,
		&donor.LastDonated, &donor.TotalDonations, &donor.MedicalConditions, &donor.EmergencyContact,
		&donor.CreatedAt, &donor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	donor.ID = domain.DonorID(id)
	donor.AccountID = domain.AccountID(account)
	donor.BloodType = domain.BloodType(blood)
	if lon.Valid && lat.Valid {
		donor.Location.Coordinates = &geo.Point{Longitude: lon.Float64, Latitude: lat.Float64}
	}
	return &donor, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
