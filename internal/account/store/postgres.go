package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"bloodlink/internal/account/models"
	platformpg "bloodlink/internal/platform/postgres"
	"bloodlink/pkg/domain"
	"bloodlink/pkg/platform/sentinel"
)

const accountColumns = `id, email, password_hash, role, created_at, updated_at`

// Postgres persists accounts in the accounts table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, account *models.Account) error {
	_, err := platformpg.QuerierFrom(ctx, s.db).ExecContext(ctx, `
		INSERT INTO accounts (id, email, password_hash, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		uuid.UUID(account.ID), account.Email, account.PasswordHash,
		string(account.Role), account.CreatedAt, account.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := platformpg.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`,
		strings.ToLower(email))
	return scanAccount(row, "find account by email")
}

func (s *Postgres) FindByID(ctx context.Context, id domain.AccountID) (*models.Account, error) {
	row := platformpg.QuerierFrom(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`,
		uuid.UUID(id))
	return scanAccount(row, "find account by id")
}

func scanAccount(row *sql.Row, op string) (*models.Account, error) {
	var (
		a    models.Account
		id   uuid.UUID
		role string
	)
	err := row.Scan(&id, &a.Email, &a.PasswordHash, &role, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.ID = domain.AccountID(id)
	a.Role = domain.Role(role)
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
