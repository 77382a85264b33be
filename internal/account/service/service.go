package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"bloodlink/internal/account/metrics"
	"bloodlink/internal/account/models"
	"bloodlink/internal/account/password"
	donormodels "bloodlink/internal/donor/models"
	donorservice "bloodlink/internal/donor/service"
	hospitalmodels "bloodlink/internal/hospital/models"
	hospitalservice "bloodlink/internal/hospital/service"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/email"
	"bloodlink/pkg/platform/audit"
	"bloodlink/pkg/platform/sentinel"
	"bloodlink/pkg/requestcontext"
)

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id domain.AccountID) (*models.Account, error)
}

// DonorRegistrar creates the donor profile during registration and loads it
// back for /auth/me.
type DonorRegistrar interface {
	Register(ctx context.Context, accountID domain.AccountID, in donorservice.RegisterInput) (*donormodels.Donor, error)
	ProfileByAccount(ctx context.Context, accountID domain.AccountID) (*donormodels.Donor, error)
}

// HospitalRegistrar creates the hospital profile during registration and loads
// it back for /auth/me.
type HospitalRegistrar interface {
	Register(ctx context.Context, accountID domain.AccountID, in hospitalservice.RegisterInput) (*hospitalmodels.Hospital, error)
	ProfileByAccount(ctx context.Context, accountID domain.AccountID) (*hospitalmodels.Hospital, error)
}

// TokenIssuer signs access tokens for authenticated accounts.
type TokenIssuer interface {
	IssueToken(accountID domain.AccountID, role domain.Role) (string, error)
}

// Transactor runs fn atomically. Registration uses it so the account row and
// its role profile commit together; without one the two writes are separate.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// AuditLog reads back recorded events for the activity endpoint.
type AuditLog interface {
	List(ctx context.Context, accountID domain.AccountID) ([]audit.Event, error)
}

// RegisterInput carries a full registration: the credentials plus the
// role-specific profile payload.
type RegisterInput struct {
	Email    string
	Password string
	Role     domain.Role

	// Donor holds the profile payload when Role is donor.
	Donor *donorservice.RegisterInput
	// Hospital holds the profile payload when Role is hospital.
	Hospital *hospitalservice.RegisterInput
}

// RegisterResult pairs the created account with its signed token.
type RegisterResult struct {
	Account *models.Account
	Token   string
}

// Service orchestrates registration, login, and token issuance.
type Service struct {
	accounts       AccountStore
	donors         DonorRegistrar
	hospitals      HospitalRegistrar
	tokens         TokenIssuer
	transactor     Transactor
	logger         *slog.Logger
	auditPublisher AuditPublisher
	auditLog       AuditLog
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

func WithAuditLog(log AuditLog) Option {
	return func(s *Service) {
		s.auditLog = log
	}
}

func WithTransactor(transactor Transactor) Option {
	return func(s *Service) {
		s.transactor = transactor
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(accounts AccountStore, donors DonorRegistrar, hospitals HospitalRegistrar, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		accounts:  accounts,
		donors:    donors,
		hospitals: hospitals,
		tokens:    tokens,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the account and its role profile, then signs a token so
// new users are logged in immediately.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	account, err := models.NewAccount(
		domain.AccountID(uuid.New()), in.Email, hash, in.Role,
		requestcontext.Now(ctx),
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	switch account.Role {
	case domain.RoleDonor:
		if in.Donor == nil {
			return nil, dErrors.New(dErrors.CodeValidation, "donor profile is required for donor registration")
		}
	case domain.RoleHospital:
		if in.Hospital == nil {
			return nil, dErrors.New(dErrors.CodeValidation, "hospital profile is required for hospital registration")
		}
	}

	if err := s.inTx(ctx, func(ctx context.Context) error {
		if err := s.accounts.Create(ctx, account); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "email is already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
		}

		switch account.Role {
		case domain.RoleDonor:
			profileIn := *in.Donor
			profileIn.Email = account.Email
			if strings.TrimSpace(profileIn.Name) == "" {
				profileIn.Name = email.DisplayName(account.Email)
			}
			_, err := s.donors.Register(ctx, account.ID, profileIn)
			return err
		case domain.RoleHospital:
			profileIn := *in.Hospital
			profileIn.Email = account.Email
			_, err := s.hospitals.Register(ctx, account.ID, profileIn)
			return err
		}
		return nil
	}); err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueToken(account.ID, account.Role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logAudit(ctx, audit.EventAccountCreated, audit.Event{
		AccountID: account.ID,
		Detail:    string(account.Role),
	}, "role", account.Role)
	if s.metrics != nil {
		s.metrics.IncrementRegistered(string(account.Role))
	}
	return &RegisterResult{Account: account, Token: token}, nil
}

// Login verifies credentials and signs a token. The same error covers an
// unknown email and a wrong password so the endpoint cannot be used to probe
// registered emails.
func (s *Service) Login(ctx context.Context, email, pass string) (*RegisterResult, error) {
	invalid := dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")

	account, err := s.accounts.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordFailedLogin()
			return nil, invalid
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	if !password.Verify(account.PasswordHash, pass) {
		s.recordFailedLogin()
		return nil, invalid
	}

	token, err := s.tokens.IssueToken(account.ID, account.Role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logAudit(ctx, audit.EventLoginSucceeded, audit.Event{
		AccountID: account.ID,
	})
	if s.metrics != nil {
		s.metrics.IncrementLogin()
	}
	return &RegisterResult{Account: account, Token: token}, nil
}

// AccountByID returns the bare account.
func (s *Service) AccountByID(ctx context.Context, id domain.AccountID) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return account, nil
}

// MeResult pairs the account with its role profile. At most one of Donor and
// Hospital is set; both stay nil when the profile row is missing.
type MeResult struct {
	Account  *models.Account
	Donor    *donormodels.Donor
	Hospital *hospitalmodels.Hospital
}

// Me returns the account together with its role profile for /auth/me. A
// missing profile is tolerated rather than turned into an error so accounts
// created before the profile write (or with a deleted profile) can still
// authenticate.
func (s *Service) Me(ctx context.Context, id domain.AccountID) (*MeResult, error) {
	account, err := s.AccountByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &MeResult{Account: account}
	switch account.Role {
	case domain.RoleDonor:
		donor, err := s.donors.ProfileByAccount(ctx, account.ID)
		if err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, err
		}
		result.Donor = donor
	case domain.RoleHospital:
		hospital, err := s.hospitals.ProfileByAccount(ctx, account.ID)
		if err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, err
		}
		result.Hospital = hospital
	}
	return result, nil
}

// Activity lists the audit events recorded for an account, oldest first. An
// account with no recorded events (or a deployment without an audit log) gets
// an empty list rather than an error.
func (s *Service) Activity(ctx context.Context, id domain.AccountID) ([]audit.Event, error) {
	if _, err := s.AccountByID(ctx, id); err != nil {
		return nil, err
	}
	if s.auditLog == nil {
		return []audit.Event{}, nil
	}
	events, err := s.auditLog.List(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list account activity")
	}
	if events == nil {
		events = []audit.Event{}
	}
	return events, nil
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.transactor == nil {
		return fn(ctx)
	}
	return s.transactor.InTx(ctx, fn)
}

func (s *Service) recordFailedLogin() {
	if s.metrics != nil {
		s.metrics.IncrementFailedLogin()
	}
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
