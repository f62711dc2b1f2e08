package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/souqna/marketplace/internal/auth"
	"github.com/souqna/marketplace/internal/config"
	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/events"
	"github.com/souqna/marketplace/internal/repository"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

// AuthService coordinates registration, login and account self-service.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	tokenMgr   *auth.TokenManager
	cfg        config.AuthConfig
	resetTTL   time.Duration
	now        func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
	TokenOptions      []auth.TokenOption
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name          string
	Email         string
	Phone         *string
	Password      string
	AcceptedTerms *bool
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Name  *string
	Phone *string
}

// AuthResult pairs an account with a freshly issued credential.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), deps.TokenOptions...),
		cfg:        cfg.Auth,
		resetTTL:   time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
		now:        time.Now,
	}
}

// Register creates a USER account and issues an extended-lifetime credential.
func (s *AuthService) Register(ctx context.Context, input RegisterInput, settings domain.AppSettings) (*AuthResult, error) {
	if !settings.AllowRegistrations {
		return nil, apperrors.NewForbiddenCode("REGISTRATION_CLOSED", "registrations are currently closed")
	}
	if err := requireOpen(nil, settings); err != nil {
		return nil, err
	}
	if input.AcceptedTerms == nil || !*input.AcceptedTerms {
		return nil, apperrors.NewValidationError("terms must be accepted", map[string]any{"field": "acceptedTerms"})
	}

	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	phone, phoneOK := normalizedPhone(input.Phone)
	details := map[string]any{}
	if name == "" {
		details["name"] = "required"
	}
	if !validEmail(email) {
		details["email"] = "invalid"
	}
	if len(input.Password) < auth.MinPasswordLength {
		details["password"] = "too short"
	}
	if !phoneOK {
		details["phone"] = "invalid"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid registration", details)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if phone != nil {
		if _, err := s.users.GetByPhone(ctx, *phone); err == nil {
			return nil, apperrors.NewConflict("phone already registered", map[string]any{"field": "phone"})
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	acceptedAt := s.now().UTC()
	termsVersion := s.cfg.TermsVersion
	user := &domain.User{
		Name:            name,
		Email:           email,
		Phone:           phone,
		PasswordHash:    hash,
		Role:            domain.RoleUser,
		Status:          domain.UserStatusActive,
		TermsAcceptedAt: &acceptedAt,
		TermsVersion:    &termsVersion,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, userWriteError(err)
	}

	result, err := s.issue(user, s.cfg.ExtendedTokenTTL())
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.NewEvent(events.EventUserRegistered, user.ID,
		events.Actor{UserID: user.ID, Role: user.Role},
		events.UserRegisteredPayload{Email: user.Email, TermsVersion: termsVersion}))
	return result, nil
}

// Login authenticates with email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) && s.isDemoLogin(email, password) {
		user, err = s.provisionDemoAccount(ctx)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.IsActive() {
		return nil, apperrors.NewForbiddenCode("ACCOUNT_SUSPENDED", "account suspended")
	}
	return s.issue(user, s.cfg.AccessTokenTTL())
}

func (s *AuthService) isDemoLogin(email, password string) bool {
	return s.cfg.DemoAccountEnabled && s.cfg.DemoEmail != "" &&
		email == s.cfg.DemoEmail && password == s.cfg.DemoPassword
}

func (s *AuthService) provisionDemoAccount(ctx context.Context) (*domain.User, error) {
	hash, err := auth.HashPassword(s.cfg.DemoPassword, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	acceptedAt := s.now().UTC()
	termsVersion := s.cfg.TermsVersion
	user := &domain.User{
		Name:            "Demo User",
		Email:           s.cfg.DemoEmail,
		PasswordHash:    hash,
		Role:            domain.RoleUser,
		Status:          domain.UserStatusActive,
		TermsAcceptedAt: &acceptedAt,
		TermsVersion:    &termsVersion,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if _, dup := duplicateConstraint(err); dup {
			// lost a race with a concurrent demo login
			return s.users.GetByEmail(ctx, s.cfg.DemoEmail)
		}
		return nil, err
	}
	s.logger.Info("provisioned demo account", zap.String("user_id", user.ID))
	return user, nil
}

// Profile returns the caller's persisted account.
func (s *AuthService) Profile(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	if err := auth.RequireRole(identity); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, identity.SubjectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return user, err
}

// UpdateProfile edits the caller's name and phone.
func (s *AuthService) UpdateProfile(ctx context.Context, identity *domain.Identity, input ProfileUpdate) (*domain.User, error) {
	user, err := s.Profile(ctx, identity)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", map[string]any{"field": "name"})
		}
		user.Name = name
	}
	if input.Phone != nil {
		phone, ok := normalizedPhone(input.Phone)
		if !ok {
			return nil, apperrors.NewValidationError("invalid phone", map[string]any{"field": "phone"})
		}
		if phone != nil {
			existing, err := s.users.GetByPhone(ctx, *phone)
			if err == nil && existing.ID != user.ID {
				return nil, apperrors.NewConflict("phone already registered", map[string]any{"field": "phone"})
			} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return nil, err
			}
		}
		user.Phone = phone
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, userWriteError(err)
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, identity *domain.Identity, currentPassword, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError("password too short", map[string]any{"field": "newPassword"})
	}
	user, err := s.Profile(ctx, identity)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// RequestPasswordReset stores a single-use reset token. Unknown emails return (nil, nil)
// so callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*domain.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	token := &domain.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmPasswordReset consumes the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return apperrors.NewValidationError("password too short", map[string]any{"field": "newPassword"})
	}
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewValidationCode("RESET_TOKEN_INVALID", "reset token expired or used")
	}
	if err != nil {
		return err
	}
	if token.UsedAt != nil || s.now().After(token.ExpiresAt) {
		return apperrors.NewValidationCode("RESET_TOKEN_INVALID", "reset token expired or used")
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	return s.resets.MarkUsed(ctx, token.ID)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(user *domain.User, ttl time.Duration) (*AuthResult, error) {
	token, exp, err := s.tokenMgr.Issue(user.ID, user.Email, user.Role, ttl)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// normalizedPhone stores phones in their normalized form so the unique index compares
// equivalent spellings. A blank input clears the phone.
func normalizedPhone(raw *string) (*string, bool) {
	trimmed := trimmedPtr(raw)
	if trimmed == nil {
		return nil, true
	}
	normalized := domain.NormalizePhone(*trimmed)
	if normalized == "" {
		return nil, false
	}
	return &normalized, true
}

func userWriteError(err error) error {
	constraint, dup := duplicateConstraint(err)
	if !dup {
		return err
	}
	switch constraint {
	case repository.ConstraintUsersPhone:
		return apperrors.NewConflict("phone already registered", map[string]any{"field": "phone"})
	default:
		return apperrors.NewConflict("email already registered", map[string]any{"field": "email"})
	}
}
