package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/safestreet/account-service/internal/core/domain"
	"github.com/safestreet/account-service/internal/core/ports"
)

const (
	defaultVerifyTTL  = 10 * time.Minute
	defaultSessionTTL = 7 * 24 * time.Hour
)

// AccountService implements registration, email verification, and login.
type AccountService struct {
	users      ports.UserRepository
	tokens     ports.TokenService
	mailer     ports.Mailer
	audit      ports.AuditRecorder
	baseURL    string
	verifyTTL  time.Duration
	sessionTTL time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// NewAccountService wires the account workflows. Zero TTLs fall back to the
// defaults (10 minutes for verification links, 7 days for sessions).
func NewAccountService(
	users ports.UserRepository,
	tokens ports.TokenService,
	mailer ports.Mailer,
	audit ports.AuditRecorder,
	baseURL string,
	verifyTTL, sessionTTL time.Duration,
	log zerolog.Logger,
) *AccountService {
	if verifyTTL <= 0 {
		verifyTTL = defaultVerifyTTL
	}
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &AccountService{
		users:      users,
		tokens:     tokens,
		mailer:     mailer,
		audit:      audit,
		baseURL:    strings.TrimRight(baseURL, "/"),
		verifyTTL:  verifyTTL,
		sessionTTL: sessionTTL,
		now:        time.Now,
		log:        log,
	}
}

// Register creates an unverified account, then issues a verification token
// and dispatches the verification email before returning. Mail dispatch
// failure surfaces to the caller; the account still exists at that point.
//
// Conflict precedence: when both fields collide, the email conflict is
// reported. The lookups here only pick the friendly message — the unique
// indexes behind Create are what actually close the race between concurrent
// signups with the same identifier.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	if existing, err := s.users.FindByEmailOrName(ctx, email); err == nil && existing.Email == email {
		return nil, domain.NewConflict(domain.FieldEmail)
	}
	if existing, err := s.users.FindByEmailOrName(ctx, name); err == nil && existing.Name == name {
		return nil, domain.NewConflict(domain.FieldName)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(created.ID, ports.PurposeVerifyEmail, s.verifyTTL)
	if err != nil {
		return nil, fmt.Errorf("issue verification token: %w", err)
	}

	link := s.baseURL + "/verify-email?token=" + url.QueryEscape(token)
	subject, text, html := verificationEmail(created.Name, link, s.verifyTTL)
	if err := s.mailer.Send(ctx, created.Email, subject, text, html); err != nil {
		s.log.Error().Err(err).Str("email", created.Email).Msg("verification mail dispatch failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrMailDispatch, err)
	}

	s.record(domain.AuthEvent{UserID: created.ID, Action: domain.AuditSignup, Identifier: created.Email})
	s.log.Info().Str("user_id", created.ID).Str("name", created.Name).Msg("account registered")

	return created, nil
}

// VerifyEmail redeems a verification token and marks the account verified.
// The Unverified -> Verified transition is one-way; redeeming an already
// used token again is a no-op. All token failures collapse into the same
// caller-facing error so expiry and signature problems are indistinguishable.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.tokens.Verify(token, ports.PurposeVerifyEmail)
	if err != nil {
		return err
	}

	if err := s.users.MarkVerified(ctx, userID); err != nil {
		if err == domain.ErrUserNotFound {
			// Account vanished between issue and redeem. Same generic
			// failure as a bad token: nothing to leak.
			return domain.ErrTokenInvalid
		}
		return err
	}

	s.record(domain.AuthEvent{UserID: userID, Action: domain.AuditVerified})
	s.log.Info().Str("user_id", userID).Msg("email verified")
	return nil
}

// Login checks credentials and issues a session token. An unknown identifier
// and a wrong password produce the identical error; the verification gate is
// checked first and intentionally reveals that the account exists but is
// unverified.
func (s *AccountService) Login(ctx context.Context, identifier, password string) (string, domain.PublicProfile, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return "", domain.PublicProfile{}, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmailOrName(ctx, identifier)
	if err != nil {
		if err == domain.ErrUserNotFound {
			s.record(domain.AuthEvent{Action: domain.AuditLoginDenied, Identifier: identifier})
			return "", domain.PublicProfile{}, domain.ErrInvalidCredentials
		}
		return "", domain.PublicProfile{}, err
	}

	if !user.IsEmailVerified {
		s.record(domain.AuthEvent{UserID: user.ID, Action: domain.AuditLoginBlocked, Identifier: identifier})
		return "", domain.PublicProfile{}, domain.ErrEmailNotVerified
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.record(domain.AuthEvent{UserID: user.ID, Action: domain.AuditLoginDenied, Identifier: identifier})
		return "", domain.PublicProfile{}, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, ports.PurposeSession, s.sessionTTL)
	if err != nil {
		return "", domain.PublicProfile{}, fmt.Errorf("issue session token: %w", err)
	}

	s.record(domain.AuthEvent{UserID: user.ID, Action: domain.AuditLogin, Identifier: identifier})
	s.log.Info().Str("user_id", user.ID).Msg("login succeeded")

	return token, user.Profile(), nil
}

// Profile resolves the public view of an account for the bearer of a valid
// session token.
func (s *AccountService) Profile(ctx context.Context, userID string) (domain.PublicProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.PublicProfile{}, err
	}
	return user.Profile(), nil
}

func (s *AccountService) record(event domain.AuthEvent) {
	if s.audit == nil {
		return
	}
	event.Timestamp = s.now().UTC()
	s.audit.Record(event)
}
