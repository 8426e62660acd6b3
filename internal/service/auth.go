package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yamdb/yamdb-server/internal/auth"
	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
	"github.com/yamdb/yamdb-server/internal/mail"
	"github.com/yamdb/yamdb-server/internal/metrics"
	"github.com/yamdb/yamdb-server/internal/store"
	"github.com/yamdb/yamdb-server/internal/validation"
)

// Confirmation code errors reported under the confirmation_code field.
const (
	msgInvalidCode = "Invalid confirmation code."
	msgExpiredCode = "Confirmation code has expired."
)

// SignupRequest registers an account or re-sends its confirmation code.
type SignupRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,max=254,email"`
}

// TokenRequest exchanges a confirmation code for an access token.
type TokenRequest struct {
	Username         string `json:"username" validate:"required,username"`
	ConfirmationCode string `json:"confirmation_code" validate:"required,max=150"`
}

// AuthService runs the signup and token exchange flow and resolves bearer tokens.
type AuthService struct {
	store     store.Users
	tokens    *auth.TokenService
	mailer    *mail.Mailer
	validator *validation.Validator
	codeTTL   time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(st store.Users, tokens *auth.TokenService, mailer *mail.Mailer, v *validation.Validator, codeTTL time.Duration, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:     st,
		tokens:    tokens,
		mailer:    mailer,
		validator: v,
		codeTTL:   codeTTL,
		now:       time.Now,
		logger:    logger,
	}
}

// Signup creates the account unless the exact (username, email) pair already
// exists, then issues and emails a fresh confirmation code. Re-registering the
// same pair is not an error.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	req.Username = validation.NormalizeUsername(req.Username)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.matchSignup(ctx, req)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &domain.User{
			Username:   req.Username,
			Email:      req.Email,
			Role:       domain.RoleUser,
			DateJoined: s.now(),
		}
		if err := s.store.CreateUser(ctx, user); err != nil {
			if !errors.Is(err, store.ErrAlreadyExists) {
				return nil, fmt.Errorf("create user: %w", err)
			}
			// Lost a race with a concurrent signup for the same name or address.
			if user, err = s.resolveSignupRace(ctx, req, err); err != nil {
				return nil, err
			}
		} else {
			logFor(ctx, s.logger).Info("user registered", "user_id", user.ID, "username", user.Username)
		}
	}

	if err := s.issueCode(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// matchSignup returns the existing account for the exact pair, nil when both
// values are unused, or a field error naming which value belongs to someone else.
func (s *AuthService) matchSignup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	byName, err := lookup(s.store.GetUserByUsername(ctx, req.Username))
	if err != nil {
		return nil, err
	}
	byEmail, err := lookup(s.store.GetUserByEmail(ctx, req.Email))
	if err != nil {
		return nil, err
	}

	switch {
	case byName == nil && byEmail == nil:
		return nil, nil
	case byName != nil && byEmail != nil && byName.ID == byEmail.ID:
		return byName, nil
	}

	fields := domainerrors.FieldErrors{}
	if byName != nil {
		fields.Add("username", msgUsernameTaken)
	}
	if byEmail != nil {
		fields.Add("email", msgEmailTaken)
	}
	return nil, fields.Err()
}

// resolveSignupRace adopts the account a concurrent signup created for the same
// pair, or reports the field whose uniqueness constraint failed.
func (s *AuthService) resolveSignupRace(ctx context.Context, req SignupRequest, createErr error) (*domain.User, error) {
	user, err := s.matchSignup(ctx, req)
	if err != nil || user != nil {
		return user, err
	}
	switch store.FieldOf(createErr) {
	case "email":
		return nil, domainerrors.Conflict("email", msgEmailTaken)
	case "username":
		return nil, domainerrors.Conflict("username", msgUsernameTaken)
	}
	return nil, domainerrors.Conflict(domainerrors.NonFieldErrors, msgUsernameTaken)
}

func (s *AuthService) issueCode(ctx context.Context, user *domain.User) error {
	code, hash, err := auth.NewConfirmationCode()
	if err != nil {
		return fmt.Errorf("generate confirmation code: %w", err)
	}

	now := s.now()
	if err := s.store.SetConfirmationCode(ctx, &domain.ConfirmationCode{
		UserID:    user.ID,
		CodeHash:  hash,
		ExpiresAt: now.Add(s.codeTTL),
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("store confirmation code: %w", err)
	}
	metrics.ConfirmationCodesIssued.Inc()

	if err := s.mailer.SendConfirmationCode(ctx, user.Email, code); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to send confirmation code")
	}

	logFor(ctx, s.logger).Info("confirmation code issued", "user_id", user.ID)
	return nil
}

// Token checks the pending confirmation code and, on a match, consumes it and
// returns a bearer token. A wrong or expired code leaves the code in place.
func (s *AuthService) Token(ctx context.Context, req TokenRequest) (string, error) {
	req.Username = validation.NormalizeUsername(req.Username)
	if err := s.validator.Validate(req); err != nil {
		return "", err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return "", notFound(err)
	}

	pending, err := s.store.GetConfirmationCode(ctx, user.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "", s.rejectCode("missing", msgInvalidCode)
	case err != nil:
		return "", err
	case pending.Expired(s.now()):
		return "", s.rejectCode("expired", msgExpiredCode)
	case !auth.VerifyCode(pending.CodeHash, req.ConfirmationCode):
		return "", s.rejectCode("mismatch", msgInvalidCode)
	}

	// Consuming the code is the commit point: of two concurrent exchanges only one deletes it.
	if err := s.store.DeleteConfirmationCode(ctx, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", s.rejectCode("missing", msgInvalidCode)
		}
		return "", fmt.Errorf("consume confirmation code: %w", err)
	}

	token, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	metrics.TokensIssued.Inc()

	logFor(ctx, s.logger).Info("access token issued", "user_id", user.ID, "username", user.Username)
	return token, nil
}

func (s *AuthService) rejectCode(reason, msg string) error {
	metrics.RecordTokenExchangeFailure(reason)
	return domainerrors.Field("confirmation_code", msg)
}

// Authenticate resolves a bearer token to the current account state.
// Role changes made after issuance apply immediately.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("Given token not valid for any token type").WithCause(err)
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("User not found")
		}
		return nil, err
	}
	return user, nil
}
