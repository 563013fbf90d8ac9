package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
	"github.com/fastygo/taskmanager/usecase"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	Burn(password string)
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// RegisterInput is the raw registration form.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput is the raw login form. ClientIP scopes the failed-login
// counter so one address cannot lock an account out for everyone.
type LoginInput struct {
	Email    string
	Password string
	ClientIP string
}

// Result is returned by Register and Login.
type Result struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

type UseCase struct {
	users    repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	attempts repository.LoginAttemptRepository
	activity usecase.ActivityRecorder
	logger   *zap.Logger
}

// Option customizes the use case.
type Option func(*UseCase)

// WithLoginAttempts enables the failed-login limiter.
func WithLoginAttempts(attempts repository.LoginAttemptRepository) Option {
	return func(uc *UseCase) { uc.attempts = attempts }
}

// WithActivity records auth events.
func WithActivity(recorder usecase.ActivityRecorder) Option {
	return func(uc *UseCase) {
		if recorder != nil {
			uc.activity = recorder
		}
	}
}

func New(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		activity: usecase.NopRecorder{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Register creates an account and returns its public fields with a token.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	username := strings.TrimSpace(in.Username)
	email := domain.NormalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, domain.ErrMissingFields
	}
	if !domain.ValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}
	if len(in.Password) > domain.MaxPasswordBytes {
		return nil, domain.ErrPasswordTooLong
	}

	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrPasswordTooLong) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to hash password", err)
	}

	user := &domain.User{Username: username, Email: email, PasswordHash: hash}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	result, err := uc.issue(user)
	if err != nil {
		return nil, err
	}
	uc.activity.Record(ctx, domain.Activity{UserID: user.ID, Name: domain.ActivityUserRegistered, SubjectID: user.ID})
	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return result, nil
}

// Login checks credentials and returns a fresh token. A missing account and a
// wrong password produce the same error.
func (uc *UseCase) Login(ctx context.Context, in LoginInput) (*Result, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" || len(in.Password) > domain.MaxPasswordBytes {
		uc.hasher.Burn(in.Password)
		return nil, domain.ErrInvalidCredentials
	}

	limitKey := attemptKey(email, in.ClientIP)
	if !uc.allowed(ctx, limitKey) {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		uc.hasher.Burn(in.Password)
		uc.fail(ctx, limitKey, "")
		return nil, domain.ErrInvalidCredentials
	}

	if !uc.hasher.Verify(in.Password, user.PasswordHash) {
		uc.fail(ctx, limitKey, user.ID)
		return nil, domain.ErrInvalidCredentials
	}

	result, err := uc.issue(user)
	if err != nil {
		return nil, err
	}
	if uc.attempts != nil {
		if err := uc.attempts.Reset(ctx, limitKey); err != nil {
			uc.logger.Warn("failed to reset login attempts", zap.Error(err))
		}
	}
	uc.activity.Record(ctx, domain.Activity{UserID: user.ID, Name: domain.ActivityUserLogin, SubjectID: user.ID})
	return result, nil
}

// Me echoes the identity resolved by the access middleware.
func (uc *UseCase) Me(user *domain.User) (domain.PublicUser, error) {
	if user == nil || user.ID == "" {
		return domain.PublicUser{}, domain.ErrUnauthorized
	}
	return user.Public(), nil
}

func (uc *UseCase) issue(user *domain.User) (*Result, error) {
	token, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to issue token", err)
	}
	return &Result{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Token:    token,
	}, nil
}

func attemptKey(email, clientIP string) string {
	if clientIP == "" {
		return email
	}
	return email + "|" + clientIP
}

// allowed fails open: a limiter outage never blocks a login.
func (uc *UseCase) allowed(ctx context.Context, key string) bool {
	if uc.attempts == nil {
		return true
	}
	ok, err := uc.attempts.Allowed(ctx, key)
	if err != nil {
		uc.logger.Warn("login limiter unavailable", zap.Error(err))
		return true
	}
	if !ok {
		uc.logger.Warn("login rate limited")
	}
	return ok
}

func (uc *UseCase) fail(ctx context.Context, key, userID string) {
	if uc.attempts != nil {
		if _, err := uc.attempts.Fail(ctx, key); err != nil {
			uc.logger.Warn("failed to count login attempt", zap.Error(err))
		}
	}
	uc.activity.Record(ctx, domain.Activity{UserID: userID, Name: domain.ActivityUserLoginFailed})
}
