package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/sakif/samewave/internal/apperror"
	"github.com/sakif/samewave/internal/auth"
	"github.com/sakif/samewave/internal/model"
	"github.com/sakif/samewave/internal/repository"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 6
)

// AuthService handles signup, login and session lookup:
//
//	AuthHandler (HTTP) → AuthService → UserRepository
//	                   ↘ TokenService (optional JWT)
//
// tokens may be nil. Signup and login then succeed without a token and
// callers identify themselves with the user id alone.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user and the issued token. Token is empty when no
// TokenService is configured.
type AuthResult struct {
	User  *model.User
	Token string
}

// Signup creates an account. Missing or invalid fields fail with
// apperror.ErrValidation, a taken username or email with apperror.ErrConflict.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "username, email and password are required")
	}
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "invalid email format")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", auth.MaxPasswordBytes))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		AvatarURL:    model.AvatarURL(username),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user %s: %w", username, err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return s.result(user)
}

// Login checks the credential. An unknown email and a wrong password are
// indistinguishable to the caller: both are apperror.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("login rejected", slog.String("userID", user.ID))
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return s.result(user)
}

// GetSession returns the account behind userID.
func (s *AuthService) GetSession(ctx context.Context, userID string) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.Unauthorized("user id is required")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", userID, err)
	}
	return user, nil
}

// ValidateToken returns the user id a bearer token was issued for.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	if s.tokens == nil {
		return "", apperror.Unauthorized("tokens are not enabled")
	}
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", apperror.Unauthorized(err.Error())
	}
	return userID, nil
}

// DemoUser is a fixed account created at startup.
type DemoUser struct {
	ID       string
	Username string
	Email    string
	Password string
}

// DemoUsers are the accounts a fresh store ships with.
var DemoUsers = []DemoUser{
	{ID: "user_demo1", Username: "demo", Email: "demo@samewave.com", Password: "demo123"},
	{ID: "user_test1", Username: "test", Email: "test@samewave.com", Password: "test123"},
}

// SeedDemoUsers creates the demo accounts. Accounts that already exist are
// left alone, so seeding on every start is safe.
func (s *AuthService) SeedDemoUsers(ctx context.Context, demos []DemoUser) error {
	for _, d := range demos {
		hash, err := s.passwords.Hash(d.Password)
		if err != nil {
			return fmt.Errorf("service/auth: %w", err)
		}
		user := &model.User{
			ID:           d.ID,
			Username:     d.Username,
			Email:        strings.ToLower(d.Email),
			PasswordHash: hash,
			AvatarURL:    model.AvatarURL(d.Username),
		}
		err = s.users.CreateUser(ctx, user)
		if errors.Is(err, apperror.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("service/auth: seeding %s: %w", d.Username, err)
		}
		s.logger.Info("demo user seeded", slog.String("username", d.Username))
	}
	return nil
}

func (s *AuthService) result(user *model.User) (*AuthResult, error) {
	res := &AuthResult{User: user}
	if s.tokens == nil {
		return res, nil
	}
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	res.Token = token
	return res, nil
}

func validateUsername(username string) error {
	n := len([]rune(username))
	if n < MinUsernameLength || n > MaxUsernameLength {
		return apperror.ValidationFailed("username",
			fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength))
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return apperror.ValidationFailed("username", "username must not contain spaces")
	}
	return nil
}
