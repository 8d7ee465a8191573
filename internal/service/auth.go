// Package service holds the business rules that sit between the HTTP
// handlers and the repositories:
//
//	handler (HTTP) → service (validation, ownership) → repository (SQL)
//	                         ↘ cache, ai gateway
//
// Services return *apperror.AppError for anything the caller did wrong and
// wrap everything else with "service/<area>: ...". They never see
// http.Request or ResponseWriter.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"

	"github.com/YadavAkhileshh/CrackBano/internal/apperror"
	"github.com/YadavAkhileshh/CrackBano/internal/auth"
	"github.com/YadavAkhileshh/CrackBano/internal/model"
	"github.com/YadavAkhileshh/CrackBano/internal/repository"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

// MaxProfileImageURLLength caps the stored profile image URL.
const MaxProfileImageURLLength = 2048

// errBadCredentials is shared by every login failure so responses do not
// reveal whether the email exists.
var errBadCredentials = apperror.Unauthorized("invalid email or password")

// AuthService registers users, checks their passwords and issues tokens.
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

// AuthResult bundles the user record and the issued JWT so the handler can
// respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	// ProfileImageURL is optional, usually the URL upload-image returned.
	ProfileImageURL string
}

// Register creates an account and returns it with a fresh token.
//
// Name, email and password are all required; the email must parse as an
// address and the password must be MinPasswordLength characters or more.
// A taken email is apperror.ErrConflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.ProfileImageURL = strings.TrimSpace(in.ProfileImageURL)

	switch {
	case in.Name == "":
		return nil, apperror.ValidationFailed("name", "name is required")
	case in.Email == "":
		return nil, apperror.ValidationFailed("email", "email is required")
	case !validEmail(in.Email):
		return nil, apperror.ValidationFailed("email", "email is not a valid address")
	case len([]rune(in.Password)) < MinPasswordLength:
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	case in.ProfileImageURL != "" && !validImageURL(in.ProfileImageURL):
		return nil, apperror.ValidationFailed("profileImageUrl",
			"profile image URL must be an absolute http(s) URL")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperror.ValidationFailed("password",
				fmt.Sprintf("password must be %d bytes or fewer", auth.MaxPasswordBytes))
		}
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Name:            in.Name,
		Email:           in.Email,
		ProfileImageURL: in.ProfileImageURL,
		PasswordHash:    hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: "user already exists",
				Field:   "email",
			}
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))
	return s.issue(user)
}

// Login checks email and password. Unknown emails and wrong passwords get
// the same apperror.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("login rejected", slog.String("userID", user.ID))
			return nil, errBadCredentials
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return s.issue(user)
}

// GetUserByID returns the user for the given internal ID. The profile
// handler calls it with the id RequireAuth put in the context.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundOrDenied("user")
		}
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	return user, nil
}

// ValidateToken returns the user id a token was issued for.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validImageURL(raw string) bool {
	if len(raw) > MaxProfileImageURLLength {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
