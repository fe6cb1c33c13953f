package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/misonrisa/clinic/internal/platform/apperror"
	"github.com/misonrisa/clinic/internal/platform/auth"
)

type Service struct {
	repo      Repository
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewService(repo Repository, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *Service {
	return &Service{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL, logger: logger}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

type AuthResult struct {
	Token   string   `json:"token"`
	Account *Account `json:"account"`
}

// Register creates a new account and returns a signed token for it.
// New accounts default to the patient role; admin and doctor roles are
// assigned through the request only, never inferred.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if in.Name == "" {
		return nil, apperror.ValidationField("name", "name is required")
	}
	if in.Email == "" {
		return nil, apperror.ValidationField("email", "email is required")
	}
	if len(in.Password) < 6 {
		return nil, apperror.ValidationField("password", "password must be at least 6 characters")
	}
	if in.Role == "" {
		in.Role = RolePatient
	}
	if !ValidRole(in.Role) {
		return nil, apperror.ValidationField("role", "unknown role: "+in.Role)
	}

	if existing, err := s.repo.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, apperror.Conflict("email already registered")
	} else if err != nil && !errors.Is(err, apperror.NotFound("")) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	a := &Account{Name: in.Name, Email: in.Email, PasswordHash: hash, Role: in.Role}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	token, err := auth.IssueToken(s.jwtSecret, a.ID.String(), a.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", a.ID.String()).Str("role", a.Role).Msg("account registered")
	return &AuthResult{Token: token, Account: a}, nil
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and returns a signed token. Unknown email and
// wrong password produce the same unauthorized error.
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || in.Password == "" {
		return nil, apperror.Validation("email and password are required")
	}

	a, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.NotFound("")) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if !auth.CheckPassword(a.PasswordHash, in.Password) {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	token, err := auth.IssueToken(s.jwtSecret, a.ID.String(), a.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, Account: a}, nil
}

// Profile returns the account for the given id.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}
