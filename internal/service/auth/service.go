package auth

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/model"
	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/repository"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/auth"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/errors"
	"github.com/SebasQuintero99/LandingPageMiAbogada/pkg/security"
)

type Service interface {
	// Register creates the first admin account. Once any user exists,
	// registration is closed and new accounts go through CreateUser.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
	Profile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID, actor uuid.UUID) error
}

// tempPassword is assigned to admin-created accounts until the owner logs in
// and changes it.
const tempPassword = "temp123"

type service struct {
	users    repository.UserRepository
	jwt      auth.JWTService
	hasher   security.PasswordHasher
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(users repository.UserRepository, jwt auth.JWTService, hasher security.PasswordHasher, logger zerolog.Logger) Service {
	return &service{
		users:    users,
		jwt:      jwt,
		hasher:   hasher,
		validate: validator.New(),
		logger:   logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Validation("invalid registration request")
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if count > 0 {
		return nil, errors.Forbidden("registration is closed")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.Validation("password does not meet the policy",
			errors.FieldError{Field: "password", Message: "must be at least 6 characters"})
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         model.UserRoleAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			return nil, errors.Conflict("email already registered")
		}
		return nil, errors.Internal(err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("admin account registered")
	return s.issueToken(user)
}

func (s *service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Validation("invalid login request")
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.Unauthorized("invalid credentials")
		}
		return nil, errors.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, errors.Unauthorized("invalid credentials")
	}

	return s.issueToken(user)
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("user")
		}
		return nil, errors.Internal(err)
	}
	return user, nil
}

func (s *service) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return users, nil
}

func (s *service) CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.Validation("invalid user request")
	}

	hash, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return nil, errors.Internal(err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicate {
			return nil, errors.Validation("a user with this email already exists",
				errors.FieldError{Field: "email", Message: "already registered"})
		}
		return nil, errors.Internal(err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("role", user.Role).Msg("user created")
	return user, nil
}

func (s *service) DeleteUser(ctx context.Context, id uuid.UUID, actor uuid.UUID) error {
	if id == actor {
		return errors.Conflict("cannot delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFound("user")
		}
		return errors.Internal(err)
	}
	s.logger.Info().Str("user_id", id.String()).Msg("user deleted")
	return nil
}

func (s *service) issueToken(user *model.User) (*model.TokenResponse, error) {
	token, expiresAt, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return &model.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
