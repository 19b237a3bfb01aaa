package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Dosada05/poker-club/models"
	"github.com/Dosada05/poker-club/repositories"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var emailRX = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.User, error)
	// CreateAdmin создаёт администратора или повышает роль существующего пользователя.
	CreateAdmin(ctx context.Context, input CreateAdminInput) (*models.User, bool, error)
}

type LoginInput struct {
	Email    string
	Password string
}

type CreateAdminInput struct {
	Email    string
	Password string
	Name     string
}

type authService struct {
	userRepo repositories.UserRepository
	logger   *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, logger *slog.Logger) AuthService {
	return &authService{userRepo: userRepo, logger: logger}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}
	return user, nil
}

// CreateAdmin returns created=false when an existing user was promoted.
func (s *authService) CreateAdmin(ctx context.Context, input CreateAdminInput) (*models.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)

	verr := newValidationError()
	verr.Check(emailRX.MatchString(email), "email", "must be a valid email address")
	verr.Check(len(input.Password) >= minPasswordLength, "password", fmt.Sprintf("must be at least %d characters long", minPasswordLength))
	if err := verr.OrNil(); err != nil {
		return nil, false, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			if err := s.userRepo.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
				return nil, false, mapRepositoryError(err)
			}
			existing.Role = models.RoleAdmin
		}
		s.logger.InfoContext(ctx, "existing user promoted to admin", slog.String("user_id", existing.ID))
		return existing, false, nil
	case !errors.Is(err, repositories.ErrUserNotFound):
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	if name == "" {
		name = email
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, mapRepositoryError(err)
	}
	s.logger.InfoContext(ctx, "admin user created", slog.String("user_id", user.ID))
	return user, true, nil
}
