package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campuscoffee/CampusCoffeeGo/internal/domain"
	"github.com/campuscoffee/CampusCoffeeGo/internal/event"
	"github.com/campuscoffee/CampusCoffeeGo/internal/repository"
	apperrors "github.com/campuscoffee/CampusCoffeeGo/pkg/errors"
)

// RegisterUserInput holds the parameters for registering an account.
type RegisterUserInput struct {
	Login     string
	Email     string
	FirstName string
	LastName  string
}

// UserService implements the business logic for the account registry.
type UserService struct {
	repo     repository.UserRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, producer *event.Producer, logger *slog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// Register creates a new account. Duplicate login or email surfaces as an
// ALREADY_EXISTS failure from the repository.
func (s *UserService) Register(ctx context.Context, input *RegisterUserInput) (*domain.User, error) {
	if input.Login == "" {
		return nil, apperrors.Validation("login is required")
	}
	if input.Email == "" {
		return nil, apperrors.Validation("email is required")
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New().String(),
		Login:     input.Login,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("login", user.Login),
	)

	return user, nil
}

// GetUser retrieves a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers returns paginated users.
func (s *UserService) ListUsers(ctx context.Context, page, perPage int) ([]domain.User, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	users, total, err := s.repo.List(ctx, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}
