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
	"github.com/campuscoffee/CampusCoffeeGo/pkg/slug"
)

// CreatePosInput holds the parameters for creating a POS.
type CreatePosInput struct {
	Name        string
	Description string
	Type        string
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
}

// UpdatePosInput holds the parameters for updating a POS.
type UpdatePosInput struct {
	Name        string
	Description string
	Type        string
	Street      string
	HouseNumber string
	PostalCode  string
	City        string
}

// PosService implements the business logic for the campus POS directory.
type PosService struct {
	repo     repository.PosRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewPosService creates a new POS service.
func NewPosService(repo repository.PosRepository, producer *event.Producer, logger *slog.Logger) *PosService {
	return &PosService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreatePos creates a new POS with a slug generated from its name.
func (s *PosService) CreatePos(ctx context.Context, input *CreatePosInput) (*domain.Pos, error) {
	if input.Name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if !domain.IsValidPosType(input.Type) {
		return nil, apperrors.Validation(fmt.Sprintf("invalid pos type %q", input.Type))
	}

	now := time.Now().UTC()
	pos := &domain.Pos{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		Type:        input.Type,
		Street:      input.Street,
		HouseNumber: input.HouseNumber,
		PostalCode:  input.PostalCode,
		City:        input.City,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, pos); err != nil {
		return nil, fmt.Errorf("create pos: %w", err)
	}

	if err := s.producer.PublishPosCreated(ctx, pos); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish pos.created event",
			slog.String("pos_id", pos.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "pos created",
		slog.String("pos_id", pos.ID),
		slog.String("name", pos.Name),
		slog.String("type", pos.Type),
	)

	return pos, nil
}

// GetPos retrieves a POS by id.
func (s *PosService) GetPos(ctx context.Context, id string) (*domain.Pos, error) {
	pos, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get pos: %w", err)
	}
	return pos, nil
}

// GetPosBySlug retrieves a POS by its URL slug.
func (s *PosService) GetPosBySlug(ctx context.Context, posSlug string) (*domain.Pos, error) {
	pos, err := s.repo.GetBySlug(ctx, posSlug)
	if err != nil {
		return nil, fmt.Errorf("get pos by slug: %w", err)
	}
	return pos, nil
}

// UpdatePos modifies an existing POS, regenerating its slug from the name.
func (s *PosService) UpdatePos(ctx context.Context, id string, input *UpdatePosInput) (*domain.Pos, error) {
	if input.Name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if !domain.IsValidPosType(input.Type) {
		return nil, apperrors.Validation(fmt.Sprintf("invalid pos type %q", input.Type))
	}

	pos, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get pos for update: %w", err)
	}

	pos.Name = input.Name
	pos.Slug = slug.Generate(input.Name)
	pos.Description = input.Description
	pos.Type = input.Type
	pos.Street = input.Street
	pos.HouseNumber = input.HouseNumber
	pos.PostalCode = input.PostalCode
	pos.City = input.City

	if err := s.repo.Update(ctx, pos); err != nil {
		return nil, fmt.Errorf("update pos: %w", err)
	}

	if err := s.producer.PublishPosUpdated(ctx, pos); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish pos.updated event",
			slog.String("pos_id", pos.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "pos updated",
		slog.String("pos_id", pos.ID),
		slog.String("name", pos.Name),
	)

	return pos, nil
}

// ListPos returns paginated POS entries.
func (s *PosService) ListPos(ctx context.Context, page, perPage int) ([]domain.Pos, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	entries, total, err := s.repo.List(ctx, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list pos: %w", err)
	}

	return entries, total, nil
}
