package repository

import (
	"context"

	"github.com/campuscoffee/CampusCoffeeGo/internal/domain"
	"github.com/campuscoffee/CampusCoffeeGo/pkg/database"
)

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a new review.
	Create(ctx context.Context, review *domain.Review) error

	// Update replaces the caller-editable fields (pos, author, body) of an
	// existing review and returns the stored row, including the approval
	// counter and flag that the update leaves untouched.
	Update(ctx context.Context, review *domain.Review) (*domain.Review, error)

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Review, error)

	// ExistsByPosAndAuthor reports whether a review already exists for the
	// (pos, author) pair. A non-empty excludeID keeps that review out of the
	// check so an update does not collide with its own row.
	ExistsByPosAndAuthor(ctx context.Context, posID, authorID, excludeID string) (bool, error)

	// ListByPos returns paginated reviews for a POS matching the approved
	// flag, along with the total count.
	ListByPos(ctx context.Context, posID string, approved bool, page, perPage int) ([]domain.Review, int, error)

	// Pool returns the underlying connection pool for transactional
	// operations in the service layer.
	Pool() database.DBTX
}

// PosRepository defines the interface for POS persistence operations.
type PosRepository interface {
	// Create inserts a new POS.
	Create(ctx context.Context, pos *domain.Pos) error

	// GetByID retrieves a POS by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Pos, error)

	// GetBySlug retrieves a POS by its URL slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Pos, error)

	// Update modifies an existing POS.
	Update(ctx context.Context, pos *domain.Pos) error

	// List returns paginated POS entries along with the total count.
	List(ctx context.Context, page, perPage int) ([]domain.Pos, int, error)
}

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// List returns paginated users along with the total count.
	List(ctx context.Context, page, perPage int) ([]domain.User, int, error)
}
