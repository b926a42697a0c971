package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campuscoffee/CampusCoffeeGo/internal/domain"
	"github.com/campuscoffee/CampusCoffeeGo/pkg/database"
	apperrors "github.com/campuscoffee/CampusCoffeeGo/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review. A unique violation on (pos_id, author_id)
// surfaces as ErrAlreadyExists so the caller decides which business failure
// to raise.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, pos_id, author_id, body, approval_count, approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.PosID,
		review.AuthorID,
		review.Body,
		review.ApprovalCount,
		review.Approved,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrAlreadyExists
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// Update replaces the caller-editable fields of an existing review.
// author_id is fixed at creation and the approval counter and flag are
// never touched here, so an edit cannot reassign authorship or forge
// approval state. Returns the stored row.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	query := `
		UPDATE reviews
		SET pos_id = $2, body = $3, updated_at = $4
		WHERE id = $1
		RETURNING id, pos_id, author_id, body, approval_count, approved, created_at, updated_at`

	var stored domain.Review
	err := r.pool.QueryRow(ctx, query,
		review.ID,
		review.PosID,
		review.Body,
		time.Now().UTC(),
	).Scan(
		&stored.ID,
		&stored.PosID,
		&stored.AuthorID,
		&stored.Body,
		&stored.ApprovalCount,
		&stored.Approved,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", review.ID)
		}
		if isUniqueViolation(err) {
			return nil, apperrors.ErrAlreadyExists
		}
		return nil, fmt.Errorf("update review: %w", err)
	}

	return &stored, nil
}

// GetByID retrieves a review by its unique identifier.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `
		SELECT id, pos_id, author_id, body, approval_count, approved, created_at, updated_at
		FROM reviews
		WHERE id = $1`

	var rv domain.Review
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rv.ID,
		&rv.PosID,
		&rv.AuthorID,
		&rv.Body,
		&rv.ApprovalCount,
		&rv.Approved,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("get review by id: %w", err)
	}

	return &rv, nil
}

// ExistsByPosAndAuthor reports whether a review for the (pos, author) pair
// exists. A non-empty excludeID exempts that review, so updating a review
// does not trip over its own row.
func (r *ReviewRepository) ExistsByPosAndAuthor(ctx context.Context, posID, authorID, excludeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE pos_id = $1 AND author_id = $2`
	args := []any{posID, authorID}
	if excludeID != "" {
		query += ` AND id <> $3`
		args = append(args, excludeID)
	}
	query += `)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check review exists by pos and author: %w", err)
	}

	return exists, nil
}

// ListByPos returns paginated reviews for a POS matching the approved flag,
// newest first, along with the total count.
func (r *ReviewRepository) ListByPos(ctx context.Context, posID string, approved bool, page, perPage int) ([]domain.Review, int, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	query := `
		SELECT id, pos_id, author_id, body, approval_count, approved, created_at, updated_at,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE pos_id = $1 AND approved = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, posID, approved, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews by pos: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.PosID,
			&rv.AuthorID,
			&rv.Body,
			&rv.ApprovalCount,
			&rv.Approved,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// Pool returns the underlying connection pool for transactional operations
// in the service layer.
func (r *ReviewRepository) Pool() database.DBTX {
	return r.pool
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
