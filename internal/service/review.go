package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campuscoffee/CampusCoffeeGo/internal/domain"
	"github.com/campuscoffee/CampusCoffeeGo/internal/event"
	"github.com/campuscoffee/CampusCoffeeGo/internal/repository"
	apperrors "github.com/campuscoffee/CampusCoffeeGo/pkg/errors"
)

// Business rule messages surfaced to callers as VALIDATION failures.
const (
	msgDuplicateReview = "a POS may be reviewed only once by a given user"
	msgUserNotFound    = "user does not exist"
	msgReviewNotFound  = "review does not exist"
	msgSelfApproval    = "a user cannot approve their own review"
	msgUpdateNotAuthor = "a review may be updated only by its author"
)

// UpsertReviewInput holds the parameters for creating or updating a review.
// An empty ID means create; a non-empty ID means update.
type UpsertReviewInput struct {
	ID       string
	PosID    string
	AuthorID string
	Body     string
}

// ReviewService implements the review approval workflow: submission with
// referential and uniqueness checks, filtering by approval state, and the
// quorum-based approval transition.
type ReviewService struct {
	reviews      repository.ReviewRepository
	pos          repository.PosRepository
	users        repository.UserRepository
	producer     *event.Producer
	logger       *slog.Logger
	minApprovals int
}

// NewReviewService creates a new review service. minApprovals is the
// approval quorum: the approval count at which a review becomes approved.
func NewReviewService(
	reviews repository.ReviewRepository,
	pos repository.PosRepository,
	users repository.UserRepository,
	producer *event.Producer,
	logger *slog.Logger,
	minApprovals int,
) *ReviewService {
	return &ReviewService{
		reviews:      reviews,
		pos:          pos,
		users:        users,
		producer:     producer,
		logger:       logger,
		minApprovals: minApprovals,
	}
}

// Upsert creates or updates a review. The referenced POS must exist (missing
// POS is a NOT_FOUND failure naming it), and a user may review a given POS
// at most once (a duplicate is a VALIDATION failure). On update, only the
// stored author may edit the review and authorship never changes; the review
// being updated is exempt from the uniqueness check so body edits do not
// collide with the review's own row, and the stored approval counter and
// flag survive the update untouched.
func (s *ReviewService) Upsert(ctx context.Context, input *UpsertReviewInput) (*domain.Review, error) {
	if err := validateReviewInput(input); err != nil {
		return nil, err
	}

	// Referential check: the POS must exist. A missing POS propagates as
	// NOT_FOUND naming the POS and its id.
	if _, err := s.pos.GetByID(ctx, input.PosID); err != nil {
		return nil, fmt.Errorf("check pos exists: %w", err)
	}

	// Ownership check on update: authorship is fixed at creation, so a
	// caller who is not the stored author may not touch the review. This
	// runs before the uniqueness check so a non-author who happens to have
	// their own review of the POS gets the ownership failure, not the
	// duplicate one.
	if input.ID != "" {
		current, err := s.reviews.GetByID(ctx, input.ID)
		if err != nil {
			return nil, fmt.Errorf("load review for update: %w", err)
		}
		if current.AuthorID != input.AuthorID {
			return nil, apperrors.Validation(msgUpdateNotAuthor)
		}
	}

	// Uniqueness check on (pos, author), exempting the review being updated.
	exists, err := s.reviews.ExistsByPosAndAuthor(ctx, input.PosID, input.AuthorID, input.ID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate review: %w", err)
	}
	if exists {
		return nil, apperrors.Validation(msgDuplicateReview)
	}

	if input.ID == "" {
		return s.create(ctx, input)
	}
	return s.update(ctx, input)
}

func (s *ReviewService) create(ctx context.Context, input *UpsertReviewInput) (*domain.Review, error) {
	now := time.Now().UTC()
	review := domain.Review{
		ID:            uuid.New().String(),
		PosID:         input.PosID,
		AuthorID:      input.AuthorID,
		Body:          input.Body,
		ApprovalCount: 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	review = s.UpdateApprovalStatus(review)

	if err := s.reviews.Create(ctx, &review); err != nil {
		// A concurrent create for the same (pos, author) pair loses the race
		// on the unique index; it surfaces the same duplicate-review rule.
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.Validation(msgDuplicateReview)
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.producer.PublishReviewCreated(ctx, &review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("pos_id", review.PosID),
		slog.String("author_id", review.AuthorID),
	)

	return &review, nil
}

func (s *ReviewService) update(ctx context.Context, input *UpsertReviewInput) (*domain.Review, error) {
	// No AuthorID: the update statement never writes authorship.
	review := domain.Review{
		ID:    input.ID,
		PosID: input.PosID,
		Body:  input.Body,
	}

	stored, err := s.reviews.Update(ctx, &review)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.Validation(msgDuplicateReview)
		}
		return nil, fmt.Errorf("update review: %w", err)
	}

	if err := s.producer.PublishReviewUpdated(ctx, stored); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.updated event",
			slog.String("review_id", stored.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review updated",
		slog.String("review_id", stored.ID),
		slog.String("pos_id", stored.PosID),
	)

	return stored, nil
}

// GetReview retrieves a review by id.
func (s *ReviewService) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return review, nil
}

// FilterByApproval returns paginated reviews for a POS matching the approved
// flag. The POS must exist; a missing POS is a NOT_FOUND failure naming it.
func (s *ReviewService) FilterByApproval(ctx context.Context, posID string, approved bool, page, perPage int) ([]domain.Review, int, error) {
	if _, err := s.pos.GetByID(ctx, posID); err != nil {
		return nil, 0, fmt.Errorf("check pos exists: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	reviews, total, err := s.reviews.ListByPos(ctx, posID, approved, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, total, nil
}

// Approve records an approval of a review by the given user and recomputes
// the approved flag against the quorum. Three rules are checked, each a
// VALIDATION failure with its own message: the approver must exist, the
// review must exist, and the approver must not be the review's author. The
// review row is locked for the read-increment-write sequence so concurrent
// approvals serialize and no increment is lost.
//
// Approver identity is not recorded, so repeat approvals by the same user
// each increment the counter. That is the contract of this operation.
func (s *ReviewService) Approve(ctx context.Context, reviewID, approverID string) (*domain.Review, error) {
	// Approver existence: a missing user is a rule violation here, not a
	// NOT_FOUND, so the store outcome is re-labeled at this call site.
	if _, err := s.users.GetByID(ctx, approverID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Validation(msgUserNotFound)
		}
		return nil, fmt.Errorf("check approver exists: %w", err)
	}

	tx, err := s.reviews.Pool().BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin approval transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the review row so two concurrent approvals cannot both read the
	// same counter value.
	lockQuery := `
		SELECT id, pos_id, author_id, body, approval_count, approved, created_at, updated_at
		FROM reviews
		WHERE id = $1
		FOR UPDATE`

	var review domain.Review
	err = tx.QueryRow(ctx, lockQuery, reviewID).Scan(
		&review.ID,
		&review.PosID,
		&review.AuthorID,
		&review.Body,
		&review.ApprovalCount,
		&review.Approved,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Missing review is re-labeled as a rule violation, same as the
			// missing approver above.
			return nil, apperrors.Validation(msgReviewNotFound)
		}
		return nil, fmt.Errorf("lock review for approval: %w", err)
	}

	if review.AuthorID == approverID {
		return nil, apperrors.Validation(msgSelfApproval)
	}

	wasApproved := review.Approved
	updated := s.UpdateApprovalStatus(review.WithApproval(review.ApprovalCount+1, review.Approved))

	updateQuery := `
		UPDATE reviews
		SET approval_count = $2, approved = $3, updated_at = $4
		WHERE id = $1`

	updated.UpdatedAt = time.Now().UTC()
	if _, err := tx.Exec(ctx, updateQuery, updated.ID, updated.ApprovalCount, updated.Approved, updated.UpdatedAt); err != nil {
		return nil, fmt.Errorf("persist approval: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit approval transaction: %w", err)
	}

	// Publish after commit; publish failures never fail the approval.
	if err := s.producer.PublishApprovalRecorded(ctx, &updated, approverID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.approval_recorded event",
			slog.String("review_id", updated.ID),
			slog.String("error", err.Error()),
		)
	}
	if !wasApproved && updated.Approved {
		if err := s.producer.PublishReviewApproved(ctx, &updated); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish review.approved event",
				slog.String("review_id", updated.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "review approval recorded",
		slog.String("review_id", updated.ID),
		slog.String("approver_id", approverID),
		slog.Int("approval_count", updated.ApprovalCount),
		slog.Bool("approved", updated.Approved),
	)

	return &updated, nil
}

// UpdateApprovalStatus recomputes only the approved flag from the approval
// count against the quorum. It never touches the counter and never persists.
func (s *ReviewService) UpdateApprovalStatus(review domain.Review) domain.Review {
	return review.WithApproval(review.ApprovalCount, review.ApprovalCount >= s.minApprovals)
}

func validateReviewInput(input *UpsertReviewInput) error {
	if input.PosID == "" {
		return apperrors.Validation("pos_id is required")
	}
	if input.AuthorID == "" {
		return apperrors.Validation("author_id is required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return apperrors.Validation("review body must not be blank")
	}
	if utf8.RuneCountInString(input.Body) > domain.MaxReviewBodyLength {
		return apperrors.Validation(fmt.Sprintf("review body must be at most %d characters", domain.MaxReviewBodyLength))
	}
	return nil
}
