package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campuscoffee/CampusCoffeeGo/internal/domain"
	pkgkafka "github.com/campuscoffee/CampusCoffeeGo/pkg/kafka"
)

// Kafka topic constants for campus coffee domain events.
const (
	TopicReviewCreated          = "campuscoffee.review.created"
	TopicReviewUpdated          = "campuscoffee.review.updated"
	TopicReviewApprovalRecorded = "campuscoffee.review.approval_recorded"
	TopicReviewApproved         = "campuscoffee.review.approved"
	TopicPosCreated             = "campuscoffee.pos.created"
	TopicPosUpdated             = "campuscoffee.pos.updated"
	TopicUserRegistered         = "campuscoffee.user.registered"
)

// Aggregate type constants.
const (
	AggregateTypeReview = "review"
	AggregateTypePos    = "pos"
	AggregateTypeUser   = "user"
)

// Source identifier for events originating from this service.
const SourceCampusCoffeeAPI = "campuscoffee-api"

// ReviewData is the payload for review.created and review.updated events.
type ReviewData struct {
	ReviewID      string `json:"review_id"`
	PosID         string `json:"pos_id"`
	AuthorID      string `json:"author_id"`
	ApprovalCount int    `json:"approval_count"`
	Approved      bool   `json:"approved"`
}

// ApprovalRecordedData is the payload for a review.approval_recorded event.
type ApprovalRecordedData struct {
	ReviewID      string `json:"review_id"`
	PosID         string `json:"pos_id"`
	ApproverID    string `json:"approver_id"`
	ApprovalCount int    `json:"approval_count"`
	Approved      bool   `json:"approved"`
}

// ReviewApprovedData is the payload for a review.approved event, published
// once when a review crosses the approval quorum.
type ReviewApprovedData struct {
	ReviewID      string `json:"review_id"`
	PosID         string `json:"pos_id"`
	AuthorID      string `json:"author_id"`
	ApprovalCount int    `json:"approval_count"`
}

// PosData is the payload for pos.created and pos.updated events.
type PosData struct {
	PosID string `json:"pos_id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Type  string `json:"type"`
}

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	UserID string `json:"user_id"`
	Login  string `json:"login"`
	Email  string `json:"email"`
}

// Producer publishes campus coffee domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publishReview(ctx context.Context, topic string, review *domain.Review) error {
	data := ReviewData{
		ReviewID:      review.ID,
		PosID:         review.PosID,
		AuthorID:      review.AuthorID,
		ApprovalCount: review.ApprovalCount,
		Approved:      review.Approved,
	}

	event, err := pkgkafka.NewEvent(topic, review.ID, AggregateTypeReview, SourceCampusCoffeeAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published review event",
		slog.String("topic", topic),
		slog.String("review_id", review.ID),
		slog.String("pos_id", review.PosID),
	)

	return nil
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return p.publishReview(ctx, TopicReviewCreated, review)
}

// PublishReviewUpdated publishes a review.updated event.
func (p *Producer) PublishReviewUpdated(ctx context.Context, review *domain.Review) error {
	return p.publishReview(ctx, TopicReviewUpdated, review)
}

// PublishApprovalRecorded publishes a review.approval_recorded event for
// every successful approval.
func (p *Producer) PublishApprovalRecorded(ctx context.Context, review *domain.Review, approverID string) error {
	data := ApprovalRecordedData{
		ReviewID:      review.ID,
		PosID:         review.PosID,
		ApproverID:    approverID,
		ApprovalCount: review.ApprovalCount,
		Approved:      review.Approved,
	}

	event, err := pkgkafka.NewEvent(TopicReviewApprovalRecorded, review.ID, AggregateTypeReview, SourceCampusCoffeeAPI, data)
	if err != nil {
		return fmt.Errorf("create review.approval_recorded event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewApprovalRecorded, event); err != nil {
		return fmt.Errorf("publish review.approval_recorded event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.approval_recorded event",
		slog.String("review_id", review.ID),
		slog.String("approver_id", approverID),
		slog.Int("approval_count", review.ApprovalCount),
	)

	return nil
}

// PublishReviewApproved publishes a review.approved event for the
// pending-to-approved transition.
func (p *Producer) PublishReviewApproved(ctx context.Context, review *domain.Review) error {
	data := ReviewApprovedData{
		ReviewID:      review.ID,
		PosID:         review.PosID,
		AuthorID:      review.AuthorID,
		ApprovalCount: review.ApprovalCount,
	}

	event, err := pkgkafka.NewEvent(TopicReviewApproved, review.ID, AggregateTypeReview, SourceCampusCoffeeAPI, data)
	if err != nil {
		return fmt.Errorf("create review.approved event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewApproved, event); err != nil {
		return fmt.Errorf("publish review.approved event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.approved event",
		slog.String("review_id", review.ID),
		slog.String("pos_id", review.PosID),
	)

	return nil
}

func (p *Producer) publishPos(ctx context.Context, topic string, pos *domain.Pos) error {
	data := PosData{
		PosID: pos.ID,
		Name:  pos.Name,
		Slug:  pos.Slug,
		Type:  pos.Type,
	}

	event, err := pkgkafka.NewEvent(topic, pos.ID, AggregateTypePos, SourceCampusCoffeeAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published pos event",
		slog.String("topic", topic),
		slog.String("pos_id", pos.ID),
	)

	return nil
}

// PublishPosCreated publishes a pos.created event.
func (p *Producer) PublishPosCreated(ctx context.Context, pos *domain.Pos) error {
	return p.publishPos(ctx, TopicPosCreated, pos)
}

// PublishPosUpdated publishes a pos.updated event.
func (p *Producer) PublishPosUpdated(ctx context.Context, pos *domain.Pos) error {
	return p.publishPos(ctx, TopicPosUpdated, pos)
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		UserID: user.ID,
		Login:  user.Login,
		Email:  user.Email,
	}

	event, err := pkgkafka.NewEvent(TopicUserRegistered, user.ID, AggregateTypeUser, SourceCampusCoffeeAPI, data)
	if err != nil {
		return fmt.Errorf("create user.registered event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserRegistered, event); err != nil {
		return fmt.Errorf("publish user.registered event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
	)

	return nil
}
