package domain

import (
	"time"
)

// Review is a user-authored assessment of a POS. It starts pending and
// becomes approved once enough other users have approved it.
type Review struct {
	ID            string    `json:"id"`
	PosID         string    `json:"pos_id"`
	AuthorID      string    `json:"author_id"`
	Body          string    `json:"body"`
	ApprovalCount int       `json:"approval_count"`
	Approved      bool      `json:"approved"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MaxReviewBodyLength is the maximum review body length in runes.
const MaxReviewBodyLength = 2000

// WithApproval returns a copy of the review with the approval counter and
// flag replaced. All other fields are carried over unchanged; the receiver
// is not modified.
func (r Review) WithApproval(count int, approved bool) Review {
	updated := r
	updated.ApprovalCount = count
	updated.Approved = approved
	return updated
}
