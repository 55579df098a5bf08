package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/foodcircle/foodcircle-backend/pkg/db/models"
)

// SubmitReviewInput carries a review submission for a completed claim.
type SubmitReviewInput struct {
	ClaimID uuid.UUID `json:"claim_id"`
	Rating  int       `json:"rating"`
	Comment *string   `json:"comment,omitempty"`
}

// ReviewDTO is the transport shape for a review.
type ReviewDTO struct {
	ID         uuid.UUID `json:"id"`
	ClaimID    uuid.UUID `json:"claim_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	RevieweeID uuid.UUID `json:"reviewee_id"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RatingDTO summarizes a user's received reviews.
type RatingDTO struct {
	UserID  uuid.UUID `json:"user_id"`
	Average float64   `json:"average"`
	Count   int64     `json:"count"`
}

// ListParams configures cursor pagination for review queries.
type ListParams struct {
	Limit  int
	Cursor string
}

// ListResult wraps a page of reviews and the cursor for the next page.
type ListResult struct {
	Items  []ReviewDTO `json:"items"`
	Cursor string      `json:"cursor"`
}

func fromModel(review models.Review) ReviewDTO {
	return ReviewDTO{
		ID:         review.ID,
		ClaimID:    review.ClaimID,
		ReviewerID: review.ReviewerID,
		RevieweeID: review.RevieweeID,
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
	}
}
