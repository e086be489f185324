package handler

import (
	"context"

	"courseai/internal/api/v1/dto"
	"courseai/internal/api/v1/operation"
	"courseai/internal/service"

	"github.com/rs/zerolog"
)

type ReviewHandler struct {
	reviewService service.ReviewService
	logger        zerolog.Logger
}

func NewReviewHandler(reviewService service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, logger: logger}
}

func (h *ReviewHandler) ListReviews(ctx context.Context, input *operation.ListReviewsInput) (*operation.ListReviewsOutput, error) {
	reviews, err := h.reviewService.ListReviews(ctx, input.CourseID)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to list reviews")
	}
	out := make([]dto.ReviewResponseDTO, 0, len(reviews))
	for i := range reviews {
		out = append(out, toReviewDTO(&reviews[i]))
	}
	return &operation.ListReviewsOutput{Body: out}, nil
}

// CreateReview records a rating and returns the course's recomputed average
func (h *ReviewHandler) CreateReview(ctx context.Context, input *operation.CreateReviewInput) (*operation.CreateReviewOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	review, average, err := h.reviewService.AddReview(ctx, input.CourseID, sess.UserID, input.Body.Rating, input.Body.Comment)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to add review")
	}
	return &operation.CreateReviewOutput{
		Body: dto.ReviewCreatedResponseDTO{
			Review:       toReviewDTO(review),
			CourseRating: average,
		},
	}, nil
}
