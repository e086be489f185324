package service

import (
	"context"
	"errors"
	"strings"

	"courseai/internal/model"
	"courseai/internal/pubsub"
	"courseai/internal/repository"

	"github.com/rs/zerolog"
)

type ReviewService interface {
	// AddReview stores a 1 to 5 rating and returns it with the course's
	// new average, recomputed from all of its reviews. The course counts as
	// updated and a course.updated event follows.
	AddReview(ctx context.Context, courseID, userID string, rating int, comment string) (*model.Review, float64, error)
	ListReviews(ctx context.Context, courseID string) ([]model.Review, error)
}

type reviewService struct {
	repo    repository.ReviewRepository
	courses CourseService
	events  courseEventEmitter
	logger  zerolog.Logger
}

// NewReviewService creates a ReviewService. Rating changes are published to
// topic as course.updated events.
func NewReviewService(repo repository.ReviewRepository, courses CourseService, publisher pubsub.Publisher, topic string, logger zerolog.Logger) ReviewService {
	reviewLogger := logger.With().Str("service", "ReviewService").Logger()
	return &reviewService{
		repo:    repo,
		courses: courses,
		events:  courseEventEmitter{publisher: publisher, topic: topic, logger: reviewLogger},
		logger:  reviewLogger,
	}
}

func (s *reviewService) AddReview(ctx context.Context, courseID, userID string, rating int, comment string) (*model.Review, float64, error) {
	if rating < 1 || rating > 5 {
		return nil, 0, &ValidationError{Field: "rating"}
	}
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, 0, err
	}

	review := &model.Review{
		CourseID: courseID,
		UserID:   userID,
		Rating:   rating,
		Comment:  strings.TrimSpace(comment),
	}
	updated, err := s.repo.AddReview(ctx, review)
	if err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return nil, 0, &NotFoundError{Resource: "course", ID: courseID}
		}
		s.logger.Error().Err(err).Str("course_id", courseID).Msg("Failed to add review")
		return nil, 0, &StoreError{Op: "add review", Err: err}
	}
	course.Rating = updated.Rating
	course.UpdatedAt = updated.UpdatedAt
	s.events.emit(ctx, CourseUpdatedEvent, course, updated.UpdatedAt)
	return review, updated.Rating, nil
}

func (s *reviewService) ListReviews(ctx context.Context, courseID string) ([]model.Review, error) {
	if _, err := s.courses.Get(ctx, courseID); err != nil {
		return nil, err
	}
	reviews, err := s.repo.GetReviewsByCourseID(ctx, courseID)
	if err != nil {
		return nil, &StoreError{Op: "list reviews", Err: err}
	}
	return reviews, nil
}
