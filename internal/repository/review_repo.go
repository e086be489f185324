package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courseai/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseRating is a course's rating after a review, with the updated_at the
// change was stored under.
type CourseRating struct {
	Rating    float64
	UpdatedAt time.Time
}

type ReviewRepository interface {
	// AddReview stores the review and recomputes the course rating from all
	// of its reviews, refreshing the course's updated_at.
	AddReview(ctx context.Context, rv *model.Review) (*CourseRating, error)
	GetReviewsByCourseID(ctx context.Context, courseID string) ([]model.Review, error)
}

type reviewRepo struct {
	pool *pgxpool.Pool
}

func NewReviewRepo(pool *pgxpool.Pool) ReviewRepository {
	return &reviewRepo{pool: pool}
}

func (r *reviewRepo) AddReview(ctx context.Context, rv *model.Review) (result *CourseRating, err error) {
	if !validID(rv.CourseID) {
		return nil, fmt.Errorf("adding review to course %s: %w", rv.CourseID, ErrMissingReference)
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning review transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Concurrent reviews of one course queue here, so each average below
	// sees every review committed before it.
	var locked int
	lock := `SELECT 1 FROM courses WHERE id = $1 FOR UPDATE`
	if err = tx.QueryRow(ctx, lock, rv.CourseID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("adding review to course %s: %w", rv.CourseID, ErrMissingReference)
		}
		return nil, fmt.Errorf("locking course %s: %w", rv.CourseID, err)
	}

	insert := `INSERT INTO reviews (course_id, user_id, rating, comment)
               VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	if err = tx.QueryRow(ctx, insert, rv.CourseID, rv.UserID, rv.Rating, rv.Comment).
		Scan(&rv.ReviewID, &rv.CreatedAt); err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return nil, fmt.Errorf("adding review to course %s: %w", rv.CourseID, ErrMissingReference)
		}
		return nil, fmt.Errorf("adding review to course %s: %w", rv.CourseID, err)
	}

	recompute := `UPDATE courses
                  SET rating = (SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE course_id = $1),
                      updated_at = GREATEST(NOW(), updated_at + INTERVAL '1 microsecond')
                  WHERE id = $1 RETURNING rating, updated_at`
	var updated CourseRating
	if err = tx.QueryRow(ctx, recompute, rv.CourseID).Scan(&updated.Rating, &updated.UpdatedAt); err != nil {
		return nil, fmt.Errorf("recomputing rating for course %s: %w", rv.CourseID, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing review for course %s: %w", rv.CourseID, err)
	}
	return &updated, nil
}

func (r *reviewRepo) GetReviewsByCourseID(ctx context.Context, courseID string) ([]model.Review, error) {
	if !validID(courseID) {
		return []model.Review{}, nil
	}
	query := `SELECT id, course_id, user_id, rating, comment, created_at
              FROM reviews WHERE course_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("querying reviews for course %s: %w", courseID, err)
	}
	reviews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Review, error) {
		var rv model.Review
		err := row.Scan(&rv.ReviewID, &rv.CourseID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
		return rv, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning reviews for course %s: %w", courseID, err)
	}
	if reviews == nil {
		return []model.Review{}, nil
	}
	return reviews, nil
}
