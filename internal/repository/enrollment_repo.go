package repository

import (
	"context"
	"fmt"

	"courseai/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EnrollmentRepository interface {
	// Enroll is idempotent. It returns ErrMissingReference if either side is gone.
	Enroll(ctx context.Context, userID, courseID string) error
	Unenroll(ctx context.Context, userID, courseID string) (bool, error)
	GetEnrolledCourses(ctx context.Context, userID string) ([]model.Course, error)
}

type enrollmentRepo struct {
	pool *pgxpool.Pool
}

func NewEnrollmentRepo(pool *pgxpool.Pool) EnrollmentRepository {
	return &enrollmentRepo{pool: pool}
}

func (r *enrollmentRepo) Enroll(ctx context.Context, userID, courseID string) error {
	if !validID(userID) || !validID(courseID) {
		return fmt.Errorf("enrolling user %s in course %s: %w", userID, courseID, ErrMissingReference)
	}
	query := `INSERT INTO enrollments (user_id, course_id) VALUES ($1, $2)
              ON CONFLICT (user_id, course_id) DO NOTHING`
	if _, err := r.pool.Exec(ctx, query, userID, courseID); err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return fmt.Errorf("enrolling user %s in course %s: %w", userID, courseID, ErrMissingReference)
		}
		return fmt.Errorf("enrolling user %s in course %s: %w", userID, courseID, err)
	}
	return nil
}

func (r *enrollmentRepo) Unenroll(ctx context.Context, userID, courseID string) (bool, error) {
	if !validID(userID) || !validID(courseID) {
		return false, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM enrollments WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		return false, fmt.Errorf("unenrolling user %s from course %s: %w", userID, courseID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *enrollmentRepo) GetEnrolledCourses(ctx context.Context, userID string) ([]model.Course, error) {
	if !validID(userID) {
		return []model.Course{}, nil
	}
	query := `
		SELECT c.id, c.created_by, c.title, c.description, c.duration, c.level,
		       c.objectives, c.modules, c.rating, c.created_at, c.updated_at
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = $1
		ORDER BY e.enrolled_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying enrollments for user %s: %w", userID, err)
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		var c model.Course
		if err := scanCourse(rows, &c); err != nil {
			return nil, fmt.Errorf("scanning enrolled course row: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating enrolled course rows: %w", err)
	}
	return courses, nil
}
