package repository

import (
	"context"
	"errors"
	"fmt"

	"courseai/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseRepository defines the interface for interacting with course data
type CourseRepository interface {
	CreateCourse(ctx context.Context, c *model.Course) error
	// GetCourseByID retrieves a course by its ID, or nil if it does not exist
	GetCourseByID(ctx context.Context, courseID string) (*model.Course, error)
	ListCourses(ctx context.Context) ([]model.Course, error)
	GetCoursesByUserID(ctx context.Context, userID string) ([]model.Course, error)
	// UpdateCourse overwrites every mutable column. It reports false if the
	// course no longer exists.
	UpdateCourse(ctx context.Context, c *model.Course) (bool, error)
	// DeleteCourse reports false if there was nothing to delete.
	DeleteCourse(ctx context.Context, courseID string) (bool, error)
}

type courseRepo struct {
	pool *pgxpool.Pool
}

// NewCourseRepo creates a new CourseRepository
func NewCourseRepo(pool *pgxpool.Pool) CourseRepository {
	return &courseRepo{pool: pool}
}

const courseColumns = `id, created_by, title, description, duration, level, objectives, modules, rating, created_at, updated_at`

func scanCourse(row pgx.Row, c *model.Course) error {
	var level string
	if err := row.Scan(
		&c.ID,
		&c.CreatedBy,
		&c.Title,
		&c.Description,
		&c.Duration,
		&level,
		&c.Objectives,
		&c.Modules,
		&c.Rating,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return err
	}
	c.Level = model.Level(level)
	return nil
}

func (r *courseRepo) queryCourses(ctx context.Context, query string, args ...any) ([]model.Course, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := scanCourse(rows, &c); err != nil {
			return nil, fmt.Errorf("scanning course row: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating course rows: %w", err)
	}

	// If no courses found, return an empty slice, not nil
	if len(courses) == 0 {
		return []model.Course{}, nil
	}
	return courses, nil
}

// CreateCourse inserts a new course and fills in its generated id
func (r *courseRepo) CreateCourse(ctx context.Context, c *model.Course) error {
	query := `
		INSERT INTO courses (created_by, title, description, duration, level, objectives, modules, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8, $9)
		RETURNING id, rating
	`
	err := r.pool.QueryRow(ctx, query,
		c.CreatedBy, c.Title, c.Description, c.Duration, string(c.Level),
		c.Objectives, c.Modules, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID, &c.Rating)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return fmt.Errorf("creating course for owner %s: %w", c.CreatedBy, ErrMissingReference)
		}
		return fmt.Errorf("creating course: %w", err)
	}
	return nil
}

// GetCourseByID retrieves a course by its ID
func (r *courseRepo) GetCourseByID(ctx context.Context, courseID string) (*model.Course, error) {
	if !validID(courseID) {
		return nil, nil
	}
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	var c model.Course
	if err := scanCourse(r.pool.QueryRow(ctx, query, courseID), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting course by id %s: %w", courseID, err)
	}
	return &c, nil
}

func (r *courseRepo) ListCourses(ctx context.Context) ([]model.Course, error) {
	courses, err := r.queryCourses(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	return courses, nil
}

// GetCoursesByUserID retrieves all courses created by a given user ID
func (r *courseRepo) GetCoursesByUserID(ctx context.Context, userID string) ([]model.Course, error) {
	if !validID(userID) {
		return []model.Course{}, nil
	}
	query := `SELECT ` + courseColumns + ` FROM courses WHERE created_by = $1 ORDER BY updated_at DESC`
	courses, err := r.queryCourses(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying courses for user %s: %w", userID, err)
	}
	return courses, nil
}

func (r *courseRepo) UpdateCourse(ctx context.Context, c *model.Course) (bool, error) {
	if !validID(c.ID) {
		return false, nil
	}
	query := `
		UPDATE courses
		SET title = $1, description = $2, duration = $3, level = $4,
		    objectives = $5::jsonb, modules = $6::jsonb, updated_at = $7
		WHERE id = $8
		RETURNING ` + courseColumns
	row := r.pool.QueryRow(ctx, query,
		c.Title, c.Description, c.Duration, string(c.Level),
		c.Objectives, c.Modules, c.UpdatedAt, c.ID,
	)
	if err := scanCourse(row, c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("updating course %s: %w", c.ID, err)
	}
	return true, nil
}

// DeleteCourse deletes a course and cascades to enrollments and reviews via DB ON DELETE CASCADE
func (r *courseRepo) DeleteCourse(ctx context.Context, courseID string) (bool, error) {
	if !validID(courseID) {
		return false, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, courseID)
	if err != nil {
		return false, fmt.Errorf("deleting course %s: %w", courseID, err)
	}
	return tag.RowsAffected() > 0, nil
}
