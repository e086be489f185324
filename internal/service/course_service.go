package service

import (
	"context"
	"time"

	"courseai/internal/model"
	"courseai/internal/pubsub"
	"courseai/internal/repository"

	"github.com/rs/zerolog"
)

// CoursePatch holds the fields of an update. Nil fields are left unchanged.
type CoursePatch struct {
	Title       *string
	Description *string
	Duration    *string
	Level       *model.Level
	Objectives  *[]string
	Modules     *[]model.Module
}

// CourseService defines course-related operations
type CourseService interface {
	// Create stores a new course owned by ownerID. An outline missing its
	// title, description or modules is rejected with a *ValidationError.
	Create(ctx context.Context, outline *model.CourseOutline, ownerID string) (*model.Course, error)
	Get(ctx context.Context, courseID string) (*model.Course, error)
	List(ctx context.Context) ([]model.Course, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Course, error)
	// Update merges patch into the stored course and refreshes updated_at.
	// A patch that would blank a required field is rejected and nothing is stored.
	Update(ctx context.Context, courseID string, patch CoursePatch) (*model.Course, error)
	// Delete removes the course unconditionally
	Delete(ctx context.Context, courseID string) error
}

// courseService is the implementation of CourseService
type courseService struct {
	repo         repository.CourseRepository
	outlines     *OutlineParser
	events       courseEventEmitter
	now          func() time.Time
	courseLogger zerolog.Logger
}

// NewCourseService creates a new CourseService. Course events go to topic on publisher.
func NewCourseService(repo repository.CourseRepository, publisher pubsub.Publisher, topic string, logger zerolog.Logger) CourseService {
	courseLogger := logger.With().Str("service", "CourseService").Logger()
	return &courseService{
		repo:         repo,
		outlines:     NewOutlineParser(),
		events:       courseEventEmitter{publisher: publisher, topic: topic, logger: courseLogger},
		now:          time.Now,
		courseLogger: courseLogger,
	}
}

// timestamp returns the current time at the precision the store keeps.
func (s *courseService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *courseService) Create(ctx context.Context, outline *model.CourseOutline, ownerID string) (*model.Course, error) {
	if outline == nil {
		return nil, &ValidationError{Field: "outline"}
	}
	if ownerID == "" {
		return nil, &ValidationError{Field: "owner_id"}
	}
	if err := s.outlines.ValidateOutline(outline); err != nil {
		return nil, err
	}

	course := model.NewCourse(*outline, ownerID)
	now := s.timestamp()
	course.CreatedAt = now
	course.UpdatedAt = now

	if err := s.repo.CreateCourse(ctx, course); err != nil {
		s.courseLogger.Error().Err(err).Str("owner_id", ownerID).Msg("Failed to create course")
		return nil, &StoreError{Op: "create course", Err: err}
	}
	s.courseLogger.Info().Str("course_id", course.ID).Str("owner_id", ownerID).Msg("Course created")
	s.events.emit(ctx, CourseCreatedEvent, course, now)
	return course, nil
}

// Get retrieves a course by its ID
func (s *courseService) Get(ctx context.Context, courseID string) (*model.Course, error) {
	course, err := s.repo.GetCourseByID(ctx, courseID)
	if err != nil {
		s.courseLogger.Error().Err(err).Str("course_id", courseID).Msg("Failed to get course by ID")
		return nil, &StoreError{Op: "get course", Err: err}
	}
	if course == nil {
		return nil, &NotFoundError{Resource: "course", ID: courseID}
	}
	return course, nil
}

func (s *courseService) List(ctx context.Context) ([]model.Course, error) {
	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		s.courseLogger.Error().Err(err).Msg("Failed to list courses")
		return nil, &StoreError{Op: "list courses", Err: err}
	}
	return courses, nil
}

func (s *courseService) ListByOwner(ctx context.Context, ownerID string) ([]model.Course, error) {
	courses, err := s.repo.GetCoursesByUserID(ctx, ownerID)
	if err != nil {
		s.courseLogger.Error().Err(err).Str("owner_id", ownerID).Msg("Failed to list courses by owner")
		return nil, &StoreError{Op: "list courses by owner", Err: err}
	}
	return courses, nil
}

func (s *courseService) Update(ctx context.Context, courseID string, patch CoursePatch) (*model.Course, error) {
	course, err := s.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	applyPatch(course, patch)
	merged := course.Outline()
	if err := s.outlines.ValidateOutline(&merged); err != nil {
		return nil, err
	}
	// updated_at only moves forward, even if the clock did not.
	now := s.timestamp()
	if !now.After(course.UpdatedAt) {
		now = course.UpdatedAt.Add(time.Microsecond)
	}
	course.UpdatedAt = now

	found, err := s.repo.UpdateCourse(ctx, course)
	if err != nil {
		s.courseLogger.Error().Err(err).Str("course_id", courseID).Msg("Failed to update course")
		return nil, &StoreError{Op: "update course", Err: err}
	}
	if !found {
		return nil, &NotFoundError{Resource: "course", ID: courseID}
	}
	s.events.emit(ctx, CourseUpdatedEvent, course, now)
	return course, nil
}

func applyPatch(c *model.Course, p CoursePatch) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Duration != nil {
		c.Duration = *p.Duration
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
	if p.Objectives != nil {
		c.Objectives = model.StringList(*p.Objectives)
	}
	if p.Modules != nil {
		c.Modules = model.ModuleList(*p.Modules)
	}
}

// Delete removes a course. Enrollments and reviews go with it.
func (s *courseService) Delete(ctx context.Context, courseID string) error {
	course, err := s.Get(ctx, courseID)
	if err != nil {
		return err
	}
	deleted, err := s.repo.DeleteCourse(ctx, courseID)
	if err != nil {
		s.courseLogger.Error().Err(err).Str("course_id", courseID).Msg("Failed to delete course record")
		return &StoreError{Op: "delete course", Err: err}
	}
	if !deleted {
		return &NotFoundError{Resource: "course", ID: courseID}
	}
	s.courseLogger.Info().Str("course_id", courseID).Msg("Course deleted")
	s.events.emit(ctx, CourseDeletedEvent, course, s.timestamp())
	return nil
}
