package handler

import (
	"context"

	"courseai/internal/api/v1/operation"
	"courseai/internal/model"
	"courseai/internal/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
)

// CourseHandler implements Huma-based course operations
type CourseHandler struct {
	courseService     service.CourseService
	generationService service.GenerationService
	logger            zerolog.Logger
}

func NewCourseHandler(courseService service.CourseService, generationService service.GenerationService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courseService:     courseService,
		generationService: generationService,
		logger:            logger,
	}
}

// ListCourses returns every course, newest first
func (h *CourseHandler) ListCourses(ctx context.Context, input *operation.ListCoursesInput) (*operation.ListCoursesOutput, error) {
	courses, err := h.courseService.List(ctx)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to list courses")
	}
	return &operation.ListCoursesOutput{Body: toCourseDTOs(courses)}, nil
}

// CreateCourse saves an outline as a course owned by the caller
func (h *CourseHandler) CreateCourse(ctx context.Context, input *operation.CreateCourseInput) (*operation.CreateCourseOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}

	course, err := h.generationService.SaveCourse(ctx, fromOutlineDTO(input.Body), sess.UserID)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to create course")
	}
	return &operation.CreateCourseOutput{Body: toCourseDTO(course)}, nil
}

func (h *CourseHandler) GetCourse(ctx context.Context, input *operation.GetCourseInput) (*operation.GetCourseOutput, error) {
	course, err := h.courseService.Get(ctx, input.CourseID)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to retrieve course")
	}
	return &operation.GetCourseOutput{Body: toCourseDTO(course)}, nil
}

// authorizeCourse loads the course and checks the caller may modify it.
func (h *CourseHandler) authorizeCourse(ctx context.Context, courseID string) (*model.Course, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	course, err := h.courseService.Get(ctx, courseID)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to retrieve course")
	}
	if !canModifyCourse(sess, course) {
		h.logger.Warn().Str("course_id", courseID).Str("user_id", sess.UserID).Msg("Course modification denied")
		return nil, huma.Error403Forbidden("Only the course creator or an admin can modify this course")
	}
	return course, nil
}

func (h *CourseHandler) UpdateCourse(ctx context.Context, input *operation.UpdateCourseInput) (*operation.UpdateCourseOutput, error) {
	if _, err := h.authorizeCourse(ctx, input.CourseID); err != nil {
		return nil, err
	}

	body := input.Body
	patch := service.CoursePatch{
		Title:       body.Title,
		Description: body.Description,
		Duration:    body.Duration,
		Objectives:  body.Objectives,
	}
	if body.Level != nil {
		level := model.Level(*body.Level)
		patch.Level = &level
	}
	if body.Modules != nil {
		modules := fromModuleDTOs(*body.Modules)
		patch.Modules = &modules
	}

	updated, err := h.courseService.Update(ctx, input.CourseID, patch)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to update course")
	}
	return &operation.UpdateCourseOutput{Body: toCourseDTO(updated)}, nil
}

// DeleteCourse removes a course together with its enrollments and reviews
func (h *CourseHandler) DeleteCourse(ctx context.Context, input *operation.DeleteCourseInput) (*operation.DeleteCourseOutput, error) {
	if _, err := h.authorizeCourse(ctx, input.CourseID); err != nil {
		return nil, err
	}
	if err := h.courseService.Delete(ctx, input.CourseID); err != nil {
		return nil, toHumaError(err, h.logger, "Failed to delete course")
	}
	return &operation.DeleteCourseOutput{}, nil
}

// GenerateModuleContent fills in the detailed material of one module
func (h *CourseHandler) GenerateModuleContent(ctx context.Context, input *operation.GenerateModuleContentInput) (*operation.GenerateModuleContentOutput, error) {
	if _, err := h.authorizeCourse(ctx, input.CourseID); err != nil {
		return nil, err
	}
	course, err := h.generationService.GenerateModuleContent(ctx, input.CourseID, input.Index)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to generate module content")
	}
	return &operation.GenerateModuleContentOutput{Body: toCourseDTO(course)}, nil
}
