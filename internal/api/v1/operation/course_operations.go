package operation

import "courseai/internal/api/v1/dto"

// Course CRUD Operations

type ListCoursesInput struct{}

type ListCoursesOutput struct {
	Body []dto.CourseResponseDTO `json:"body"`
}

type CreateCourseInput struct {
	Body dto.CourseOutlineDTO `json:"body"`
}

type CreateCourseOutput struct {
	Body dto.CourseResponseDTO `json:"body"`
}

type GetCourseInput struct {
	CourseID string `path:"courseId" doc:"Course ID"`
}

type GetCourseOutput struct {
	Body dto.CourseResponseDTO `json:"body"`
}

type UpdateCourseInput struct {
	CourseID string              `path:"courseId" doc:"Course ID"`
	Body     dto.CourseUpdateDTO `json:"body"`
}

type UpdateCourseOutput struct {
	Body dto.CourseResponseDTO `json:"body"`
}

type DeleteCourseInput struct {
	CourseID string `path:"courseId" doc:"Course ID"`
}

type DeleteCourseOutput struct {
	// 204 No Content
}

type GenerateModuleContentInput struct {
	CourseID string `path:"courseId" doc:"Course ID"`
	Index    int    `path:"index" minimum:"0" doc:"Zero-based module index"`
}

type GenerateModuleContentOutput struct {
	Body dto.CourseResponseDTO `json:"body"`
}

// Enrollment Operations

type EnrollInput struct {
	CourseID string `path:"courseId" doc:"Course ID"`
}

type EnrollOutput struct{}

type UnenrollInput struct {
	CourseID string `path:"courseId" doc:"Course ID"`
}

type UnenrollOutput struct{}

// Review Operations

type ListReviewsInput struct {
	CourseID string `path:"courseId" doc:"Course ID"`
}

type ListReviewsOutput struct {
	Body []dto.ReviewResponseDTO `json:"body"`
}

type CreateReviewInput struct {
	CourseID string              `path:"courseId" doc:"Course ID"`
	Body     dto.ReviewCreateDTO `json:"body"`
}

type CreateReviewOutput struct {
	Body dto.ReviewCreatedResponseDTO `json:"body"`
}
