package operation

import "courseai/internal/api/v1/dto"

// Auth Operations

type RegisterInput struct {
	Body dto.RegisterRequestDTO `json:"body"`
}

type RegisterOutput struct {
	Body dto.SessionResponseDTO `json:"body"`
}

type LoginInput struct {
	Body dto.LoginRequestDTO `json:"body"`
}

type LoginOutput struct {
	Body dto.SessionResponseDTO `json:"body"`
}

type LogoutInput struct {
	// No input needed - the session comes from auth context
}

type LogoutOutput struct{}

type AdminLoginInput struct {
	Body dto.AdminLoginRequestDTO `json:"body"`
}

type AdminLoginOutput struct {
	Body dto.SessionResponseDTO `json:"body"`
}

// User Operations

type GetUserInput struct {
	// No input needed - user ID comes from auth context
}

type GetUserOutput struct {
	Body dto.UserResponseDTO `json:"body"`
}

type GetUserCoursesInput struct{}

type GetUserCoursesOutput struct {
	Body []dto.CourseResponseDTO `json:"body"`
}

type GetEnrollmentsInput struct{}

type GetEnrollmentsOutput struct {
	Body []dto.CourseResponseDTO `json:"body"`
}

// Admin Operations

type ListUsersInput struct{}

type ListUsersOutput struct {
	Body []dto.UserResponseDTO `json:"body"`
}

type DeleteUserInput struct {
	UserID string `path:"userId" doc:"User ID"`
}

type DeleteUserOutput struct{}

// Health

type HealthInput struct{}

type HealthOutput struct {
	Body struct {
		Status string `json:"status" example:"ok"`
	} `json:"body"`
}
