package handler

import (
	"context"

	"courseai/internal/api/v1/dto"
	"courseai/internal/api/v1/operation"
	"courseai/internal/model"
	"courseai/internal/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
)

// UserHandler implements Huma-based auth, profile and enrollment operations
type UserHandler struct {
	userService    service.UserService
	sessionService service.SessionService
	courseService  service.CourseService
	logger         zerolog.Logger
}

func NewUserHandler(userService service.UserService, sessionService service.SessionService, courseService service.CourseService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService:    userService,
		sessionService: sessionService,
		courseService:  courseService,
		logger:         logger,
	}
}

func (h *UserHandler) issueSession(user *model.User) (dto.SessionResponseDTO, error) {
	token, sess, err := h.sessionService.Issue(user)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", user.UserID).Msg("Failed to issue session")
		return dto.SessionResponseDTO{}, huma.Error500InternalServerError("Failed to issue session")
	}
	return dto.SessionResponseDTO{
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
		User:      toUserDTO(user),
	}, nil
}

// Register creates a student account and signs it in
func (h *UserHandler) Register(ctx context.Context, input *operation.RegisterInput) (*operation.RegisterOutput, error) {
	user, err := h.userService.Register(ctx, input.Body.Name, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to register user")
	}
	body, err := h.issueSession(user)
	if err != nil {
		return nil, err
	}
	return &operation.RegisterOutput{Body: body}, nil
}

func (h *UserHandler) Login(ctx context.Context, input *operation.LoginInput) (*operation.LoginOutput, error) {
	user, err := h.userService.Authenticate(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to log in")
	}
	body, err := h.issueSession(user)
	if err != nil {
		return nil, err
	}
	return &operation.LoginOutput{Body: body}, nil
}

// Logout revokes the token the request was made with
func (h *UserHandler) Logout(ctx context.Context, input *operation.LogoutInput) (*operation.LogoutOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.sessionService.Revoke(ctx, sess); err != nil {
		h.logger.Error().Err(err).Str("user_id", sess.UserID).Msg("Failed to revoke session")
		return nil, huma.Error503ServiceUnavailable("Failed to revoke session")
	}
	return &operation.LogoutOutput{}, nil
}

// AdminLogin verifies admin credentials and returns an admin session
func (h *UserHandler) AdminLogin(ctx context.Context, input *operation.AdminLoginInput) (*operation.AdminLoginOutput, error) {
	user, err := h.userService.AuthenticateAdmin(ctx, service.AdminCredentials{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		IDToken:  input.Body.IDToken,
	})
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to log in admin")
	}
	body, err := h.issueSession(user)
	if err != nil {
		return nil, err
	}
	return &operation.AdminLoginOutput{Body: body}, nil
}

// GetUser retrieves the authenticated user's profile
func (h *UserHandler) GetUser(ctx context.Context, input *operation.GetUserInput) (*operation.GetUserOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	user, err := h.userService.Get(ctx, sess.UserID)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to get user")
	}
	return &operation.GetUserOutput{Body: toUserDTO(user)}, nil
}

// GetUserCourses lists the courses the authenticated user created
func (h *UserHandler) GetUserCourses(ctx context.Context, input *operation.GetUserCoursesInput) (*operation.GetUserCoursesOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := h.courseService.ListByOwner(ctx, sess.UserID)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to retrieve user courses")
	}
	return &operation.GetUserCoursesOutput{Body: toCourseDTOs(courses)}, nil
}

func (h *UserHandler) GetEnrollments(ctx context.Context, input *operation.GetEnrollmentsInput) (*operation.GetEnrollmentsOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := h.userService.GetEnrolledCourses(ctx, sess.UserID)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to retrieve enrollments")
	}
	return &operation.GetEnrollmentsOutput{Body: toCourseDTOs(courses)}, nil
}

func (h *UserHandler) Enroll(ctx context.Context, input *operation.EnrollInput) (*operation.EnrollOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.userService.Enroll(ctx, sess.UserID, input.CourseID); err != nil {
		return nil, toHumaError(err, h.logger, "Failed to enroll")
	}
	return &operation.EnrollOutput{}, nil
}

func (h *UserHandler) Unenroll(ctx context.Context, input *operation.UnenrollInput) (*operation.UnenrollOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.userService.Unenroll(ctx, sess.UserID, input.CourseID); err != nil {
		return nil, toHumaError(err, h.logger, "Failed to unenroll")
	}
	return &operation.UnenrollOutput{}, nil
}

// ListUsers is admin only
func (h *UserHandler) ListUsers(ctx context.Context, input *operation.ListUsersInput) (*operation.ListUsersOutput, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	users, err := h.userService.List(ctx)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to list users")
	}
	out := make([]dto.UserResponseDTO, 0, len(users))
	for i := range users {
		out = append(out, toUserDTO(&users[i]))
	}
	return &operation.ListUsersOutput{Body: out}, nil
}

// DeleteUser removes a user and everything they own. Admin only.
func (h *UserHandler) DeleteUser(ctx context.Context, input *operation.DeleteUserInput) (*operation.DeleteUserOutput, error) {
	sess, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if input.UserID == sess.UserID {
		return nil, huma.Error409Conflict("Admins cannot delete their own account")
	}
	if err := h.userService.Delete(ctx, input.UserID); err != nil {
		return nil, toHumaError(err, h.logger, "Failed to delete user")
	}
	h.logger.Info().Str("user_id", input.UserID).Str("admin_id", sess.UserID).Msg("User deleted by admin")
	return &operation.DeleteUserOutput{}, nil
}
