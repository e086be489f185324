package router

import (
	"net/http"
	"os"

	"courseai/internal/api/v1/handler"
	"courseai/internal/config"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SetupHumaAPI creates a Huma API instance
func SetupHumaAPI(
	cfg *config.Config,
	authMiddleware func(http.Handler) http.Handler,
	logger zerolog.Logger,
) (*chi.Mux, huma.API) {
	chiRouter := chi.NewRouter()

	// Sessions are resolved for every route; handlers decide whether one is required.
	chiRouter.Use(authMiddleware)

	// Get version from environment or default to development
	version := os.Getenv("GIT_COMMIT_SHA")
	if version == "" {
		version = "development"
	}

	humaConfig := huma.DefaultConfig("CourseAI API v1", version)
	humaConfig.Info.Description = "Generate course outlines with an AI model and manage the saved courses"
	humaConfig.Servers = []*huma.Server{{URL: cfg.APIBaseURL}}
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}

	api := humachi.New(chiRouter, humaConfig)

	logger.Info().Str("version", version).Msg("Huma API initialized for /v1")
	return chiRouter, api
}

var bearerAuth = []map[string][]string{{"bearer": {}}}

// RegisterRoutes registers all Huma operations
func RegisterRoutes(
	api huma.API,
	userHandler *handler.UserHandler,
	courseHandler *handler.CourseHandler,
	generationHandler *handler.GenerationHandler,
	reviewHandler *handler.ReviewHandler,
	blogHandler *handler.BlogHandler,
	statsHandler *handler.StatsHandler,
	healthHandler *handler.HealthHandler,
	logger zerolog.Logger,
) {
	logger.Info().Msg("Registering routes")

	// ========== HEALTH ==========
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/healthz",
		Summary:     "Health check",
		Description: "Reports whether the API can reach its database",
		Tags:        []string{"health"},
	}, healthHandler.Health)

	// ========== AUTH OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/auth/register",
		Summary:       "Register",
		Description:   "Creates a student account and returns a session token",
		Tags:          []string{"auth"},
		DefaultStatus: http.StatusCreated,
	}, userHandler.Register)

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Log in",
		Description: "Exchanges email and password for a session token",
		Tags:        []string{"auth"},
	}, userHandler.Login)

	huma.Register(api, huma.Operation{
		OperationID:   "logout",
		Method:        http.MethodPost,
		Path:          "/auth/logout",
		Summary:       "Log out",
		Description:   "Revokes the session token used for this request",
		Tags:          []string{"auth"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusNoContent,
	}, userHandler.Logout)

	huma.Register(api, huma.Operation{
		OperationID: "adminLogin",
		Method:      http.MethodPost,
		Path:        "/admin/login",
		Summary:     "Admin log in",
		Description: "Verifies admin credentials or an identity provider token and returns an admin session",
		Tags:        []string{"admin"},
	}, userHandler.AdminLogin)

	// ========== USER OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/users/me",
		Summary:     "Get user profile",
		Description: "Retrieves the profile of the authenticated user",
		Tags:        []string{"users"},
		Security:    bearerAuth,
	}, userHandler.GetUser)

	huma.Register(api, huma.Operation{
		OperationID: "getUserCourses",
		Method:      http.MethodGet,
		Path:        "/users/me/courses",
		Summary:     "Get created courses",
		Description: "Lists the courses created by the authenticated user",
		Tags:        []string{"users"},
		Security:    bearerAuth,
	}, userHandler.GetUserCourses)

	huma.Register(api, huma.Operation{
		OperationID: "getEnrollments",
		Method:      http.MethodGet,
		Path:        "/users/me/enrollments",
		Summary:     "Get enrolled courses",
		Description: "Lists the courses the authenticated user is enrolled in",
		Tags:        []string{"users", "enrollments"},
		Security:    bearerAuth,
	}, userHandler.GetEnrollments)

	huma.Register(api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/admin/users",
		Summary:     "List users",
		Description: "Lists every user. Admin only.",
		Tags:        []string{"admin"},
		Security:    bearerAuth,
	}, userHandler.ListUsers)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteUser",
		Method:        http.MethodDelete,
		Path:          "/admin/users/{userId}",
		Summary:       "Delete a user",
		Description:   "Deletes a user with their courses, enrollments and reviews. Admin only.",
		Tags:          []string{"admin"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusNoContent,
	}, userHandler.DeleteUser)

	// ========== GENERATION OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID: "generateOutline",
		Method:      http.MethodPost,
		Path:        "/generations/outline",
		Summary:     "Generate a course outline",
		Description: "Asks the generation model for an outline and validates it. The outline is not saved.",
		Tags:        []string{"generations"},
		Security:    bearerAuth,
	}, generationHandler.GenerateOutline)

	huma.Register(api, huma.Operation{
		OperationID:   "createGenerationJob",
		Method:        http.MethodPost,
		Path:          "/generations",
		Summary:       "Queue an outline generation",
		Description:   "Queues an outline generation for the background worker and returns the job",
		Tags:          []string{"generations"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusAccepted,
	}, generationHandler.CreateGenerationJob)

	huma.Register(api, huma.Operation{
		OperationID: "getGenerationJob",
		Method:      http.MethodGet,
		Path:        "/generations/{jobId}",
		Summary:     "Get a generation job",
		Description: "Reports the state of a queued generation and its outline once finished",
		Tags:        []string{"generations"},
		Security:    bearerAuth,
	}, generationHandler.GetGenerationJob)

	// ========== COURSE OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID: "listCourses",
		Method:      http.MethodGet,
		Path:        "/courses",
		Summary:     "List courses",
		Description: "Lists all courses, newest first",
		Tags:        []string{"courses"},
	}, courseHandler.ListCourses)

	huma.Register(api, huma.Operation{
		OperationID:   "createCourse",
		Method:        http.MethodPost,
		Path:          "/courses",
		Summary:       "Save a course",
		Description:   "Validates an outline and saves it as a course owned by the authenticated user",
		Tags:          []string{"courses"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusCreated,
	}, courseHandler.CreateCourse)

	huma.Register(api, huma.Operation{
		OperationID: "getCourse",
		Method:      http.MethodGet,
		Path:        "/courses/{courseId}",
		Summary:     "Get a course",
		Description: "Retrieves a specific course by ID",
		Tags:        []string{"courses"},
	}, courseHandler.GetCourse)

	huma.Register(api, huma.Operation{
		OperationID: "updateCourse",
		Method:      http.MethodPatch,
		Path:        "/courses/{courseId}",
		Summary:     "Update a course",
		Description: "Updates the given fields of a course. Creator or admin only.",
		Tags:        []string{"courses"},
		Security:    bearerAuth,
	}, courseHandler.UpdateCourse)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteCourse",
		Method:        http.MethodDelete,
		Path:          "/courses/{courseId}",
		Summary:       "Delete a course",
		Description:   "Deletes a course with its enrollments and reviews. Creator or admin only.",
		Tags:          []string{"courses"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusNoContent,
	}, courseHandler.DeleteCourse)

	huma.Register(api, huma.Operation{
		OperationID: "generateModuleContent",
		Method:      http.MethodPost,
		Path:        "/courses/{courseId}/modules/{index}/content",
		Summary:     "Generate module content",
		Description: "Generates concepts, examples and exercises for one module. Creator or admin only.",
		Tags:        []string{"courses", "generations"},
		Security:    bearerAuth,
	}, courseHandler.GenerateModuleContent)

	// ========== ENROLLMENT OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID:   "enroll",
		Method:        http.MethodPost,
		Path:          "/courses/{courseId}/enroll",
		Summary:       "Enroll in a course",
		Description:   "Enrolls the authenticated user. Enrolling twice has no effect.",
		Tags:          []string{"enrollments"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusNoContent,
	}, userHandler.Enroll)

	huma.Register(api, huma.Operation{
		OperationID:   "unenroll",
		Method:        http.MethodDelete,
		Path:          "/courses/{courseId}/enroll",
		Summary:       "Leave a course",
		Description:   "Removes the authenticated user's enrollment",
		Tags:          []string{"enrollments"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusNoContent,
	}, userHandler.Unenroll)

	// ========== REVIEW OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID: "listReviews",
		Method:      http.MethodGet,
		Path:        "/courses/{courseId}/reviews",
		Summary:     "List reviews",
		Description: "Lists the reviews of a course",
		Tags:        []string{"reviews"},
	}, reviewHandler.ListReviews)

	huma.Register(api, huma.Operation{
		OperationID:   "createReview",
		Method:        http.MethodPost,
		Path:          "/courses/{courseId}/reviews",
		Summary:       "Review a course",
		Description:   "Adds a 1 to 5 rating and returns the course's new average rating",
		Tags:          []string{"reviews"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusCreated,
	}, reviewHandler.CreateReview)

	// ========== BLOG OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID: "listBlogs",
		Method:      http.MethodGet,
		Path:        "/blogs",
		Summary:     "List blog posts",
		Description: "Lists published posts, optionally filtered by category, tag or search text",
		Tags:        []string{"blogs"},
	}, blogHandler.ListBlogs)

	huma.Register(api, huma.Operation{
		OperationID: "listBlogCategories",
		Method:      http.MethodGet,
		Path:        "/blogs/categories",
		Summary:     "List blog categories",
		Description: "Lists the categories used by published posts",
		Tags:        []string{"blogs"},
	}, blogHandler.ListCategories)

	huma.Register(api, huma.Operation{
		OperationID: "listBlogTags",
		Method:      http.MethodGet,
		Path:        "/blogs/tags",
		Summary:     "List blog tags",
		Description: "Lists the tags used by published posts",
		Tags:        []string{"blogs"},
	}, blogHandler.ListTags)

	huma.Register(api, huma.Operation{
		OperationID: "getBlog",
		Method:      http.MethodGet,
		Path:        "/blogs/{slug}",
		Summary:     "Get a blog post",
		Description: "Retrieves a published post by slug. Admins can also read drafts.",
		Tags:        []string{"blogs"},
	}, blogHandler.GetBlog)

	huma.Register(api, huma.Operation{
		OperationID: "adminListBlogs",
		Method:      http.MethodGet,
		Path:        "/admin/blogs",
		Summary:     "List all blog posts",
		Description: "Lists drafts and published posts. Admin only.",
		Tags:        []string{"admin", "blogs"},
		Security:    bearerAuth,
	}, blogHandler.AdminListBlogs)

	huma.Register(api, huma.Operation{
		OperationID:   "createBlog",
		Method:        http.MethodPost,
		Path:          "/admin/blogs",
		Summary:       "Create a blog post",
		Description:   "Creates a draft, or a published post when publish is set. Admin only.",
		Tags:          []string{"admin", "blogs"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusCreated,
	}, blogHandler.CreateBlog)

	huma.Register(api, huma.Operation{
		OperationID: "updateBlog",
		Method:      http.MethodPatch,
		Path:        "/admin/blogs/{slug}",
		Summary:     "Update a blog post",
		Description: "Updates the given fields of a post. The slug does not change. Admin only.",
		Tags:        []string{"admin", "blogs"},
		Security:    bearerAuth,
	}, blogHandler.UpdateBlog)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteBlog",
		Method:        http.MethodDelete,
		Path:          "/admin/blogs/{slug}",
		Summary:       "Delete a blog post",
		Description:   "Deletes a post. Admin only.",
		Tags:          []string{"admin", "blogs"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusNoContent,
	}, blogHandler.DeleteBlog)

	huma.Register(api, huma.Operation{
		OperationID: "publishBlog",
		Method:      http.MethodPost,
		Path:        "/admin/blogs/{slug}/publish",
		Summary:     "Publish a blog post",
		Description: "Makes a post public and sets its publish time to now. Admin only.",
		Tags:        []string{"admin", "blogs"},
		Security:    bearerAuth,
	}, blogHandler.PublishBlog)

	huma.Register(api, huma.Operation{
		OperationID: "unpublishBlog",
		Method:      http.MethodPost,
		Path:        "/admin/blogs/{slug}/unpublish",
		Summary:     "Unpublish a blog post",
		Description: "Returns a post to draft. Admin only.",
		Tags:        []string{"admin", "blogs"},
		Security:    bearerAuth,
	}, blogHandler.UnpublishBlog)

	huma.Register(api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/admin/stats",
		Summary:     "Get site statistics",
		Description: "Reports the total number of users and active courses. Admin only.",
		Tags:        []string{"admin"},
		Security:    bearerAuth,
	}, statsHandler.GetStats)

	logger.Info().Msg("All operations registered successfully")
}
