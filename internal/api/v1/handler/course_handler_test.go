package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"courseai/internal/api/v1/dto"
	"courseai/internal/middleware"
	"courseai/internal/model"
	"courseai/internal/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCourseService struct {
	mu      sync.Mutex
	courses map[string]*model.Course
	nextID  int
}

func newStubCourseService() *stubCourseService {
	return &stubCourseService{courses: map[string]*model.Course{}}
}

func (s *stubCourseService) Create(_ context.Context, outline *model.CourseOutline, ownerID string) (*model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c := model.NewCourse(*outline, ownerID)
	c.ID = "course-" + strconv.Itoa(s.nextID)
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	s.courses[c.ID] = c
	return c, nil
}

func (s *stubCourseService) Get(_ context.Context, id string) (*model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[id]
	if !ok {
		return nil, &service.NotFoundError{Resource: "course", ID: id}
	}
	copied := *c
	return &copied, nil
}

func (s *stubCourseService) List(_ context.Context) ([]model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Course{}
	for _, c := range s.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubCourseService) ListByOwner(_ context.Context, ownerID string) ([]model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Course{}
	for _, c := range s.courses {
		if c.CreatedBy == ownerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *stubCourseService) Update(_ context.Context, id string, patch service.CoursePatch) (*model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[id]
	if !ok {
		return nil, &service.NotFoundError{Resource: "course", ID: id}
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	c.UpdatedAt = c.UpdatedAt.Add(time.Second)
	copied := *c
	return &copied, nil
}

func (s *stubCourseService) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[id]; !ok {
		return &service.NotFoundError{Resource: "course", ID: id}
	}
	delete(s.courses, id)
	return nil
}

type stubGenerationService struct {
	courses *stubCourseService
	outline *model.CourseOutline
	err     error
	calls   int
}

func (g *stubGenerationService) GenerateOutline(_ context.Context, topic string) (*model.CourseOutline, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.outline, nil
}

func (g *stubGenerationService) SaveCourse(ctx context.Context, outline *model.CourseOutline, ownerID string) (*model.Course, error) {
	return g.courses.Create(ctx, outline, ownerID)
}

func (g *stubGenerationService) GenerateModuleContent(ctx context.Context, courseID string, moduleIndex int) (*model.Course, error) {
	return nil, &service.TransportError{Provider: "stub", Err: errors.New("unavailable")}
}

func (g *stubGenerationService) NewWorkflow() *service.Workflow { return nil }

// withTestSession turns X-Test-User and X-Test-Role headers into a session,
// standing in for the bearer token middleware.
func withTestSession(ctx huma.Context, next func(huma.Context)) {
	if id := ctx.Header("X-Test-User"); id != "" {
		role := model.Role(ctx.Header("X-Test-Role"))
		if role == "" {
			role = model.RoleStudent
		}
		ctx = huma.WithValue(ctx, middleware.SessionContextKey, &model.Session{UserID: id, Role: role})
	}
	next(ctx)
}

func newTestAPI(t *testing.T, courses *stubCourseService, gen *stubGenerationService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	api.UseMiddleware(withTestSession)

	courseHandler := NewCourseHandler(courses, gen, zerolog.Nop())
	generationHandler := NewGenerationHandler(gen, nil, zerolog.Nop())

	huma.Register(api, huma.Operation{OperationID: "listCourses", Method: http.MethodGet, Path: "/courses"}, courseHandler.ListCourses)
	huma.Register(api, huma.Operation{OperationID: "createCourse", Method: http.MethodPost, Path: "/courses", DefaultStatus: http.StatusCreated}, courseHandler.CreateCourse)
	huma.Register(api, huma.Operation{OperationID: "getCourse", Method: http.MethodGet, Path: "/courses/{courseId}"}, courseHandler.GetCourse)
	huma.Register(api, huma.Operation{OperationID: "updateCourse", Method: http.MethodPatch, Path: "/courses/{courseId}"}, courseHandler.UpdateCourse)
	huma.Register(api, huma.Operation{OperationID: "deleteCourse", Method: http.MethodDelete, Path: "/courses/{courseId}", DefaultStatus: http.StatusNoContent}, courseHandler.DeleteCourse)
	huma.Register(api, huma.Operation{OperationID: "generateModuleContent", Method: http.MethodPost, Path: "/courses/{courseId}/modules/{index}/content"}, courseHandler.GenerateModuleContent)
	huma.Register(api, huma.Operation{OperationID: "generateOutline", Method: http.MethodPost, Path: "/generations/outline"}, generationHandler.GenerateOutline)
	return api
}

var outlineBody = map[string]any{
	"title":       "Introduction to Machine Learning Course",
	"description": "Core ideas of machine learning",
	"duration":    "6 weeks",
	"level":       "Intermediate",
	"objectives":  []string{"Train a model"},
	"modules": []map[string]any{
		{"title": "Foundations", "description": "Data and features"},
		{"title": "Supervised Learning", "description": "Regression"},
		{"title": "Unsupervised Learning", "description": "Clustering"},
	},
}

func createTestCourse(t *testing.T, api humatest.TestAPI, owner string) dto.CourseResponseDTO {
	t.Helper()
	resp := api.Post("/courses", "X-Test-User: "+owner, outlineBody)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var course dto.CourseResponseDTO
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &course))
	return course
}

func TestCreateCourseRequiresSession(t *testing.T) {
	courses := newStubCourseService()
	api := newTestAPI(t, courses, &stubGenerationService{courses: courses})

	resp := api.Post("/courses", outlineBody)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Empty(t, courses.courses)
}

func TestCreateAndListCourses(t *testing.T) {
	courses := newStubCourseService()
	api := newTestAPI(t, courses, &stubGenerationService{courses: courses})

	created := createTestCourse(t, api, "alice")
	assert.Equal(t, "alice", created.CreatedBy)
	assert.Equal(t, "Intermediate", created.Level)
	assert.Len(t, created.Modules, 3)

	resp := api.Get("/courses")
	require.Equal(t, http.StatusOK, resp.Code)
	var list []dto.CourseResponseDTO
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.CourseID, list[0].CourseID)
}

func TestCreateCourseRejectsIncompleteOutline(t *testing.T) {
	courses := newStubCourseService()
	api := newTestAPI(t, courses, &stubGenerationService{courses: courses})

	resp := api.Post("/courses", "X-Test-User: alice", map[string]any{
		"title":       "No modules",
		"description": "Missing the modules list",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Empty(t, courses.courses)
}

func TestUpdateCourseAuthorization(t *testing.T) {
	courses := newStubCourseService()
	api := newTestAPI(t, courses, &stubGenerationService{courses: courses})
	created := createTestCourse(t, api, "alice")
	path := "/courses/" + created.CourseID

	resp := api.Patch(path, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code, "anonymous")
	resp = api.Patch(path, "X-Test-User: bob", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusForbidden, resp.Code, "other user")

	resp = api.Patch(path, "X-Test-User: alice", map[string]any{"title": "Renamed"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var updated dto.CourseResponseDTO
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, created.Description, updated.Description)

	resp = api.Patch(path, "X-Test-User: root", "X-Test-Role: admin", map[string]any{"title": "By admin"})
	assert.Equal(t, http.StatusOK, resp.Code, "admin")
}

func TestDeleteCourse(t *testing.T) {
	courses := newStubCourseService()
	api := newTestAPI(t, courses, &stubGenerationService{courses: courses})
	created := createTestCourse(t, api, "alice")

	assert.Equal(t, http.StatusForbidden, api.Delete("/courses/"+created.CourseID, "X-Test-User: bob").Code)
	assert.Equal(t, http.StatusNoContent, api.Delete("/courses/"+created.CourseID, "X-Test-User: alice").Code)
	assert.Equal(t, http.StatusNotFound, api.Get("/courses/"+created.CourseID).Code)
	assert.Equal(t, http.StatusNotFound, api.Delete("/courses/missing", "X-Test-User: alice").Code)
}

func TestGenerateModuleContentProviderFailure(t *testing.T) {
	courses := newStubCourseService()
	api := newTestAPI(t, courses, &stubGenerationService{courses: courses})
	created := createTestCourse(t, api, "alice")

	resp := api.Post("/courses/"+created.CourseID+"/modules/0/content", "X-Test-User: alice")
	assert.Equal(t, http.StatusBadGateway, resp.Code)

	resp = api.Post("/courses/"+created.CourseID+"/modules/0/content", "X-Test-User: bob")
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestGenerateOutlineStatusMapping(t *testing.T) {
	outline := &model.CourseOutline{
		Title:       "Go",
		Description: "Learn Go",
		Modules:     []model.Module{{Title: "Basics"}},
	}
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"empty topic", service.ErrEmptyTopic, http.StatusUnprocessableEntity},
		{"parse", &service.ParseError{Err: errors.New("invalid character")}, http.StatusUnprocessableEntity},
		{"validation", &service.ValidationError{Field: "modules"}, http.StatusUnprocessableEntity},
		{"transport", &service.TransportError{Provider: "gemini", Err: errors.New("timeout")}, http.StatusBadGateway},
		{"busy", service.ErrWorkflowBusy, http.StatusConflict},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courses := newStubCourseService()
			gen := &stubGenerationService{courses: courses, outline: outline, err: tt.err}
			api := newTestAPI(t, courses, gen)

			resp := api.Post("/generations/outline", "X-Test-User: alice", map[string]any{"topic": "Go"})
			assert.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			assert.Empty(t, courses.courses, "generating must not save a course")
		})
	}
}

func TestGenerateOutlineRequiresSession(t *testing.T) {
	courses := newStubCourseService()
	gen := &stubGenerationService{courses: courses}
	api := newTestAPI(t, courses, gen)

	resp := api.Post("/generations/outline", map[string]any{"topic": "Go"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Zero(t, gen.calls)
}
