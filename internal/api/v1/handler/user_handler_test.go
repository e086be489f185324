package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"courseai/internal/api/v1/dto"
	"courseai/internal/model"
	"courseai/internal/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserService struct {
	users   map[string]*model.User
	deleted []string
}

func newStubUserService() *stubUserService {
	return &stubUserService{users: map[string]*model.User{}}
}

func (s *stubUserService) Register(_ context.Context, name, email, password string) (*model.User, error) {
	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			return nil, service.ErrEmailAlreadyRegistered
		}
	}
	u := &model.User{UserID: "user-" + name, Name: name, Email: email, Role: model.RoleStudent, PasswordHash: "hash:" + password}
	s.users[u.UserID] = u
	return u, nil
}

func (s *stubUserService) Authenticate(_ context.Context, email, password string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == strings.ToLower(email) && u.PasswordHash == "hash:"+password {
			return u, nil
		}
	}
	return nil, service.ErrInvalidCredentials
}

func (s *stubUserService) AuthenticateAdmin(_ context.Context, creds service.AdminCredentials) (*model.User, error) {
	if creds.Email != "admin@example.com" || creds.Password != "admin-password" {
		return nil, service.ErrInvalidCredentials
	}
	u := &model.User{UserID: "admin-1", Name: "Admin", Email: creds.Email, Role: model.RoleAdmin}
	s.users[u.UserID] = u
	return u, nil
}

func (s *stubUserService) Get(_ context.Context, id string) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, &service.NotFoundError{Resource: "user", ID: id}
	}
	return u, nil
}

func (s *stubUserService) List(_ context.Context) ([]model.User, error) {
	out := []model.User{}
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *stubUserService) Delete(_ context.Context, id string) error {
	if _, ok := s.users[id]; !ok {
		return &service.NotFoundError{Resource: "user", ID: id}
	}
	delete(s.users, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubUserService) Enroll(context.Context, string, string) error   { return nil }
func (s *stubUserService) Unenroll(context.Context, string, string) error { return nil }
func (s *stubUserService) GetEnrolledCourses(context.Context, string) ([]model.Course, error) {
	return []model.Course{}, nil
}

type stubSessionService struct {
	revokeErr error
	revoked   []string
}

func (s *stubSessionService) Issue(user *model.User) (string, *model.Session, error) {
	sess := &model.Session{UserID: user.UserID, Email: user.Email, Role: user.Role, TokenID: "jti-" + user.UserID, ExpiresAt: time.Now().Add(time.Hour)}
	return "token-for-" + user.UserID, sess, nil
}

func (s *stubSessionService) Validate(context.Context, string) (*model.Session, error) {
	return nil, service.ErrInvalidSession
}

func (s *stubSessionService) Revoke(_ context.Context, sess *model.Session) error {
	if s.revokeErr != nil {
		return s.revokeErr
	}
	s.revoked = append(s.revoked, sess.UserID)
	return nil
}

func newUserTestAPI(t *testing.T, users *stubUserService, sessions *stubSessionService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	api.UseMiddleware(withTestSession)

	h := NewUserHandler(users, sessions, newStubCourseService(), zerolog.Nop())
	huma.Register(api, huma.Operation{OperationID: "register", Method: http.MethodPost, Path: "/auth/register", DefaultStatus: http.StatusCreated}, h.Register)
	huma.Register(api, huma.Operation{OperationID: "login", Method: http.MethodPost, Path: "/auth/login"}, h.Login)
	huma.Register(api, huma.Operation{OperationID: "logout", Method: http.MethodPost, Path: "/auth/logout", DefaultStatus: http.StatusNoContent}, h.Logout)
	huma.Register(api, huma.Operation{OperationID: "adminLogin", Method: http.MethodPost, Path: "/admin/login"}, h.AdminLogin)
	huma.Register(api, huma.Operation{OperationID: "getUser", Method: http.MethodGet, Path: "/users/me"}, h.GetUser)
	huma.Register(api, huma.Operation{OperationID: "listUsers", Method: http.MethodGet, Path: "/admin/users"}, h.ListUsers)
	huma.Register(api, huma.Operation{OperationID: "deleteUser", Method: http.MethodDelete, Path: "/admin/users/{userId}", DefaultStatus: http.StatusNoContent}, h.DeleteUser)
	return api
}

func TestRegisterAndLogin(t *testing.T) {
	users := newStubUserService()
	api := newUserTestAPI(t, users, &stubSessionService{})

	resp := api.Post("/auth/register", map[string]any{"name": "Ada", "email": "ada@example.com", "password": "analytical"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var session dto.SessionResponseDTO
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))
	assert.Equal(t, "token-for-user-Ada", session.Token)
	assert.Equal(t, "student", session.User.Role)

	resp = api.Post("/auth/register", map[string]any{"name": "Other", "email": "ADA@example.com", "password": "analytical"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = api.Post("/auth/login", map[string]any{"email": "ada@example.com", "password": "analytical"})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = api.Post("/auth/login", map[string]any{"email": "ada@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	users := newStubUserService()
	api := newUserTestAPI(t, users, &stubSessionService{})

	resp := api.Post("/auth/register", map[string]any{"name": "Ada", "email": "ada@example.com", "password": "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Empty(t, users.users)
}

func TestAdminLogin(t *testing.T) {
	api := newUserTestAPI(t, newStubUserService(), &stubSessionService{})

	resp := api.Post("/admin/login", map[string]any{"email": "admin@example.com", "password": "admin-password"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var session dto.SessionResponseDTO
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &session))
	assert.Equal(t, "admin", session.User.Role)

	resp = api.Post("/admin/login", map[string]any{"email": "admin@example.com", "password": "guess"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogout(t *testing.T) {
	sessions := &stubSessionService{}
	api := newUserTestAPI(t, newStubUserService(), sessions)

	assert.Equal(t, http.StatusUnauthorized, api.Post("/auth/logout").Code)
	assert.Equal(t, http.StatusNoContent, api.Post("/auth/logout", "X-Test-User: ada").Code)
	assert.Equal(t, []string{"ada"}, sessions.revoked)

	sessions.revokeErr = errors.New("redis down")
	assert.Equal(t, http.StatusServiceUnavailable, api.Post("/auth/logout", "X-Test-User: ada").Code)
}

func TestGetUserRequiresSession(t *testing.T) {
	users := newStubUserService()
	users.users["ada"] = &model.User{UserID: "ada", Name: "Ada", Email: "ada@example.com", Role: model.RoleStudent}
	api := newUserTestAPI(t, users, &stubSessionService{})

	assert.Equal(t, http.StatusUnauthorized, api.Get("/users/me").Code)

	resp := api.Get("/users/me", "X-Test-User: ada")
	require.Equal(t, http.StatusOK, resp.Code)
	var user dto.UserResponseDTO
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &user))
	assert.Equal(t, "ada@example.com", user.Email)

	assert.Equal(t, http.StatusNotFound, api.Get("/users/me", "X-Test-User: ghost").Code)
}

func TestAdminUserManagement(t *testing.T) {
	users := newStubUserService()
	users.users["ada"] = &model.User{UserID: "ada", Name: "Ada", Role: model.RoleStudent}
	users.users["root"] = &model.User{UserID: "root", Name: "Root", Role: model.RoleAdmin}
	api := newUserTestAPI(t, users, &stubSessionService{})

	assert.Equal(t, http.StatusForbidden, api.Get("/admin/users", "X-Test-User: ada").Code)

	resp := api.Get("/admin/users", "X-Test-User: root", "X-Test-Role: admin")
	require.Equal(t, http.StatusOK, resp.Code)
	var list []dto.UserResponseDTO
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	assert.Equal(t, http.StatusForbidden, api.Delete("/admin/users/root", "X-Test-User: ada").Code)
	assert.Equal(t, http.StatusConflict, api.Delete("/admin/users/root", "X-Test-User: root", "X-Test-Role: admin").Code)
	assert.Equal(t, http.StatusNoContent, api.Delete("/admin/users/ada", "X-Test-User: root", "X-Test-Role: admin").Code)
	assert.Equal(t, []string{"ada"}, users.deleted)
	assert.Equal(t, http.StatusNotFound, api.Delete("/admin/users/ada", "X-Test-User: root", "X-Test-Role: admin").Code)
}
