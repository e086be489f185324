package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"courseai/internal/model"
	"courseai/internal/pubsub"
	"courseai/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type UserService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	// AuthenticateAdmin verifies creds and returns the admin's user record,
	// creating it on first login.
	AuthenticateAdmin(ctx context.Context, creds AdminCredentials) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id string) error
	Enroll(ctx context.Context, userID, courseID string) error
	Unenroll(ctx context.Context, userID, courseID string) error
	GetEnrolledCourses(ctx context.Context, userID string) ([]model.Course, error)
}

type userService struct {
	userRepo       repository.UserRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	verifier       CredentialVerifier
	events         courseEventEmitter
	logger         zerolog.Logger
}

// NewUserService creates a UserService. Courses removed along with a deleted
// user are announced on topic as course.deleted events.
func NewUserService(userRepo repository.UserRepository, courseRepo repository.CourseRepository, enrollmentRepo repository.EnrollmentRepository, verifier CredentialVerifier, publisher pubsub.Publisher, topic string, logger zerolog.Logger) UserService {
	userLogger := logger.With().Str("service", "UserService").Logger()
	return &userService{
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		verifier:       verifier,
		events:         courseEventEmitter{publisher: publisher, topic: topic, logger: userLogger},
		logger:         userLogger,
	}
}

func (s *userService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	switch {
	case name == "":
		return nil, &ValidationError{Field: "name"}
	case email == "":
		return nil, &ValidationError{Field: "email"}
	case len(password) < minPasswordLength:
		return nil, &ValidationError{Field: "password"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleStudent,
	}
	if err := s.userRepo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyRegistered
		}
		s.logger.Error().Err(err).Msg("Failed to create user")
		return nil, &StoreError{Op: "create user", Err: err}
	}
	s.logger.Info().Str("user_id", u.UserID).Msg("User registered")
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, &StoreError{Op: "get user", Err: err}
	}
	if u == nil || u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) AuthenticateAdmin(ctx context.Context, creds AdminCredentials) (*model.User, error) {
	admin, err := s.verifier.Verify(ctx, creds)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Admin login rejected")
		return nil, err
	}
	u, err := s.userRepo.EnsureAdmin(ctx, admin.Email, admin.Name)
	if err != nil {
		return nil, &StoreError{Op: "ensure admin user", Err: err}
	}
	s.logger.Info().Str("user_id", u.UserID).Msg("Admin logged in")
	return u, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, &StoreError{Op: "get user", Err: err}
	}
	if u == nil {
		return nil, &NotFoundError{Resource: "user", ID: id}
	}
	return u, nil
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list users", Err: err}
	}
	return users, nil
}

// Delete removes a user together with their courses, enrollments and reviews.
// Each owned course gets a course.deleted event once the delete commits.
func (s *userService) Delete(ctx context.Context, id string) error {
	owned, err := s.courseRepo.GetCoursesByUserID(ctx, id)
	if err != nil {
		return &StoreError{Op: "list user courses", Err: err}
	}
	deleted, err := s.userRepo.DeleteUser(ctx, id)
	if err != nil {
		return &StoreError{Op: "delete user", Err: err}
	}
	if !deleted {
		return &NotFoundError{Resource: "user", ID: id}
	}
	at := time.Now().UTC()
	for i := range owned {
		s.events.emit(ctx, CourseDeletedEvent, &owned[i], at)
	}
	s.logger.Info().Str("user_id", id).Int("courses", len(owned)).Msg("User deleted")
	return nil
}

func (s *userService) Enroll(ctx context.Context, userID, courseID string) error {
	course, err := s.courseRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return &StoreError{Op: "get course", Err: err}
	}
	if course == nil {
		return &NotFoundError{Resource: "course", ID: courseID}
	}
	if err := s.enrollmentRepo.Enroll(ctx, userID, courseID); err != nil {
		if errors.Is(err, repository.ErrMissingReference) {
			return &NotFoundError{Resource: "course", ID: courseID}
		}
		return &StoreError{Op: "enroll", Err: err}
	}
	return nil
}

func (s *userService) Unenroll(ctx context.Context, userID, courseID string) error {
	removed, err := s.enrollmentRepo.Unenroll(ctx, userID, courseID)
	if err != nil {
		return &StoreError{Op: "unenroll", Err: err}
	}
	if !removed {
		return &NotFoundError{Resource: "enrollment", ID: courseID}
	}
	return nil
}

func (s *userService) GetEnrolledCourses(ctx context.Context, userID string) ([]model.Course, error) {
	courses, err := s.enrollmentRepo.GetEnrolledCourses(ctx, userID)
	if err != nil {
		return nil, &StoreError{Op: "list enrollments", Err: err}
	}
	return courses, nil
}
