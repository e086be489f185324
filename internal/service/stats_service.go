package service

import (
	"context"

	"courseai/internal/repository"

	"github.com/rs/zerolog"
)

// Stats are the site totals shown on the admin dashboard.
type Stats struct {
	TotalUsers    int
	ActiveCourses int
}

type StatsService interface {
	Get(ctx context.Context) (*Stats, error)
}

type statsService struct {
	users   repository.UserRepository
	courses repository.CourseRepository
	logger  zerolog.Logger
}

func NewStatsService(users repository.UserRepository, courses repository.CourseRepository, logger zerolog.Logger) StatsService {
	return &statsService{
		users:   users,
		courses: courses,
		logger:  logger.With().Str("service", "StatsService").Logger(),
	}
}

// Get counts users and stored courses. Every stored course counts as active.
func (s *statsService) Get(ctx context.Context) (*Stats, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to count users")
		return nil, &StoreError{Op: "count users", Err: err}
	}
	courses, err := s.courses.ListCourses(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to count courses")
		return nil, &StoreError{Op: "count courses", Err: err}
	}
	return &Stats{TotalUsers: len(users), ActiveCourses: len(courses)}, nil
}
