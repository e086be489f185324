package handler

import (
	"context"
	"errors"

	"courseai/internal/middleware"
	"courseai/internal/model"
	"courseai/internal/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
)

// requireSession returns the caller's session or a 401.
func requireSession(ctx context.Context) (*model.Session, error) {
	sess := middleware.SessionFromContext(ctx)
	if sess == nil {
		return nil, huma.Error401Unauthorized("Authentication required")
	}
	return sess, nil
}

func requireAdmin(ctx context.Context) (*model.Session, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.IsAdmin() {
		return nil, huma.Error403Forbidden("Admin role required")
	}
	return sess, nil
}

// canModifyCourse reports whether sess may update or delete course.
func canModifyCourse(sess *model.Session, course *model.Course) bool {
	return sess.IsAdmin() || course.CreatedBy == sess.UserID
}

// toHumaError maps service errors onto HTTP statuses. Anything unrecognised
// is logged and reported as a 500 with msg.
func toHumaError(err error, logger zerolog.Logger, msg string) error {
	var (
		validationErr *service.ValidationError
		parseErr      *service.ParseError
		transportErr  *service.TransportError
		notFoundErr   *service.NotFoundError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &parseErr):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.As(err, &transportErr):
		logger.Warn().Err(err).Msg(msg)
		return huma.Error502BadGateway(msg, err)
	case errors.As(err, &notFoundErr):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return huma.Error401Unauthorized("Invalid credentials")
	case errors.Is(err, service.ErrForbidden):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, service.ErrWorkflowBusy), errors.Is(err, service.ErrEmailAlreadyRegistered),
		errors.Is(err, service.ErrSlugTaken):
		return huma.Error409Conflict(err.Error())
	default:
		logger.Error().Err(err).Msg(msg)
		return huma.Error500InternalServerError(msg)
	}
}
