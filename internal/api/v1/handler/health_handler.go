package handler

import (
	"context"
	"time"

	"courseai/internal/api/v1/operation"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger zerolog.Logger
}

func NewHealthHandler(db Pinger, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) Health(ctx context.Context, input *operation.HealthInput) (*operation.HealthOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error().Err(err).Msg("Health check failed")
		return nil, huma.Error503ServiceUnavailable("Database unavailable")
	}
	out := &operation.HealthOutput{}
	out.Body.Status = "ok"
	return out, nil
}
