package service

import (
	"context"
	"encoding/json"
	"time"

	"courseai/internal/model"
	"courseai/internal/pubsub"

	"github.com/rs/zerolog"
)

const (
	CourseCreatedEvent = "course.created"
	CourseUpdatedEvent = "course.updated"
	CourseDeletedEvent = "course.deleted"
)

// CourseEvent is published after a course mutation has been stored.
type CourseEvent struct {
	Type       string    `json:"type"`
	CourseID   string    `json:"course_id"`
	OwnerID    string    `json:"owner_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type courseEventEmitter struct {
	publisher pubsub.Publisher
	topic     string
	logger    zerolog.Logger
}

// emit publishes best-effort: the mutation already happened, so a failed
// publish is logged and not returned.
func (e courseEventEmitter) emit(ctx context.Context, eventType string, c *model.Course, at time.Time) {
	if e.publisher == nil {
		return
	}
	payload, err := json.Marshal(CourseEvent{
		Type:       eventType,
		CourseID:   c.ID,
		OwnerID:    c.CreatedBy,
		OccurredAt: at,
	})
	if err != nil {
		e.logger.Error().Err(err).Str("course_id", c.ID).Msg("Failed to encode course event")
		return
	}
	if _, err := e.publisher.Publish(ctx, e.topic, payload); err != nil {
		e.logger.Warn().Err(err).Str("course_id", c.ID).Str("event", eventType).Msg("Failed to publish course event")
	}
}
