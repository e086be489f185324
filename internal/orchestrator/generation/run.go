package generation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"courseai/internal/model"
	"courseai/internal/pgmq"
	"courseai/internal/service"

	"github.com/rs/zerolog"
)

// Queue is the part of the pgmq client the worker reads from.
type Queue interface {
	ReadWithPoll(ctx context.Context, queue string, vtSec, pollSec, maxMessages int) ([]*pgmq.Message, error)
	Delete(ctx context.Context, queue string, msgIDs []int64) error
}

// Processor drives one stored generation job to a terminal state.
type Processor interface {
	Process(ctx context.Context, jobID string) (*model.GenerationJob, error)
}

type Options struct {
	QueueName         string
	VisibilityTimeout int
	PollTimeout       int
	// RetryDelay is the pause after a failed queue read. Defaults to one second.
	RetryDelay time.Duration
}

// Run starts the generation orchestrator. It returns nil once ctx is done.
func Run(ctx context.Context, logger zerolog.Logger, queue Queue, jobs Processor, opts Options) error {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	logger.Info().Str("queue", opts.QueueName).Msg("Starting generation orchestrator")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Shutting down generation orchestrator")
			return nil
		default:
		}

		msgs, err := queue.ReadWithPoll(ctx, opts.QueueName, opts.VisibilityTimeout, opts.PollTimeout, 1)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			logger.Error().Err(err).Msg("Error reading generation queue")
			sleep(ctx, opts.RetryDelay)
			continue
		}
		for _, msg := range msgs {
			handleMessage(ctx, logger, queue, jobs, opts.QueueName, msg)
		}
	}
}

// handleMessage processes one queue message. The message is deleted once
// its job is terminal or can never be processed. Anything else is left to
// reappear after the visibility timeout.
func handleMessage(ctx context.Context, logger zerolog.Logger, queue Queue, jobs Processor, queueName string, msg *pgmq.Message) {
	log := logger.With().Int64("msg_id", msg.ID).Logger()

	var payload service.GenerationJobMessage
	if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.JobID == "" {
		log.Error().Err(err).Str("payload", string(msg.Data)).Msg("Invalid generation payload; deleting message")
		deleteMessage(ctx, log, queue, queueName, msg.ID)
		return
	}
	log = log.With().Str("job_id", payload.JobID).Logger()
	log.Info().Msg("Received generation job")

	job, err := jobs.Process(ctx, payload.JobID)
	if err != nil {
		var notFound *service.NotFoundError
		switch {
		case errors.As(err, &notFound):
			log.Warn().Msg("Generation job no longer exists; deleting message")
			deleteMessage(ctx, log, queue, queueName, msg.ID)
		case ctx.Err() != nil:
			log.Info().Msg("Generation interrupted; job will be redelivered")
		default:
			log.Error().Err(err).Msg("Generation job failed to process; will retry")
		}
		return
	}
	if job.State.Terminal() {
		deleteMessage(ctx, log, queue, queueName, msg.ID)
	}
}

func deleteMessage(ctx context.Context, logger zerolog.Logger, queue Queue, queueName string, msgID int64) {
	if err := queue.Delete(ctx, queueName, []int64{msgID}); err != nil {
		logger.Error().Err(err).Msg("Error deleting generation message")
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
