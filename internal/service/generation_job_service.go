package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"courseai/internal/model"
	"courseai/internal/repository"

	"github.com/rs/zerolog"
)

// JobQueue hands job ids to the generation worker.
type JobQueue interface {
	Send(ctx context.Context, queue string, payload []byte) (int64, error)
}

// GenerationJobMessage is the queue payload for one job.
type GenerationJobMessage struct {
	JobID string `json:"job_id"`
}

// GenerationJobService runs outline generation asynchronously. Jobs move
// through the same states as a Workflow and each state is stored.
type GenerationJobService interface {
	Enqueue(ctx context.Context, ownerID, topic string) (*model.GenerationJob, error)
	Get(ctx context.Context, jobID string) (*model.GenerationJob, error)
	// Process drives a stored job to a terminal state. A job that is
	// already terminal is returned as is.
	Process(ctx context.Context, jobID string) (*model.GenerationJob, error)
}

type generationJobService struct {
	repo       repository.GenerationJobRepository
	queue      JobQueue
	queueName  string
	generation GenerationService
	now        func() time.Time
	logger     zerolog.Logger
}

func NewGenerationJobService(repo repository.GenerationJobRepository, queue JobQueue, queueName string, generation GenerationService, logger zerolog.Logger) GenerationJobService {
	return &generationJobService{
		repo:       repo,
		queue:      queue,
		queueName:  queueName,
		generation: generation,
		now:        time.Now,
		logger:     logger.With().Str("service", "GenerationJobService").Logger(),
	}
}

func (s *generationJobService) Enqueue(ctx context.Context, ownerID, topic string) (*model.GenerationJob, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}

	now := s.now().UTC()
	job := &model.GenerationJob{
		OwnerID:   ownerID,
		Topic:     topic,
		State:     model.GenerationIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		s.logger.Error().Err(err).Str("owner_id", ownerID).Msg("Failed to create generation job")
		return nil, &StoreError{Op: "create generation job", Err: err}
	}

	payload, err := json.Marshal(GenerationJobMessage{JobID: job.JobID})
	if err != nil {
		return nil, err
	}
	msgID, err := s.queue.Send(ctx, s.queueName, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("job_id", job.JobID).Msg("Failed to enqueue generation job")
		return nil, &StoreError{Op: "enqueue generation job", Err: err}
	}
	s.logger.Info().Str("job_id", job.JobID).Int64("msg_id", msgID).Msg("Generation job enqueued")
	return job, nil
}

func (s *generationJobService) Get(ctx context.Context, jobID string) (*model.GenerationJob, error) {
	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, &StoreError{Op: "get generation job", Err: err}
	}
	if job == nil {
		return nil, &NotFoundError{Resource: "generation job", ID: jobID}
	}
	return job, nil
}

func (s *generationJobService) Process(ctx context.Context, jobID string) (*model.GenerationJob, error) {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.State.Terminal() {
		return job, nil
	}

	log := s.logger.With().Str("job_id", job.JobID).Logger()
	wf := s.generation.NewWorkflow()
	wf.OnTransition(func(state model.GenerationState) {
		// Terminal states are stored below together with their result.
		if state.Terminal() {
			return
		}
		job.State = state
		job.UpdatedAt = s.now().UTC()
		if err := s.repo.UpdateJob(ctx, job); err != nil {
			log.Warn().Err(err).Str("state", string(state)).Msg("Failed to record job state")
		}
	})

	outline, genErr := wf.Submit(ctx, job.Topic)
	if ctx.Err() != nil {
		// Shutting down; leave the job for redelivery.
		return nil, ctx.Err()
	}

	job.UpdatedAt = s.now().UTC()
	if genErr != nil {
		job.State = model.GenerationFailed
		job.Outline = nil
		job.ErrorKind = ErrorKind(genErr)
		job.ErrorMessage = genErr.Error()
	} else {
		job.State = model.GenerationSuccess
		job.Outline = outline
		job.ErrorKind = ""
		job.ErrorMessage = ""
	}
	if err := s.repo.UpdateJob(ctx, job); err != nil {
		log.Error().Err(err).Msg("Failed to store job result")
		return nil, &StoreError{Op: "update generation job", Err: err}
	}
	log.Info().Str("state", string(job.State)).Str("error_kind", job.ErrorKind).Msg("Generation job finished")
	return job, nil
}
