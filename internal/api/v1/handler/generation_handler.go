package handler

import (
	"context"

	"courseai/internal/api/v1/operation"
	"courseai/internal/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
)

type GenerationHandler struct {
	generationService service.GenerationService
	jobService        service.GenerationJobService
	logger            zerolog.Logger
}

func NewGenerationHandler(generationService service.GenerationService, jobService service.GenerationJobService, logger zerolog.Logger) *GenerationHandler {
	return &GenerationHandler{
		generationService: generationService,
		jobService:        jobService,
		logger:            logger,
	}
}

// GenerateOutline runs one generation synchronously. Nothing is saved.
func (h *GenerationHandler) GenerateOutline(ctx context.Context, input *operation.GenerateOutlineInput) (*operation.GenerateOutlineOutput, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	outline, err := h.generationService.GenerateOutline(ctx, input.Body.Topic)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to generate course outline")
	}
	return &operation.GenerateOutlineOutput{Body: toOutlineDTO(*outline)}, nil
}

// CreateGenerationJob queues a generation for the background worker
func (h *GenerationHandler) CreateGenerationJob(ctx context.Context, input *operation.CreateGenerationJobInput) (*operation.CreateGenerationJobOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	job, err := h.jobService.Enqueue(ctx, sess.UserID, input.Body.Topic)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to queue generation")
	}
	return &operation.CreateGenerationJobOutput{Body: toJobDTO(job)}, nil
}

func (h *GenerationHandler) GetGenerationJob(ctx context.Context, input *operation.GetGenerationJobInput) (*operation.GetGenerationJobOutput, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	job, err := h.jobService.Get(ctx, input.JobID)
	if err != nil {
		return nil, toHumaError(err, h.logger, "Failed to retrieve generation job")
	}
	// Other users' jobs are reported as missing.
	if job.OwnerID != sess.UserID && !sess.IsAdmin() {
		return nil, huma.Error404NotFound("Generation job not found")
	}
	return &operation.GetGenerationJobOutput{Body: toJobDTO(job)}, nil
}
