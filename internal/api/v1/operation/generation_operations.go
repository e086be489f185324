package operation

import "courseai/internal/api/v1/dto"

type GenerateOutlineInput struct {
	Body dto.GenerateOutlineRequestDTO `json:"body"`
}

type GenerateOutlineOutput struct {
	Body dto.CourseOutlineDTO `json:"body"`
}

type CreateGenerationJobInput struct {
	Body dto.GenerateOutlineRequestDTO `json:"body"`
}

type CreateGenerationJobOutput struct {
	Body dto.GenerationJobDTO `json:"body"`
}

type GetGenerationJobInput struct {
	JobID string `path:"jobId" doc:"Generation job ID"`
}

type GetGenerationJobOutput struct {
	Body dto.GenerationJobDTO `json:"body"`
}
