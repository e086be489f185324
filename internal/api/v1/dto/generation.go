package dto

import "time"

type GenerateOutlineRequestDTO struct {
	Topic string `json:"topic" maxLength:"500" doc:"Subject to build a course outline for"`
}

type GenerationJobDTO struct {
	JobID        string            `json:"job_id"`
	Topic        string            `json:"topic"`
	State        string            `json:"state" enum:"Idle,Generating,Validating,Success,Failed"`
	Outline      *CourseOutlineDTO `json:"outline,omitempty"`
	ErrorKind    string            `json:"error_kind,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
