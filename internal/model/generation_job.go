package model

import "time"

// GenerationState is a step of the outline generation workflow.
type GenerationState string

const (
	GenerationIdle       GenerationState = "Idle"
	GenerationGenerating GenerationState = "Generating"
	GenerationValidating GenerationState = "Validating"
	GenerationSuccess    GenerationState = "Success"
	GenerationFailed     GenerationState = "Failed"
)

// Terminal reports whether no further transitions follow s.
func (s GenerationState) Terminal() bool {
	return s == GenerationSuccess || s == GenerationFailed
}

// InFlight reports whether a request is being processed in state s.
func (s GenerationState) InFlight() bool {
	return s == GenerationGenerating || s == GenerationValidating
}

// GenerationJob is an asynchronous outline generation request.
type GenerationJob struct {
	JobID        string          `db:"id" json:"job_id"`
	OwnerID      string          `db:"owner_id" json:"owner_id"`
	Topic        string          `db:"topic" json:"topic"`
	State        GenerationState `db:"state" json:"state"`
	Outline      *CourseOutline  `db:"outline" json:"outline,omitempty"`
	ErrorKind    string          `db:"error_kind" json:"error_kind,omitempty"`
	ErrorMessage string          `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// FailedGeneration is the raw model output of a generation that did not
// produce a valid outline, kept for prompt debugging.
type FailedGeneration struct {
	Topic     string    `json:"topic"`
	Raw       string    `json:"raw"`
	ErrorKind string    `json:"error_kind"`
	Error     string    `json:"error"`
	FailedAt  time.Time `json:"failed_at"`
}
