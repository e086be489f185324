package dto

import "time"

// ModuleContentDTO is the generated material of one module.
type ModuleContentDTO struct {
	Concepts  []string `json:"concepts"`
	Examples  []string `json:"examples"`
	Exercises []string `json:"exercises,omitempty"`
	Resources []string `json:"resources,omitempty"`
}

type ModuleDTO struct {
	Title       string            `json:"title" minLength:"1"`
	Description string            `json:"description,omitempty"`
	Content     *ModuleContentDTO `json:"content,omitempty"`
}

// CourseOutlineDTO is a generated or hand-written outline, before it is saved.
type CourseOutlineDTO struct {
	Title       string      `json:"title" minLength:"1" doc:"Course title"`
	Description string      `json:"description" minLength:"1" doc:"Short course description"`
	Duration    string      `json:"duration,omitempty" doc:"Estimated duration, e.g. 8 weeks"`
	Level       string      `json:"level,omitempty" enum:"Beginner,Intermediate,Advanced"`
	Objectives  []string    `json:"objectives,omitempty"`
	Modules     []ModuleDTO `json:"modules" minItems:"1"`
}

type CourseResponseDTO struct {
	CourseID    string      `json:"course_id"`
	CreatedBy   string      `json:"created_by"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Duration    string      `json:"duration"`
	Level       string      `json:"level"`
	Objectives  []string    `json:"objectives"`
	Modules     []ModuleDTO `json:"modules"`
	Rating      float64     `json:"rating"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CourseUpdateDTO holds the fields to change. Omitted fields are left as they are.
type CourseUpdateDTO struct {
	Title       *string      `json:"title,omitempty" minLength:"1"`
	Description *string      `json:"description,omitempty" minLength:"1"`
	Duration    *string      `json:"duration,omitempty"`
	Level       *string      `json:"level,omitempty" enum:"Beginner,Intermediate,Advanced"`
	Objectives  *[]string    `json:"objectives,omitempty"`
	Modules     *[]ModuleDTO `json:"modules,omitempty" minItems:"1"`
}
