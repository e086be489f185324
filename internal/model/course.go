package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Level is the difficulty band of a course.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// ModuleContent is the detailed material generated for a single module.
type ModuleContent struct {
	Concepts  []string `json:"concepts" validate:"notblank"`
	Examples  []string `json:"examples" validate:"notblank"`
	Exercises []string `json:"exercises"`
	Resources []string `json:"resources"`
}

// Module is one ordered unit of a course.
type Module struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Content     *ModuleContent `json:"content,omitempty"`
}

// CourseOutline is the structured description produced by the generation
// service, before it has been persisted.
type CourseOutline struct {
	Title       string   `json:"title" validate:"notblank"`
	Description string   `json:"description" validate:"notblank"`
	Duration    string   `json:"duration"`
	Level       Level    `json:"level"`
	Objectives  []string `json:"objectives"`
	Modules     []Module `json:"modules" validate:"notblank"`
}

// Course is a persisted course outline.
type Course struct {
	ID          string     `db:"id" json:"id"`
	CreatedBy   string     `db:"created_by" json:"created_by"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Duration    string     `db:"duration" json:"duration"`
	Level       Level      `db:"level" json:"level"`
	Objectives  StringList `db:"objectives" json:"objectives"`
	Modules     ModuleList `db:"modules" json:"modules"`
	Rating      float64    `db:"rating" json:"rating"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// NewCourse builds an unsaved course owned by ownerID from an outline.
func NewCourse(o CourseOutline, ownerID string) *Course {
	return &Course{
		CreatedBy:   ownerID,
		Title:       o.Title,
		Description: o.Description,
		Duration:    o.Duration,
		Level:       o.Level,
		Objectives:  StringList(cloneStrings(o.Objectives)),
		Modules:     ModuleList(cloneModules(o.Modules)),
	}
}

// Outline returns the outline fields of c.
func (c *Course) Outline() CourseOutline {
	return CourseOutline{
		Title:       c.Title,
		Description: c.Description,
		Duration:    c.Duration,
		Level:       c.Level,
		Objectives:  cloneStrings(c.Objectives),
		Modules:     cloneModules(c.Modules),
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneModules(in []Module) []Module {
	if in == nil {
		return nil
	}
	out := make([]Module, len(in))
	copy(out, in)
	return out
}

// StringList is a []string stored as JSONB.
type StringList []string

// Value implements the driver.Valuer interface for JSONB
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for JSONB
func (s *StringList) Scan(value interface{}) error {
	bytes, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
	if len(bytes) == 0 {
		*s = StringList{}
		return nil
	}
	return json.Unmarshal(bytes, (*[]string)(s))
}

// ModuleList is a []Module stored as JSONB.
type ModuleList []Module

// Value implements the driver.Valuer interface for JSONB
func (m ModuleList) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Module(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for JSONB
func (m *ModuleList) Scan(value interface{}) error {
	bytes, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("cannot scan %T into ModuleList", value)
	}
	if len(bytes) == 0 {
		*m = ModuleList{}
		return nil
	}
	return json.Unmarshal(bytes, (*[]Module)(m))
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
}
