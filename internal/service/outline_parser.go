package service

import (
	"encoding/json"
	"errors"
	"strings"

	"courseai/internal/model"

	"github.com/go-playground/validator/v10"
)

// OutlineParser turns raw model output into validated documents. It checks
// presence of required fields only; it never coerces values.
type OutlineParser struct {
	validate *validator.Validate
}

func NewOutlineParser() *OutlineParser {
	return &OutlineParser{validate: newFieldValidator()}
}

// ParseOutline parses raw as a course outline. Malformed JSON yields a
// *ParseError; a missing title, description or modules yields a
// *ValidationError naming the first one missing, in that order.
func (p *OutlineParser) ParseOutline(raw string) (*model.CourseOutline, error) {
	var outline model.CourseOutline
	if err := decodeDocument(raw, &outline); err != nil {
		return nil, err
	}
	if err := p.ValidateOutline(&outline); err != nil {
		return nil, err
	}
	return &outline, nil
}

// ValidateOutline runs the presence checks on an already decoded outline.
func (p *OutlineParser) ValidateOutline(outline *model.CourseOutline) error {
	if outline == nil {
		return &ValidationError{Field: "outline"}
	}
	return p.check(outline)
}

// ParseModuleContent parses generated module material. Concepts and examples are required.
func (p *OutlineParser) ParseModuleContent(raw string) (*model.ModuleContent, error) {
	var content model.ModuleContent
	if err := decodeDocument(raw, &content); err != nil {
		return nil, err
	}
	if err := p.check(&content); err != nil {
		return nil, err
	}
	return &content, nil
}

func (p *OutlineParser) check(v any) error {
	return validateFields(p.validate, v)
}

func decodeDocument(raw string, v any) error {
	body := stripCodeFence(raw)
	if body == "" {
		return &ParseError{Err: errors.New("empty output")}
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return &ParseError{Err: err}
	}
	return nil
}

// stripCodeFence removes a surrounding markdown code fence such as ```json ... ```.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
