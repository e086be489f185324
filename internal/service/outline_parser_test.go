package service

import (
	"errors"
	"testing"
)

const mlOutlineJSON = `{
  "title": "Introduction to Machine Learning Course",
  "description": "Learn the foundations of supervised and unsupervised learning.",
  "duration": "8 weeks",
  "level": "Intermediate",
  "objectives": ["Understand core ML concepts", "Train and evaluate models", "Avoid overfitting"],
  "modules": [
    {"title": "Foundations", "description": "Data, features and labels"},
    {"title": "Supervised Learning", "description": "Regression and classification"},
    {"title": "Unsupervised Learning", "description": "Clustering and dimensionality reduction"}
  ]
}`

func TestParseOutline(t *testing.T) {
	p := NewOutlineParser()

	outline, err := p.ParseOutline(mlOutlineJSON)
	if err != nil {
		t.Fatalf("ParseOutline returned error: %v", err)
	}
	if outline.Title != "Introduction to Machine Learning Course" {
		t.Fatalf("unexpected title %q", outline.Title)
	}
	if outline.Level != "Intermediate" {
		t.Fatalf("unexpected level %q", outline.Level)
	}
	if len(outline.Modules) != 3 || len(outline.Objectives) != 3 {
		t.Fatalf("expected 3 modules and 3 objectives, got %d and %d", len(outline.Modules), len(outline.Objectives))
	}
	if outline.Modules[1].Title != "Supervised Learning" {
		t.Fatalf("module order not preserved: %+v", outline.Modules)
	}
}

func TestParseOutlineStripsCodeFence(t *testing.T) {
	p := NewOutlineParser()
	for _, raw := range []string{
		"```json\n" + mlOutlineJSON + "\n```",
		"```\n" + mlOutlineJSON + "\n```",
		"  \n" + mlOutlineJSON + "\n\n",
	} {
		if _, err := p.ParseOutline(raw); err != nil {
			t.Fatalf("ParseOutline(%q...) returned error: %v", raw[:10], err)
		}
	}
}

func TestParseOutlineParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"prose", "Here is a great course about machine learning! It has three modules."},
		{"empty", ""},
		{"truncated", `{"title": "ML", "modules": [`},
		{"modules not an array", `{"title": "ML", "description": "d", "modules": "one, two"}`},
		{"array document", `[{"title": "ML"}]`},
		{"trailing prose", mlOutlineJSON + " Hope this helps!"},
	}
	p := NewOutlineParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseOutline(tt.raw)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			var validationErr *ValidationError
			if errors.As(err, &validationErr) {
				t.Fatal("ParseError must not also be a ValidationError")
			}
		})
	}
}

func TestParseOutlineValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantField string
	}{
		{"missing modules", `{"title": "ML", "description": "d"}`, "modules"},
		{"empty modules", `{"title": "ML", "description": "d", "modules": []}`, "modules"},
		{"missing title", `{"description": "d", "modules": [{"title": "m"}]}`, "title"},
		{"blank title", `{"title": "   ", "description": "d", "modules": [{"title": "m"}]}`, "title"},
		{"missing description", `{"title": "ML", "modules": [{"title": "m"}]}`, "description"},
		{"title reported before modules", `{"description": "d"}`, "title"},
		{"description reported before modules", `{"title": "ML"}`, "description"},
		{"null document", `null`, "title"},
	}
	p := NewOutlineParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseOutline(tt.raw)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validationErr.Field != tt.wantField {
				t.Fatalf("expected field %q, got %q", tt.wantField, validationErr.Field)
			}
		})
	}
}

func TestValidateOutlineNil(t *testing.T) {
	var validationErr *ValidationError
	if err := NewOutlineParser().ValidateOutline(nil); !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for nil outline, got %v", err)
	}
}

func TestParseModuleContent(t *testing.T) {
	p := NewOutlineParser()

	content, err := p.ParseModuleContent(`{"concepts": ["gradient"], "examples": ["linear fit"], "exercises": [], "resources": ["book"]}`)
	if err != nil {
		t.Fatalf("ParseModuleContent returned error: %v", err)
	}
	if content.Concepts[0] != "gradient" || content.Examples[0] != "linear fit" {
		t.Fatalf("unexpected content %+v", content)
	}

	_, err = p.ParseModuleContent(`{"concepts": ["gradient"], "exercises": ["x"]}`)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "examples" {
		t.Fatalf("expected ValidationError on examples, got %v", err)
	}

	_, err = p.ParseModuleContent("not json")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}
