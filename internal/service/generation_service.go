package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"courseai/internal/model"

	"github.com/rs/zerolog"
)

// OutputArchive stores raw model output that failed parsing or validation.
type OutputArchive interface {
	Archive(ctx context.Context, failed model.FailedGeneration) (string, error)
}

// GenerationService drives outline generation and the separate save step.
type GenerationService interface {
	// GenerateOutline runs one workflow to completion. It never persists.
	GenerateOutline(ctx context.Context, topic string) (*model.CourseOutline, error)
	// SaveCourse validates outline and stores it as a course owned by ownerID.
	SaveCourse(ctx context.Context, outline *model.CourseOutline, ownerID string) (*model.Course, error)
	// GenerateModuleContent fills in the content of one module of a stored course.
	GenerateModuleContent(ctx context.Context, courseID string, moduleIndex int) (*model.Course, error)
	NewWorkflow() *Workflow
}

type generationService struct {
	generator Generator
	parser    *OutlineParser
	courses   CourseService
	archive   OutputArchive
	logger    zerolog.Logger
}

// NewGenerationService creates a GenerationService. archive may be nil.
func NewGenerationService(generator Generator, parser *OutlineParser, courses CourseService, archive OutputArchive, logger zerolog.Logger) GenerationService {
	return &generationService{
		generator: generator,
		parser:    parser,
		courses:   courses,
		archive:   archive,
		logger:    logger.With().Str("service", "GenerationService").Logger(),
	}
}

func (s *generationService) NewWorkflow() *Workflow {
	return &Workflow{
		generator: s.generator,
		parser:    s.parser,
		archive:   s.archive,
		logger:    s.logger,
		state:     model.GenerationIdle,
	}
}

func (s *generationService) GenerateOutline(ctx context.Context, topic string) (*model.CourseOutline, error) {
	start := time.Now()
	outline, err := s.NewWorkflow().Submit(ctx, topic)
	if err != nil {
		s.logger.Warn().Err(err).Str("kind", ErrorKind(err)).Dur("elapsed", time.Since(start)).Msg("Outline generation failed")
		return nil, err
	}
	s.logger.Info().Str("title", outline.Title).Int("modules", len(outline.Modules)).Dur("elapsed", time.Since(start)).Msg("Outline generated")
	return outline, nil
}

func (s *generationService) SaveCourse(ctx context.Context, outline *model.CourseOutline, ownerID string) (*model.Course, error) {
	if err := s.parser.ValidateOutline(outline); err != nil {
		return nil, err
	}
	return s.courses.Create(ctx, outline, ownerID)
}

func (s *generationService) GenerateModuleContent(ctx context.Context, courseID string, moduleIndex int) (*model.Course, error) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if moduleIndex < 0 || moduleIndex >= len(course.Modules) {
		return nil, &NotFoundError{Resource: "module", ID: strconv.Itoa(moduleIndex)}
	}

	module := course.Modules[moduleIndex]
	raw, err := s.generator.Generate(ctx, BuildModuleContentPrompt(course.Title, module.Title))
	if err != nil {
		return nil, asTransportError(err)
	}
	content, err := s.parser.ParseModuleContent(raw)
	if err != nil {
		s.logger.Warn().Err(err).Str("course_id", courseID).Int("module", moduleIndex).Msg("Module content rejected")
		return nil, err
	}

	modules := make([]model.Module, len(course.Modules))
	copy(modules, course.Modules)
	modules[moduleIndex].Content = content
	return s.courses.Update(ctx, courseID, CoursePatch{Modules: &modules})
}

func asTransportError(err error) error {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return err
	}
	return &TransportError{Provider: "generator", Err: err}
}

// Workflow is one outline generation: Idle, then Generating, then
// Validating, ending in Success or Failed. A terminal workflow may be
// submitted to again; an in-flight one rejects submissions.
type Workflow struct {
	generator Generator
	parser    *OutlineParser
	archive   OutputArchive
	logger    zerolog.Logger

	mu        sync.Mutex
	state     model.GenerationState
	outline   *model.CourseOutline
	err       error
	observers []func(model.GenerationState)
}

// OnTransition registers fn to be called after every state change.
func (w *Workflow) OnTransition(fn func(model.GenerationState)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observers = append(w.observers, fn)
}

func (w *Workflow) State() model.GenerationState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Outline returns the validated outline once the workflow reached Success.
func (w *Workflow) Outline() *model.CourseOutline {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.outline
}

// Err returns the failure once the workflow reached Failed.
func (w *Workflow) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Submit generates and validates an outline for topic. An empty topic is
// rejected before any outbound call and leaves the state unchanged.
func (w *Workflow) Submit(ctx context.Context, topic string) (*model.CourseOutline, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, ErrEmptyTopic
	}
	if err := w.begin(); err != nil {
		return nil, err
	}

	raw, err := w.generator.Generate(ctx, BuildCoursePrompt(topic))
	if err != nil {
		return nil, w.finish(nil, asTransportError(err))
	}

	w.transition(model.GenerationValidating, nil, nil)
	outline, err := w.parser.ParseOutline(raw)
	if err != nil {
		w.archiveOutput(ctx, topic, raw, err)
		return nil, w.finish(nil, err)
	}
	return outline, w.finish(outline, nil)
}

func (w *Workflow) begin() error {
	w.mu.Lock()
	if w.state.InFlight() {
		w.mu.Unlock()
		return ErrWorkflowBusy
	}
	observers := w.setLocked(model.GenerationGenerating, nil, nil)
	w.mu.Unlock()

	notify(observers, model.GenerationGenerating)
	return nil
}

func (w *Workflow) finish(outline *model.CourseOutline, err error) error {
	if err != nil {
		w.transition(model.GenerationFailed, nil, err)
		return err
	}
	w.transition(model.GenerationSuccess, outline, nil)
	return nil
}

func (w *Workflow) transition(state model.GenerationState, outline *model.CourseOutline, err error) {
	w.mu.Lock()
	observers := w.setLocked(state, outline, err)
	w.mu.Unlock()

	notify(observers, state)
}

// setLocked must be called with w.mu held. It returns the observers to notify.
func (w *Workflow) setLocked(state model.GenerationState, outline *model.CourseOutline, err error) []func(model.GenerationState) {
	w.state = state
	w.outline = outline
	w.err = err
	return append([]func(model.GenerationState){}, w.observers...)
}

func notify(observers []func(model.GenerationState), state model.GenerationState) {
	for _, fn := range observers {
		fn(state)
	}
}

func (w *Workflow) archiveOutput(ctx context.Context, topic, raw string, cause error) {
	if w.archive == nil {
		return
	}
	key, err := w.archive.Archive(ctx, model.FailedGeneration{
		Topic:     topic,
		Raw:       raw,
		ErrorKind: ErrorKind(cause),
		Error:     cause.Error(),
		FailedAt:  time.Now().UTC(),
	})
	if err != nil {
		w.logger.Warn().Err(err).Msg("Failed to archive rejected model output")
		return
	}
	w.logger.Debug().Str("key", key).Msg("Archived rejected model output")
}
