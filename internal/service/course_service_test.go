package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"courseai/internal/model"

	"github.com/rs/zerolog"
)

func sampleOutline() *model.CourseOutline {
	return &model.CourseOutline{
		Title:       "Go Concurrency",
		Description: "Goroutines, channels and the memory model",
		Duration:    "4 weeks",
		Level:       model.LevelAdvanced,
		Objectives:  []string{"Reason about races", "Use channels"},
		Modules: []model.Module{
			{Title: "Goroutines", Description: "Scheduling basics"},
			{Title: "Channels", Description: "Buffered and unbuffered"},
		},
	}
}

// stepClock returns a clock that advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(step)
		return t
	}
}

func newTestCourseService(repo *fakeCourseRepo, publisher *fakePublisher) *courseService {
	var svc CourseService
	if publisher != nil {
		svc = NewCourseService(repo, publisher, "course-events", zerolog.Nop())
	} else {
		svc = NewCourseService(repo, nil, "", zerolog.Nop())
	}
	return svc.(*courseService)
}

func TestCourseCreateAndGet(t *testing.T) {
	svc := newTestCourseService(newFakeCourseRepo(), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleOutline(), "owner-1")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("expected created_at == updated_at, got %s and %s", created.CreatedAt, created.UpdatedAt)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Title != "Go Concurrency" || got.Level != model.LevelAdvanced || len(got.Modules) != 2 || len(got.Objectives) != 2 {
		t.Fatalf("unexpected course: %+v", got)
	}
}

func TestCourseCreateRequiresOwnerAndOutline(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := newTestCourseService(repo, nil)
	var validationErr *ValidationError

	if _, err := svc.Create(context.Background(), nil, "owner-1"); !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for nil outline, got %v", err)
	}
	if _, err := svc.Create(context.Background(), sampleOutline(), ""); !errors.As(err, &validationErr) || validationErr.Field != "owner_id" {
		t.Fatalf("expected ValidationError for owner, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatal("nothing should have been stored")
	}
}

func TestCourseUpdateTitleOnly(t *testing.T) {
	svc := newTestCourseService(newFakeCourseRepo(), nil)
	svc.now = stepClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), time.Second)
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleOutline(), "owner-1")
	if err != nil {
		t.Fatal(err)
	}

	title := "Go Concurrency in Practice"
	updated, err := svc.Update(ctx, created.ID, CoursePatch{Title: &title})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("expected new title, got %q", updated.Title)
	}
	if updated.Description != created.Description || len(updated.Modules) != len(created.Modules) || updated.Level != created.Level {
		t.Fatalf("fields outside the patch changed: %+v", updated)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("created_at must not change")
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("expected updated_at after created_at, got %s <= %s", updated.UpdatedAt, updated.CreatedAt)
	}

	got, _ := svc.Get(ctx, created.ID)
	if got.Title != title {
		t.Fatal("update was not stored")
	}
}

func TestCourseUpdateAdvancesTimestampWhenClockStalls(t *testing.T) {
	svc := newTestCourseService(newFakeCourseRepo(), nil)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleOutline(), "owner-1")
	if err != nil {
		t.Fatal(err)
	}
	desc := "updated"
	updated, err := svc.Update(ctx, created.ID, CoursePatch{Description: &desc})
	if err != nil {
		t.Fatal(err)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updated_at to advance, got %s", updated.UpdatedAt)
	}
}

func TestCourseDeleteThenGet(t *testing.T) {
	svc := newTestCourseService(newFakeCourseRepo(), nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleOutline(), "owner-1")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	var notFound *NotFoundError
	if _, err := svc.Get(ctx, created.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError after delete, got %v", err)
	}
}

func TestCourseUpdateRejectsBlankRequiredFields(t *testing.T) {
	blank := "   "
	noModules := []model.Module{}
	tests := []struct {
		name      string
		patch     CoursePatch
		wantField string
	}{
		{"whitespace title", CoursePatch{Title: &blank}, "title"},
		{"whitespace description", CoursePatch{Description: &blank}, "description"},
		{"empty modules", CoursePatch{Modules: &noModules}, "modules"},
		{"title and modules", CoursePatch{Title: &blank, Modules: &noModules}, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeCourseRepo()
			publisher := &fakePublisher{}
			svc := newTestCourseService(repo, publisher)
			ctx := context.Background()
			created, err := svc.Create(ctx, sampleOutline(), "owner-1")
			if err != nil {
				t.Fatal(err)
			}

			_, err = svc.Update(ctx, created.ID, tt.patch)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) || validationErr.Field != tt.wantField {
				t.Fatalf("expected ValidationError on %s, got %v", tt.wantField, err)
			}
			if repo.updates != 0 {
				t.Fatalf("rejected patch reached the store %d times", repo.updates)
			}
			stored, err := svc.Get(ctx, created.ID)
			if err != nil {
				t.Fatal(err)
			}
			if stored.Title != created.Title || stored.Description != created.Description || len(stored.Modules) != 2 {
				t.Fatalf("stored course changed: %+v", stored)
			}
			if !stored.UpdatedAt.Equal(created.UpdatedAt) {
				t.Fatal("updated_at moved on a rejected patch")
			}
			if len(publisher.payloads) != 1 {
				t.Fatalf("expected only the created event, got %v", publisher.payloads)
			}
		})
	}
}

func TestCourseCreateRejectsIncompleteOutline(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := newTestCourseService(repo, nil)
	outline := sampleOutline()
	outline.Modules = nil

	_, err := svc.Create(context.Background(), outline, "owner-1")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "modules" {
		t.Fatalf("expected ValidationError on modules, got %v", err)
	}
	if repo.count() != 0 {
		t.Fatal("incomplete outline was stored")
	}
}

func TestCourseMissingIDLeavesStoreUnchanged(t *testing.T) {
	repo := newFakeCourseRepo()
	svc := newTestCourseService(repo, nil)
	ctx := context.Background()
	if _, err := svc.Create(ctx, sampleOutline(), "owner-1"); err != nil {
		t.Fatal(err)
	}

	var notFound *NotFoundError
	title := "x"
	if _, err := svc.Update(ctx, "missing", CoursePatch{Title: &title}); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError from Update, got %v", err)
	}
	if err := svc.Delete(ctx, "missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError from Delete, got %v", err)
	}
	if repo.count() != 1 || repo.updates != 0 || repo.deletes != 0 {
		t.Fatalf("store changed: count=%d updates=%d deletes=%d", repo.count(), repo.updates, repo.deletes)
	}
}

func TestCourseStoreUnreachable(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.failAll = true
	svc := newTestCourseService(repo, nil)
	ctx := context.Background()

	var storeErr *StoreError
	if _, err := svc.Create(ctx, sampleOutline(), "owner-1"); !errors.As(err, &storeErr) {
		t.Fatalf("Create: expected StoreError, got %v", err)
	}
	if _, err := svc.Get(ctx, "id"); !errors.As(err, &storeErr) {
		t.Fatalf("Get: expected StoreError, got %v", err)
	}
	if _, err := svc.List(ctx); !errors.As(err, &storeErr) {
		t.Fatalf("List: expected StoreError, got %v", err)
	}
	if !errors.Is(storeErr, errStoreDown) {
		t.Fatal("StoreError should wrap the underlying cause")
	}
}

func TestCourseListByOwner(t *testing.T) {
	svc := newTestCourseService(newFakeCourseRepo(), nil)
	ctx := context.Background()
	for _, owner := range []string{"alice", "alice", "bob"} {
		if _, err := svc.Create(ctx, sampleOutline(), owner); err != nil {
			t.Fatal(err)
		}
	}
	courses, err := svc.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(courses) != 2 {
		t.Fatalf("expected 2 courses for alice, got %d", len(courses))
	}
}

func TestCourseEventsPublished(t *testing.T) {
	publisher := &fakePublisher{}
	svc := newTestCourseService(newFakeCourseRepo(), publisher)
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleOutline(), "owner-1")
	if err != nil {
		t.Fatal(err)
	}
	title := "renamed"
	if _, err := svc.Update(ctx, created.ID, CoursePatch{Title: &title}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatal(err)
	}

	want := []string{CourseCreatedEvent, CourseUpdatedEvent, CourseDeletedEvent}
	if len(publisher.payloads) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(publisher.payloads))
	}
	for i, raw := range publisher.payloads {
		var ev CourseEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			t.Fatalf("event %d is not JSON: %v", i, err)
		}
		if ev.Type != want[i] || ev.CourseID != created.ID || ev.OwnerID != "owner-1" {
			t.Fatalf("unexpected event %d: %+v", i, ev)
		}
	}
}
