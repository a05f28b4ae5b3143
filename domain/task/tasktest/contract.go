// Package tasktest holds the behaviour every task.Repository must share.
package tasktest

import (
	"context"
	"testing"
	"time"

	"taskflow/domain/task"

	"github.com/google/uuid"
)

// Factory returns an empty repository for one subtest.
type Factory func(t *testing.T) task.Repository

// Fixture builds a task with a fixed creation time, millisecond precision so
// every backing store round-trips it exactly.
func Fixture(title string, description *string, createdAt time.Time) *task.Task {
	return task.RebuildFromDTO(task.ReconstructionDTO{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		CreatedAt:   createdAt.UTC().Truncate(time.Millisecond),
	})
}

// RunRepositoryContract runs the shared repository behaviour against newRepo.
func RunRepositoryContract(t *testing.T, newRepo Factory) {
	t.Helper()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("ListAll on empty store", func(t *testing.T) {
		repo := newRepo(t)
		tasks, err := repo.ListAll(context.Background())
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if len(tasks) != 0 {
			t.Fatalf("ListAll() returned %d tasks, want 0", len(tasks))
		}
	})

	t.Run("ListAll orders newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		// inserted out of order on purpose
		offsets := []int{2, 0, 4, 1, 3}
		for _, off := range offsets {
			fx := Fixture("task", nil, base.Add(time.Duration(off)*time.Minute))
			if err := repo.Insert(ctx, fx); err != nil {
				t.Fatalf("Insert() error = %v", err)
			}
		}

		tasks, err := repo.ListAll(ctx)
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if len(tasks) != len(offsets) {
			t.Fatalf("ListAll() returned %d tasks, want %d", len(tasks), len(offsets))
		}
		for i := 1; i < len(tasks); i++ {
			if tasks[i-1].CreatedAt().Before(tasks[i].CreatedAt()) {
				t.Fatalf("tasks not in descending created_at order at %d: %v before %v",
					i, tasks[i-1].CreatedAt(), tasks[i].CreatedAt())
			}
		}
	})

	t.Run("FindByID round trips every field", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		desc := "with description"

		withDesc := Fixture("first", &desc, base)
		withoutDesc := Fixture("second", nil, base.Add(time.Second))
		for _, fx := range []*task.Task{withDesc, withoutDesc} {
			if err := repo.Insert(ctx, fx); err != nil {
				t.Fatalf("Insert() error = %v", err)
			}
		}

		for _, want := range []*task.Task{withDesc, withoutDesc} {
			got, ok, err := repo.FindByID(ctx, want.ID())
			if err != nil || !ok {
				t.Fatalf("FindByID(%s) = %v, %v; want found", want.ID(), ok, err)
			}
			assertSameTask(t, got, want)
		}
	})

	t.Run("NewTask round trips created_at exactly", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := task.NewTask("fresh", nil)
		if err != nil {
			t.Fatalf("NewTask() error = %v", err)
		}
		if err := repo.Insert(ctx, created); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}

		got, ok, err := repo.FindByID(ctx, created.ID())
		if err != nil || !ok {
			t.Fatalf("FindByID() = %v, %v", ok, err)
		}
		assertSameTask(t, got, created)

		listed, err := repo.ListAll(ctx)
		if err != nil || len(listed) != 1 {
			t.Fatalf("ListAll() = %d tasks, %v", len(listed), err)
		}
		assertSameTask(t, listed[0], created)
	})

	t.Run("FindByID on unknown id reports absence", func(t *testing.T) {
		repo := newRepo(t)
		got, ok, err := repo.FindByID(context.Background(), uuid.NewString())
		if err != nil {
			t.Fatalf("FindByID() error = %v, want nil", err)
		}
		if ok || got != nil {
			t.Fatalf("FindByID() = %v, %v; want nil, false", got, ok)
		}
	})

	t.Run("ApplyCompletion marks the task", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		target := Fixture("complete me", nil, base)
		other := Fixture("leave me", nil, base.Add(time.Second))
		for _, fx := range []*task.Task{target, other} {
			if err := repo.Insert(ctx, fx); err != nil {
				t.Fatalf("Insert() error = %v", err)
			}
		}

		for i := 0; i < 2; i++ {
			ok, err := repo.ApplyCompletion(ctx, target.ID())
			if err != nil || !ok {
				t.Fatalf("ApplyCompletion() #%d = %v, %v; want true, nil", i+1, ok, err)
			}
		}

		got, _, err := repo.FindByID(ctx, target.ID())
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if !got.IsCompleted() {
			t.Error("task should be completed")
		}
		if got.Title() != target.Title() || !got.CreatedAt().Equal(target.CreatedAt()) {
			t.Error("completion must not touch other fields")
		}

		untouched, _, _ := repo.FindByID(ctx, other.ID())
		if untouched.IsCompleted() {
			t.Error("completing one task must not complete another")
		}
	})

	t.Run("ApplyCompletion on unknown id mutates nothing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		existing := Fixture("existing", nil, base)
		if err := repo.Insert(ctx, existing); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}

		ok, err := repo.ApplyCompletion(ctx, uuid.NewString())
		if err != nil {
			t.Fatalf("ApplyCompletion() error = %v, want nil", err)
		}
		if ok {
			t.Fatal("ApplyCompletion() = true for unknown id")
		}

		tasks, _ := repo.ListAll(ctx)
		if len(tasks) != 1 || tasks[0].IsCompleted() {
			t.Fatalf("store changed after completing an unknown id: %d tasks", len(tasks))
		}
	})

	t.Run("returned tasks are snapshots", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		fx := Fixture("snapshot", nil, base)
		if err := repo.Insert(ctx, fx); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		fx.MarkComplete()

		listed, _ := repo.ListAll(ctx)
		listed[0].MarkComplete()
		found, _, _ := repo.FindByID(ctx, fx.ID())
		found.MarkComplete()

		stored, _, _ := repo.FindByID(ctx, fx.ID())
		if stored.IsCompleted() {
			t.Error("mutating a returned or inserted task must not change the store")
		}
	})

	t.Run("cancelled context is honoured", func(t *testing.T) {
		repo := newRepo(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := repo.Insert(ctx, Fixture("never stored", nil, base)); err == nil {
			t.Error("Insert() with cancelled context should fail")
		}

		tasks, err := repo.ListAll(context.Background())
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if len(tasks) != 0 {
			t.Errorf("cancelled insert must not be stored, found %d tasks", len(tasks))
		}
	})
}

func assertSameTask(t *testing.T, got, want *task.Task) {
	t.Helper()

	if got.ID() != want.ID() {
		t.Errorf("ID = %s, want %s", got.ID(), want.ID())
	}
	if got.Title() != want.Title() {
		t.Errorf("Title = %q, want %q", got.Title(), want.Title())
	}
	if got.IsCompleted() != want.IsCompleted() {
		t.Errorf("IsCompleted = %v, want %v", got.IsCompleted(), want.IsCompleted())
	}
	if !got.CreatedAt().Equal(want.CreatedAt()) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt(), want.CreatedAt())
	}
	switch {
	case want.Description() == nil && got.Description() != nil:
		t.Errorf("Description = %q, want nil", *got.Description())
	case want.Description() != nil && got.Description() == nil:
		t.Errorf("Description = nil, want %q", *want.Description())
	case want.Description() != nil && *got.Description() != *want.Description():
		t.Errorf("Description = %q, want %q", *got.Description(), *want.Description())
	}
}
