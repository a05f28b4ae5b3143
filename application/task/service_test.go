package task

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"taskflow/domain/shared"
	domain "taskflow/domain/task"
	"taskflow/infrastructure/persistence"
	"taskflow/infrastructure/persistence/memory"
	"taskflow/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func strPtr(s string) *string { return &s }

// failingRepository fails every call with err.
type failingRepository struct {
	err error
}

func (r *failingRepository) ListAll(context.Context) ([]*domain.Task, error) {
	return nil, r.err
}

func (r *failingRepository) FindByID(context.Context, string) (*domain.Task, bool, error) {
	return nil, false, r.err
}

func (r *failingRepository) Insert(context.Context, *domain.Task) error {
	return r.err
}

func (r *failingRepository) ApplyCompletion(context.Context, string) (bool, error) {
	return false, r.err
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(logger.Replace(zap.New(core)))
	return logs
}

func TestCreateTask(t *testing.T) {
	tests := []struct {
		name      string
		req       CreateTaskRequest
		wantTitle string
		wantDesc  *string
		wantErr   error
	}{
		{
			name:      "title only",
			req:       CreateTaskRequest{Title: "Buy milk"},
			wantTitle: "Buy milk",
		},
		{
			name:      "title is trimmed",
			req:       CreateTaskRequest{Title: "  Buy milk  ", Description: strPtr("2 liters")},
			wantTitle: "Buy milk",
			wantDesc:  strPtr("2 liters"),
		},
		{
			name:    "blank title",
			req:     CreateTaskRequest{Title: "   "},
			wantErr: domain.ErrTitleEmpty,
		},
		{
			name:    "title too long",
			req:     CreateTaskRequest{Title: strings.Repeat("a", domain.MaxTitleLength+1)},
			wantErr: domain.ErrTitleTooLong,
		},
		{
			name:    "description too long",
			req:     CreateTaskRequest{Title: "ok", Description: strPtr(strings.Repeat("d", domain.MaxDescriptionLength+1))},
			wantErr: domain.ErrDescriptionTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memory.NewTaskRepository()
			svc := NewService(repo)

			got, err := svc.CreateTask(context.Background(), tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateTask() error = %v, want %v", err, tt.wantErr)
				}
				if !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("validation error should wrap ErrInvalidInput: %v", err)
				}
				if repo.Len() != 0 {
					t.Errorf("invalid task was stored")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTask() error = %v", err)
			}

			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if (got.Description == nil) != (tt.wantDesc == nil) ||
				(got.Description != nil && *got.Description != *tt.wantDesc) {
				t.Errorf("Description = %v, want %v", got.Description, tt.wantDesc)
			}
			if got.IsCompleted {
				t.Error("new task should not be completed")
			}
			if _, err := uuid.Parse(got.ID); err != nil {
				t.Errorf("ID %q is not a UUID: %v", got.ID, err)
			}
			if got.CreatedAt.Location().String() != "UTC" {
				t.Errorf("CreatedAt should be UTC, got %v", got.CreatedAt.Location())
			}
		})
	}
}

func TestCreateTaskLogsWithRequestID(t *testing.T) {
	logs := observeLogs(t)
	svc := NewService(memory.NewTaskRepository())
	ctx := persistence.ContextWithRequestID(context.Background(), "req-1")

	created, err := svc.CreateTask(ctx, CreateTaskRequest{Title: "logged"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	entries := logs.FilterMessage("Task created").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["task_id"] != created.ID || fields["request_id"] != "req-1" {
		t.Errorf("unexpected log fields: %v", fields)
	}
}

func TestGetTask(t *testing.T) {
	svc := NewService(memory.NewTaskRepository())
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, CreateTaskRequest{Title: "find me", Description: strPtr("here")})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	got, ok, err := svc.GetTask(ctx, created.ID)
	if err != nil || !ok {
		t.Fatalf("GetTask() = %v, %v", ok, err)
	}
	if got.ID != created.ID || got.Title != "find me" || *got.Description != "here" {
		t.Errorf("GetTask() = %+v, want %+v", got, created)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created.CreatedAt)
	}

	_, ok, err = svc.GetTask(ctx, uuid.NewString())
	if err != nil {
		t.Fatalf("GetTask() unknown id error = %v", err)
	}
	if ok {
		t.Error("GetTask() found a task that was never created")
	}
}

func TestListTasks(t *testing.T) {
	svc := NewService(memory.NewTaskRepository())
	ctx := context.Background()

	empty, err := svc.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("ListTasks() on empty store = %v, want empty non-nil slice", empty)
	}

	for _, title := range []string{"first", "second", "third"} {
		if _, err := svc.CreateTask(ctx, CreateTaskRequest{Title: title}); err != nil {
			t.Fatalf("CreateTask(%q) error = %v", title, err)
		}
	}

	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("ListTasks() returned %d tasks, want 3", len(tasks))
	}
	for i := 1; i < len(tasks); i++ {
		if tasks[i-1].CreatedAt.Before(tasks[i].CreatedAt) {
			t.Errorf("tasks not ordered newest first at index %d", i)
		}
	}
}

func TestCompleteTask(t *testing.T) {
	logs := observeLogs(t)
	svc := NewService(memory.NewTaskRepository())
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, CreateTaskRequest{Title: "finish"})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		ok, err := svc.CompleteTask(ctx, created.ID)
		if err != nil || !ok {
			t.Fatalf("CompleteTask() call %d = %v, %v", i+1, ok, err)
		}
	}

	got, _, _ := svc.GetTask(ctx, created.ID)
	if !got.IsCompleted {
		t.Error("task should be completed")
	}
	if n := logs.FilterMessage("Task completed").Len(); n != 2 {
		t.Errorf("expected 2 completion log lines, got %d", n)
	}
}

func TestCompleteUnknownTask(t *testing.T) {
	logs := observeLogs(t)
	svc := NewService(memory.NewTaskRepository())

	id := uuid.NewString()
	ok, err := svc.CompleteTask(context.Background(), id)
	if err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}
	if ok {
		t.Fatal("CompleteTask() = true for unknown id")
	}

	entries := logs.FilterMessage("Attempted to complete non-existent task").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("expected warn level, got %v", entries[0].Level)
	}
}

func TestStoreFaultsPropagate(t *testing.T) {
	fault := errors.New("connection refused")
	svc := NewService(&failingRepository{err: fault})
	ctx := context.Background()

	if _, err := svc.ListTasks(ctx); !errors.Is(err, fault) {
		t.Errorf("ListTasks() error = %v, want %v", err, fault)
	}
	if _, _, err := svc.GetTask(ctx, uuid.NewString()); !errors.Is(err, fault) {
		t.Errorf("GetTask() error = %v, want %v", err, fault)
	}
	if _, err := svc.CreateTask(ctx, CreateTaskRequest{Title: "x"}); !errors.Is(err, fault) {
		t.Errorf("CreateTask() error = %v, want %v", err, fault)
	}
	if _, err := svc.CompleteTask(ctx, uuid.NewString()); !errors.Is(err, fault) {
		t.Errorf("CompleteTask() error = %v, want %v", err, fault)
	}
}

func TestConcurrentCreateAndComplete(t *testing.T) {
	repo := memory.NewTaskRepository()
	svc := NewService(repo)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := svc.CreateTask(ctx, CreateTaskRequest{Title: "parallel"})
			if err != nil {
				errs <- err
				return
			}
			if _, err := svc.CompleteTask(ctx, created.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent call failed: %v", err)
	}
	tasks, _ := svc.ListTasks(ctx)
	if len(tasks) != workers {
		t.Fatalf("expected %d tasks, got %d", workers, len(tasks))
	}
	for _, tk := range tasks {
		if !tk.IsCompleted {
			t.Errorf("task %s not completed", tk.ID)
		}
	}
}
