// Package memory keeps tasks in process memory for the lifetime of the process.
package memory

import (
	"context"
	"slices"
	"sync"

	"taskflow/domain/task"
)

// TaskRepository is a mutex-guarded task collection. Tasks never leave the
// lock by reference: every read returns clones.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*task.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]*task.Task)}
}

func (r *TaskRepository) ListAll(ctx context.Context) ([]*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	result := make([]*task.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		result = append(result, t.Clone())
	}
	r.mu.RUnlock()

	slices.SortFunc(result, func(a, b *task.Task) int {
		return b.CreatedAt().Compare(a.CreatedAt())
	})
	return result, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*task.Task, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, false, nil
	}
	return t.Clone(), true, nil
}

func (r *TaskRepository) Insert(ctx context.Context, t *task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := t.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[stored.ID()]; exists {
		return task.NewDuplicateIDError(stored.ID())
	}
	r.tasks[stored.ID()] = stored
	return nil
}

func (r *TaskRepository) ApplyCompletion(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return false, nil
	}
	t.MarkComplete()
	return true, nil
}

// Len reports the number of stored tasks.
func (r *TaskRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

var _ task.Repository = (*TaskRepository)(nil)
