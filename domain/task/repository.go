package task

import "context"

// Repository owns the canonical task collection.
//
// Absence is reported through the bool results, never as an error; errors
// mean the store itself failed. Implementations must honour ctx cancellation.
type Repository interface {
	// ListAll returns every task, newest first, as a snapshot the caller may keep.
	ListAll(ctx context.Context) ([]*Task, error)

	// FindByID returns the task with id, or false if there is none.
	FindByID(ctx context.Context, id string) (*Task, bool, error)

	// Insert stores a task built by NewTask. The id is already assigned.
	Insert(ctx context.Context, t *Task) error

	// ApplyCompletion loads the task, marks it complete and persists the change.
	// It returns false, mutating nothing, when no task has that id.
	ApplyCompletion(ctx context.Context, id string) (bool, error)
}
