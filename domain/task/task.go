/*
Package task is the task aggregate: the entity, its invariants and the
repository contract that stores implement.
*/
package task

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000

	// CreatedAtPrecision is the finest timestamp every store keeps.
	CreatedAtPrecision = time.Microsecond
)

// Task is a single to-do item.
//
// Fields are private; the only mutation after construction is MarkComplete.
type Task struct {
	id          string
	title       string
	description *string
	isCompleted bool
	createdAt   time.Time
}

// NewTask validates and builds a task with a fresh id and a UTC creation time.
// The title is trimmed; description is stored as given (nil when absent).
func NewTask(title string, description *string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, newTitleEmptyError()
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return nil, newTitleTooLongError(n)
	}
	if description != nil {
		if n := utf8.RuneCountInString(*description); n > MaxDescriptionLength {
			return nil, newDescriptionTooLongError(n)
		}
		d := *description
		description = &d
	}

	return &Task{
		id:          uuid.NewString(),
		title:       title,
		description: description,
		isCompleted: false,
		createdAt:   time.Now().UTC().Truncate(CreatedAtPrecision),
	}, nil
}

// MarkComplete is idempotent.
func (t *Task) MarkComplete() {
	if t.isCompleted {
		return
	}
	t.isCompleted = true
}

func (t *Task) ID() string           { return t.id }
func (t *Task) Title() string        { return t.title }
func (t *Task) IsCompleted() bool    { return t.isCompleted }
func (t *Task) CreatedAt() time.Time { return t.createdAt }

// Description returns a copy of the description, or nil.
func (t *Task) Description() *string {
	if t.description == nil {
		return nil
	}
	d := *t.description
	return &d
}

// Clone returns an independent copy.
func (t *Task) Clone() *Task {
	c := *t
	c.description = t.Description()
	return &c
}

// ReconstructionDTO carries persisted state back into a Task.
// Only repository implementations should use it.
type ReconstructionDTO struct {
	ID          string
	Title       string
	Description *string
	IsCompleted bool
	CreatedAt   time.Time
}

// RebuildFromDTO restores a Task from storage without re-running validation.
func RebuildFromDTO(dto ReconstructionDTO) *Task {
	t := &Task{
		id:          dto.ID,
		title:       dto.Title,
		isCompleted: dto.IsCompleted,
		createdAt:   dto.CreatedAt.UTC(),
	}
	if dto.Description != nil {
		d := *dto.Description
		t.description = &d
	}
	return t
}
