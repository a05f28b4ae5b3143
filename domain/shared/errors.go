/*
Package shared holds error types common to every domain package.

Sentinels are matched with errors.Is. DomainError records the call stack at
construction and formats it only when Stack is called, so the API layer can
log where a failure originated.
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	// ErrNotFound the requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict the write collides with existing state
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput an invariant rejected the input
	ErrInvalidInput = errors.New("invalid input")
)

// DomainError is a structured error carrying business context and the stack
// at the point it was created.
type DomainError struct {
	// Err is the cause matched by errors.Is; entity-specific causes wrap one of the sentinels above
	Err error

	// Entity names the aggregate involved, e.g. "task"
	Entity string

	// Message is safe to show to clients
	Message string

	// Field is set for validation failures
	Field string

	stack []uintptr
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Stack formats the captured frames.
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// CaptureStack records the current call stack.
// skip: frames to drop (3 skips Callers, CaptureStack and the constructor)
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack renders at most 10 non-runtime frames as "file:line function".
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) >= 10 {
			break
		}
	}
	return result
}

func NewNotFoundError(entity, id string) error {
	return &DomainError{
		Err:     ErrNotFound,
		Entity:  entity,
		Message: entity + " not found: " + id,
		stack:   CaptureStack(3),
	}
}

func NewConflictError(entity, message string) error {
	return &DomainError{
		Err:     ErrConflict,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewValidationError builds an invalid-input error. cause should wrap
// ErrInvalidInput; nil means ErrInvalidInput itself.
func NewValidationError(entity, field string, cause error, reason string) error {
	if cause == nil {
		cause = ErrInvalidInput
	}
	return &DomainError{
		Err:     cause,
		Entity:  entity,
		Field:   field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// Stacker is implemented by errors that can report where they were created.
type Stacker interface {
	Stack() []string
}

var _ Stacker = (*DomainError)(nil)
