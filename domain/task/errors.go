package task

import (
	"fmt"

	"taskflow/domain/shared"
)

const entityName = "task"

var (
	ErrTitleEmpty         = fmt.Errorf("%w: title is required", shared.ErrInvalidInput)
	ErrTitleTooLong       = fmt.Errorf("%w: title is too long", shared.ErrInvalidInput)
	ErrDescriptionTooLong = fmt.Errorf("%w: description is too long", shared.ErrInvalidInput)
)

func newTitleEmptyError() error {
	return shared.NewValidationError(entityName, "title", ErrTitleEmpty, "title is required")
}

func newTitleTooLongError(length int) error {
	return shared.NewValidationError(entityName, "title", ErrTitleTooLong,
		fmt.Sprintf("title must be at most %d characters, got %d", MaxTitleLength, length))
}

func newDescriptionTooLongError(length int) error {
	return shared.NewValidationError(entityName, "description", ErrDescriptionTooLong,
		fmt.Sprintf("description must be at most %d characters, got %d", MaxDescriptionLength, length))
}

func NewDuplicateIDError(id string) error {
	return shared.NewConflictError(entityName, "task already exists: "+id)
}
