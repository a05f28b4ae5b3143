package errors

import (
	"context"
	"errors"
	"fmt"

	"taskflow/domain/shared"
)

// ErrorCode is the machine-readable code sent to clients.
type ErrorCode string

const (
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"
	CodeUnavailable    ErrorCode = "SERVICE_UNAVAILABLE"

	CodeTaskNotFound ErrorCode = "TASK_NOT_FOUND"
	CodeInvalidTask  ErrorCode = "INVALID_TASK"
)

// AppError carries a code, a client-safe message and the underlying cause.
type AppError struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func TooManyRequests(message string) *AppError {
	return New(CodeTooManyRequest, message)
}

// Validation builds a request validation error; fields maps field name to failed rule.
func Validation(message string, fields map[string]string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Fields: fields}
}

func TaskNotFound(id string) *AppError {
	return New(CodeTaskNotFound, "task not found: "+id)
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// FromDomainError maps any error onto an AppError using the domain sentinels.
// Anything unrecognised becomes CodeInternal.
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var domainErr *shared.DomainError
	message := err.Error()
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		appErr = Wrap(err, CodeInvalidTask, message)
		if domainErr != nil && domainErr.Field != "" {
			appErr.Fields = map[string]string{domainErr.Field: message}
		}
		return appErr
	case errors.Is(err, shared.ErrNotFound):
		return Wrap(err, CodeNotFound, message)
	case errors.Is(err, shared.ErrConflict):
		return Wrap(err, CodeConflict, message)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return Wrap(err, CodeUnavailable, "request was cancelled before completion")
	default:
		return Wrap(err, CodeInternal, "internal server error")
	}
}
