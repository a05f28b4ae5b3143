// Package task holds the task use cases exposed to the HTTP layer.
package task

import (
	"context"

	domain "taskflow/domain/task"
	"taskflow/pkg/logger"

	"go.uber.org/zap"
)

type Service struct {
	repo domain.Repository
}

func NewService(repo domain.Repository) *Service {
	return &Service{repo: repo}
}

// ListTasks returns every task, newest first.
func (s *Service) ListTasks(ctx context.Context) ([]*TaskResponse, error) {
	tasks, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(tasks), nil
}

// GetTask reports false when no task has the id.
func (s *Service) GetTask(ctx context.Context, id string) (*TaskResponse, bool, error) {
	t, ok, err := s.repo.FindByID(ctx, id)
	if err != nil || !ok {
		return nil, false, err
	}
	return toResponse(t), true, nil
}

// CreateTask validates the request through the entity constructor before
// storing it, so rules hold even when the caller skipped request binding.
func (s *Service) CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskResponse, error) {
	t, err := domain.NewTask(req.Title, req.Description)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, t); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Task created",
		zap.String("task_id", t.ID()),
		zap.String("title", t.Title()),
	)
	return toResponse(t), nil
}

// CompleteTask marks the task done. Completing a finished task succeeds again.
func (s *Service) CompleteTask(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.ApplyCompletion(ctx, id)
	if err != nil {
		return false, err
	}

	log := logger.FromContext(ctx)
	if !ok {
		log.Warn("Attempted to complete non-existent task", zap.String("task_id", id))
		return false, nil
	}
	log.Info("Task completed", zap.String("task_id", id))
	return true, nil
}
