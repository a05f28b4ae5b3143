package task

import domain "taskflow/domain/task"

func toResponse(t *domain.Task) *TaskResponse {
	return &TaskResponse{
		ID:          t.ID(),
		Title:       t.Title(),
		Description: t.Description(),
		IsCompleted: t.IsCompleted(),
		CreatedAt:   t.CreatedAt().UTC(),
	}
}

func toResponses(tasks []*domain.Task) []*TaskResponse {
	out := make([]*TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toResponse(t))
	}
	return out
}
