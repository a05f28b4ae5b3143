package task

import "time"

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,notblank,trimmax=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// TaskResponse is the only shape of a task that leaves the service.
type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}
