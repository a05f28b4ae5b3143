package po

import (
	"time"

	"taskflow/domain/task"
)

// TaskPO is the row layout of the tasks table.
type TaskPO struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Title       string    `gorm:"size:200;not null"`
	Description *string   `gorm:"size:1000"`
	IsCompleted bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;precision:6;index:idx_tasks_created_at"`
}

func (TaskPO) TableName() string {
	return "tasks"
}

func FromTaskDomain(t *task.Task) *TaskPO {
	return &TaskPO{
		ID:          t.ID(),
		Title:       t.Title(),
		Description: t.Description(),
		IsCompleted: t.IsCompleted(),
		CreatedAt:   t.CreatedAt().UTC(),
	}
}

func (p *TaskPO) ToDomain() *task.Task {
	return task.RebuildFromDTO(task.ReconstructionDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		IsCompleted: p.IsCompleted,
		CreatedAt:   p.CreatedAt,
	})
}
