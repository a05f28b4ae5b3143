package relational

import (
	"context"
	"errors"

	"taskflow/domain/shared"
	"taskflow/domain/task"
	"taskflow/infrastructure/persistence"
	"taskflow/infrastructure/persistence/relational/po"
	"taskflow/infrastructure/persistence/retry"

	"gorm.io/gorm"
)

type TaskRepository struct {
	db          *gorm.DB
	uow         shared.UnitOfWork
	retryConfig retry.Config
}

func NewTaskRepository(db *gorm.DB, retryConfig retry.Config) *TaskRepository {
	return &TaskRepository{
		db:          db,
		uow:         NewUnitOfWork(db, retryConfig),
		retryConfig: retryConfig,
	}
}

func (r *TaskRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *TaskRepository) ListAll(ctx context.Context) ([]*task.Task, error) {
	var rows []po.TaskPO
	if err := r.getDB(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	tasks := make([]*task.Task, len(rows))
	for i := range rows {
		tasks[i] = rows[i].ToDomain()
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*task.Task, bool, error) {
	row, err := r.findRow(r.getDB(ctx), id)
	if err != nil || row == nil {
		return nil, false, err
	}
	return row.ToDomain(), true, nil
}

func (r *TaskRepository) findRow(db *gorm.DB, id string) (*po.TaskPO, error) {
	var row po.TaskPO
	if err := db.Take(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *TaskRepository) Insert(ctx context.Context, t *task.Task) error {
	row := po.FromTaskDomain(t)
	return retry.ExecuteWithRetry(ctx, r.retryConfig, func(ctx context.Context) error {
		if err := r.getDB(ctx).Create(row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return task.NewDuplicateIDError(t.ID())
			}
			return err
		}
		return nil
	})
}

func (r *TaskRepository) ApplyCompletion(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.uow.Execute(ctx, func(ctx context.Context) error {
		found = false
		db := r.getDB(ctx)

		row, err := r.findRow(db, id)
		if err != nil || row == nil {
			return err
		}
		found = true

		t := row.ToDomain()
		if row.IsCompleted {
			return nil
		}
		t.MarkComplete()

		return db.Model(&po.TaskPO{}).
			Where("id = ?", t.ID()).
			Update("is_completed", t.IsCompleted()).Error
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

var _ task.Repository = (*TaskRepository)(nil)
