package relational

import (
	"context"

	"taskflow/domain/shared"
	"taskflow/infrastructure/persistence"
	"taskflow/infrastructure/persistence/retry"

	"gorm.io/gorm"
)

// UnitOfWork runs a function inside one database transaction and retries the
// whole transaction on transient faults. It holds no per-call state, so one
// instance serves concurrent requests.
type UnitOfWork struct {
	db          *gorm.DB
	retryConfig retry.Config
}

func NewUnitOfWork(db *gorm.DB, retryConfig retry.Config) *UnitOfWork {
	return &UnitOfWork{db: db, retryConfig: retryConfig}
}

// Execute commits when fn returns nil and rolls back otherwise. Repositories
// called from fn pick the transaction up from ctx. A call made while ctx
// already carries a transaction joins it instead of opening a new one.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if persistence.TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	return retry.ExecuteWithRetry(ctx, u.retryConfig, func(ctx context.Context) error {
		return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(persistence.ContextWithTx(ctx, tx))
		})
	})
}

var _ shared.UnitOfWork = (*UnitOfWork)(nil)
