package shared

import "context"

// UnitOfWork runs fn atomically. Repositories called with the context handed
// to fn take part in the same transaction; fn returning an error rolls it back.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}
