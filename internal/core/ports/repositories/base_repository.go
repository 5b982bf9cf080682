package repositories

import (
	"context"
)

// TransactionManager runs work inside a database transaction.
//
// The transaction travels in the context handed to fn: repository calls made with
// that context join it. Calling WithinTx again with such a context opens a
// savepoint, so a failing nested unit is rolled back alone while the outer
// transaction survives.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
