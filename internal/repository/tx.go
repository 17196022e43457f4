package repository

import "context"

// TransactionManager runs a function inside one atomic unit of work.
// The transaction handle travels in the context so that repository
// calls made within fn join the same transaction; if fn returns an
// error the whole unit is rolled back, otherwise it is committed.
//
// Atomic batch execution is the only caller; single-entity mutations
// rely on each repository call's own write being atomic.
type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
