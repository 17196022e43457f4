package testutil

import "context"

// txStore is a mock store that can capture and restore its full state.
type txStore interface {
	snapshotState() interface{}
	restoreState(interface{})
}

// MockTransactionManager implements repository.TransactionManager over
// the in-memory mocks. It snapshots every registered store before
// running the function and restores those snapshots when the function
// returns an error, mirroring a database rollback.
type MockTransactionManager struct {
	stores []txStore
}

// NewMockTransactionManager creates a transaction manager covering the
// given mock repositories.
func NewMockTransactionManager(stores ...txStore) *MockTransactionManager {
	return &MockTransactionManager{stores: stores}
}

// RunInTransaction runs fn, rolling every registered store back to its
// prior state if fn fails.
func (m *MockTransactionManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshots := make([]interface{}, len(m.stores))
	for i, store := range m.stores {
		snapshots[i] = store.snapshotState()
	}
	if err := fn(ctx); err != nil {
		for i, store := range m.stores {
			store.restoreState(snapshots[i])
		}
		return err
	}
	return nil
}
