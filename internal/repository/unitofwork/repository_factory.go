package unitofwork

import "context"

// RepositoryFactory hands out fresh units of work so services never share
// transaction state.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
