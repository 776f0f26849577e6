package unitofwork

import (
	"context"

	"news-chatter-be/internal/repository/contract"
)

// IRepositoryFactory hands out repositories bound to one transaction.
type IRepositoryFactory interface {
	UserRepository() contract.IUserRepository
	HistoryRepository() contract.IHistoryRepository
}

// IUnitOfWork runs fn inside a single database transaction. Any error from fn
// rolls the whole transaction back.
type IUnitOfWork interface {
	Do(ctx context.Context, fn func(factory IRepositoryFactory) error) error
}
