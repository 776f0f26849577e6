package unitofwork

import (
	"context"

	"gorm.io/gorm"

	"news-chatter-be/internal/mapper"
	"news-chatter-be/internal/repository/contract"
	"news-chatter-be/internal/repository/implementation"
)

type repositoryFactory struct {
	tx            *gorm.DB
	userMapper    *mapper.UserMapper
	historyMapper *mapper.HistoryMapper
}

func (f *repositoryFactory) UserRepository() contract.IUserRepository {
	return implementation.NewUserRepository(f.tx, f.userMapper)
}

func (f *repositoryFactory) HistoryRepository() contract.IHistoryRepository {
	return implementation.NewHistoryRepository(f.tx, f.historyMapper)
}

type UnitOfWork struct {
	db            *gorm.DB
	userMapper    *mapper.UserMapper
	historyMapper *mapper.HistoryMapper
}

func NewUnitOfWork(db *gorm.DB, userMapper *mapper.UserMapper, historyMapper *mapper.HistoryMapper) IUnitOfWork {
	return &UnitOfWork{
		db:            db,
		userMapper:    userMapper,
		historyMapper: historyMapper,
	}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(factory IRepositoryFactory) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repositoryFactory{
			tx:            tx,
			userMapper:    u.userMapper,
			historyMapper: u.historyMapper,
		})
	})
}
