package implementation

import (
	"context"

	"gorm.io/gorm"

	"news-chatter-be/internal/entity"
	"news-chatter-be/internal/mapper"
	"news-chatter-be/internal/model"
	"news-chatter-be/internal/repository/contract"
)

type HistoryRepository struct {
	db     *gorm.DB
	mapper *mapper.HistoryMapper
}

func NewHistoryRepository(db *gorm.DB, historyMapper *mapper.HistoryMapper) contract.IHistoryRepository {
	return &HistoryRepository{
		db:     db,
		mapper: historyMapper,
	}
}

func (r *HistoryRepository) Create(ctx context.Context, record *entity.TurnRecord) error {
	row, err := r.mapper.ToModel(record)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *HistoryRepository) ListByUser(ctx context.Context, userId string, limit int) ([]*entity.TurnRecord, error) {
	var rows []model.AudioHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]*entity.TurnRecord, 0, len(rows))
	for i := range rows {
		records = append(records, r.mapper.ToEntity(&rows[i]))
	}
	return records, nil
}
