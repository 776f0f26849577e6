package contract

import (
	"context"

	"news-chatter-be/internal/entity"
)

type IHistoryRepository interface {
	Create(ctx context.Context, record *entity.TurnRecord) error
	ListByUser(ctx context.Context, userId string, limit int) ([]*entity.TurnRecord, error)
}
