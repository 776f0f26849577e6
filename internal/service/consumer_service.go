package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"

	"news-chatter-be/internal/entity"
	"news-chatter-be/internal/pkg/logger"
	"news-chatter-be/internal/repository/unitofwork"
)

// ConsumerService drains the turn topic and writes each record to the
// history table inside one transaction per message.
type ConsumerService struct {
	subscriber message.Subscriber
	uow        unitofwork.IUnitOfWork
	topic      string
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	uow unitofwork.IUnitOfWork,
	topic string,
	log logger.ILogger,
) *ConsumerService {
	return &ConsumerService{
		subscriber: subscriber,
		uow:        uow,
		topic:      topic,
		logger:     log,
	}
}

// Run blocks consuming until ctx is cancelled. Persistence failures are
// logged and the message is dropped; a voice turn is not worth a retry storm.
func (s *ConsumerService) Run(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topic)
	if err != nil {
		return err
	}

	for msg := range messages {
		s.handle(ctx, msg)
		msg.Ack()
	}
	return nil
}

func (s *ConsumerService) handle(ctx context.Context, msg *message.Message) {
	var record entity.TurnRecord
	if err := json.Unmarshal(msg.Payload, &record); err != nil {
		s.logger.Error("consumer", "discarding malformed turn message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	err := s.uow.Do(ctx, func(factory unitofwork.IRepositoryFactory) error {
		return factory.HistoryRepository().Create(ctx, &record)
	})
	if err != nil {
		s.logger.Error("consumer", "failed to persist turn", map[string]interface{}{
			"turn_id": record.Id.String(),
			"error":   err.Error(),
		})
		return
	}

	s.logger.Debug("consumer", "turn persisted", map[string]interface{}{
		"turn_id": record.Id.String(),
	})
}
