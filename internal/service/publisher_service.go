package service

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"news-chatter-be/internal/entity"
)

// IPublisherService queues completed turns for asynchronous persistence so
// the websocket pipeline never waits on the database.
type IPublisherService interface {
	RecordTurn(record *entity.TurnRecord) error
}

type PublisherService struct {
	publisher message.Publisher
	topic     string
}

func NewPublisherService(publisher message.Publisher, topic string) IPublisherService {
	return &PublisherService{
		publisher: publisher,
		topic:     topic,
	}
}

func (s *PublisherService) RecordTurn(record *entity.TurnRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return s.publisher.Publish(s.topic, msg)
}
