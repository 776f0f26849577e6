package events

import (
	"context"
	"time"
)

// Event is anything publishable to the message bus.
type Event interface {
	Subject() string
}

// IPublisher pushes events onto the bus. Implementations must be safe for
// concurrent use.
type IPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// TurnCompletedEvent is emitted after a voice turn finishes end to end.
type TurnCompletedEvent struct {
	TurnId       string    `json:"turn_id"`
	UserId       string    `json:"user_id"`
	Question     string    `json:"question"`
	PassageCount int       `json:"passage_count"`
	AudioBytes   int       `json:"audio_bytes"`
	DurationMs   int64     `json:"duration_ms"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (TurnCompletedEvent) Subject() string {
	return "chatter.turn_completed"
}

// TurnFailedEvent is emitted when a pipeline stage fails or times out.
type TurnFailedEvent struct {
	UserId     string    `json:"user_id"`
	Stage      string    `json:"stage"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (TurnFailedEvent) Subject() string {
	return "chatter.turn_failed"
}
