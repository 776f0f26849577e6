package session

import (
	"bytes"
	"context"
	"errors"
	"sync"
)

// State is the per-connection lifecycle position.
type State int

const (
	StateIdle State = iota
	StateReceiving
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReceiving:
		return "receiving"
	case StateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

var (
	// ErrBusy means a turn is already in flight for this connection.
	ErrBusy = errors.New("a turn is already being processed")
	// ErrNoAudio means the complete frame arrived with an empty buffer.
	ErrNoAudio = errors.New("no audio buffered for this turn")
)

// Session tracks one websocket connection's audio buffer and turn state. All
// methods are safe to call from the read loop and the pipeline goroutine.
type Session struct {
	UserId string

	mu         sync.Mutex
	state      State
	buffer     bytes.Buffer
	cancelTurn context.CancelFunc
}

func New(userId string) *Session {
	return &Session{UserId: userId}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AppendChunk buffers one binary audio frame and returns the cumulative
// buffered size. Chunks are refused while a turn is being processed so a slow
// pipeline cannot interleave two utterances.
func (s *Session) AppendChunk(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateProcessing {
		return 0, ErrBusy
	}

	s.state = StateReceiving
	s.buffer.Write(data)
	return s.buffer.Len(), nil
}

// BeginProcessing latches the session into the processing state, hands the
// buffered audio to the caller, and remembers the turn's cancel func so Reset
// can abort it. The buffer is drained so the next turn starts clean.
func (s *Session) BeginProcessing(cancel context.CancelFunc) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateProcessing {
		return nil, ErrBusy
	}
	if s.buffer.Len() == 0 {
		return nil, ErrNoAudio
	}

	audio := make([]byte, s.buffer.Len())
	copy(audio, s.buffer.Bytes())
	s.buffer.Reset()

	s.state = StateProcessing
	s.cancelTurn = cancel
	return audio, nil
}

// FinishProcessing returns the session to idle after the pipeline ends,
// whether it completed or failed.
func (s *Session) FinishProcessing() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateProcessing {
		return
	}
	s.state = StateIdle
	s.cancelTurn = nil
}

// Reset drops buffered audio and cancels any in-flight turn.
func (s *Session) Reset() {
	s.mu.Lock()
	cancel := s.cancelTurn
	s.cancelTurn = nil
	s.buffer.Reset()
	s.state = StateIdle
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// BufferedBytes reports how much audio is waiting for the complete frame.
func (s *Session) BufferedBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.Len()
}
