package dto

// Client -> server control frames (text). Audio usually arrives as binary
// frames; the "audio" control type carries it base64-encoded for clients that
// cannot send binary. "complete" marks the end of the utterance and starts
// the turn.
const (
	ControlAudio    = "audio"
	ControlComplete = "complete"
	ControlReset    = "reset"
)

// Server -> client status values, emitted in pipeline order.
const (
	StatusChunkReceived     = "chunk_received"
	StatusTranscribing      = "transcribing"
	StatusTranscribed       = "transcribed"
	StatusEnhancingQuery    = "enhancing_query"
	StatusRetrieving        = "retrieving"
	StatusGenerating        = "generating"
	StatusPodcastGenerated  = "podcast_generated"
	StatusConvertingToAudio = "converting_to_audio"
	StatusStreamingAudio    = "streaming_audio"
	StatusComplete          = "complete"
	StatusReset             = "reset"
)

// ControlMessage is a text frame from the client. Data is only set for the
// "audio" type.
type ControlMessage struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
}

// StatusMessage is a server progress frame. Text carries the transcription or
// the generated script where the status calls for it; Size acknowledges a
// received audio chunk.
type StatusMessage struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	Text   string `json:"text,omitempty"`
	Size   int    `json:"size,omitempty"`
}

func NewStatusMessage(status string) StatusMessage {
	return StatusMessage{Type: "status", Status: status}
}

// ErrorMessage aborts the turn; WarningMessage reports a degraded stage
// without aborting. Both ride a bare key so callers can branch on the field
// name alone.
type ErrorMessage struct {
	Error string `json:"error"`
}

func NewErrorMessage(message string) ErrorMessage {
	return ErrorMessage{Error: message}
}

type WarningMessage struct {
	Warning string `json:"warning"`
}

func NewWarningMessage(message string) WarningMessage {
	return WarningMessage{Warning: message}
}
