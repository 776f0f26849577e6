package stt

import "context"

// ITranscriber converts one recorded utterance into text.
type ITranscriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}
