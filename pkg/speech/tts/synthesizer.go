package tts

import "context"

// ISynthesizer renders text to raw 16-bit mono PCM at SampleRate.
type ISynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

const (
	SampleRate    = 24000
	NumChannels   = 1
	BitsPerSample = 16
)
