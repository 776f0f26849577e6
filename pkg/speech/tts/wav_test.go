package tts

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPCM(t *testing.T) {
	pcm := make([]byte, 1000)
	wav := WrapPCM(pcm, SampleRate, NumChannels, BitsPerSample)

	require.Len(t, wav, 44+len(pcm))

	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, "data", string(wav[36:40]))

	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[20:22]))
	assert.Equal(t, uint16(NumChannels), binary.LittleEndian.Uint16(wav[22:24]))
	assert.Equal(t, uint32(SampleRate), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(SampleRate*NumChannels*BitsPerSample/8), binary.LittleEndian.Uint32(wav[28:32]))
	assert.Equal(t, uint16(NumChannels*BitsPerSample/8), binary.LittleEndian.Uint16(wav[32:34]))
	assert.Equal(t, uint16(BitsPerSample), binary.LittleEndian.Uint16(wav[34:36]))
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
}

func TestWrapPCM_EmptyPayload(t *testing.T) {
	wav := WrapPCM(nil, SampleRate, NumChannels, BitsPerSample)

	require.Len(t, wav, 44)
	assert.Equal(t, uint32(36), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(wav[40:44]))
}
