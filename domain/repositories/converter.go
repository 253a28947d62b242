package repositories

import (
	"context"

	"github.com/voicelab/voiceclone/domain/entities"
)

// StreamFrame is one element of the model runner's streaming response.
// A frame carries an encoded audio chunk, a full-audio payload, or both;
// the last full-audio payload of a stream is the final conversion result.
// Err is set on the terminating frame when the stream failed mid-flight.
type StreamFrame struct {
	Chunk []byte
	Audio *entities.Audio
	Err   error
}

// VoiceConverter is the contract with the external Seed-VC model wrapper.
type VoiceConverter interface {
	// ConvertStream starts a conversion and emits frames until the
	// underlying stream ends or ctx is cancelled. The returned channel
	// is closed by the implementation.
	ConvertStream(ctx context.Context, params entities.ConversionParams) (<-chan StreamFrame, error)

	// Convert runs a conversion to completion and returns the final
	// full-audio payload, discarding intermediate chunks. Returns
	// entities.ErrNoOutput when the stream ends without a payload.
	Convert(ctx context.Context, params entities.ConversionParams) (*entities.Audio, error)
}
