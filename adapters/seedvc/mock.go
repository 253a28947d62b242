package seedvc

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/voicelab/voiceclone/domain/entities"
	"github.com/voicelab/voiceclone/domain/repositories"
)

// MockConverter is a placeholder VoiceConverter for tests and local
// development without a running model. It synthesizes a short sine tone
// unless FullAudio overrides the payload.
type MockConverter struct {
	logger *zap.Logger

	// FullAudio overrides the synthesized final payload when set.
	FullAudio *entities.Audio
	// Chunks are emitted as encoded-chunk frames before the final payload.
	Chunks [][]byte
	// NoAudio suppresses the final payload so the stream ends empty.
	NoAudio bool
	// ConvertErr terminates the stream with an error when set.
	ConvertErr error

	mu         sync.Mutex
	callCount  int
	lastParams entities.ConversionParams
}

// Ensure MockConverter implements the VoiceConverter interface
var _ repositories.VoiceConverter = (*MockConverter)(nil)

// NewMockConverter creates a mock voice converter.
func NewMockConverter(logger *zap.Logger) *MockConverter {
	return &MockConverter{logger: logger}
}

// CallCount reports how many conversions were started.
func (m *MockConverter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastParams returns the parameters of the most recent conversion.
func (m *MockConverter) LastParams() entities.ConversionParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastParams
}

// ConvertStream implements repositories.VoiceConverter
func (m *MockConverter) ConvertStream(ctx context.Context, params entities.ConversionParams) (<-chan repositories.StreamFrame, error) {
	m.mu.Lock()
	m.callCount++
	m.lastParams = params
	m.mu.Unlock()

	m.logger.Info("Mock voice conversion",
		zap.String("source", params.SourcePath),
		zap.String("target", params.TargetPath),
		zap.Bool("f0Condition", params.F0Condition))

	frames := make(chan repositories.StreamFrame, len(m.Chunks)+2)
	go func() {
		defer close(frames)

		for _, chunk := range m.Chunks {
			select {
			case frames <- repositories.StreamFrame{Chunk: chunk}:
			case <-ctx.Done():
				return
			}
		}

		if m.ConvertErr != nil {
			frames <- repositories.StreamFrame{Err: m.ConvertErr}
			return
		}
		if m.NoAudio {
			return
		}

		audio := m.FullAudio
		if audio == nil {
			audio = synthesizeTone(params.DefaultSampleRate())
		}
		select {
		case frames <- repositories.StreamFrame{Audio: audio}:
		case <-ctx.Done():
		}
	}()
	return frames, nil
}

// Convert implements repositories.VoiceConverter
func (m *MockConverter) Convert(ctx context.Context, params entities.ConversionParams) (*entities.Audio, error) {
	frames, err := m.ConvertStream(ctx, params)
	if err != nil {
		return nil, err
	}

	var result *entities.Audio
	for frame := range frames {
		if frame.Err != nil {
			return nil, frame.Err
		}
		if frame.Audio != nil {
			result = frame.Audio
		}
	}
	if result == nil {
		return nil, entities.ErrNoOutput
	}
	return result, nil
}

// synthesizeTone generates 100ms of a 440 Hz tone at 0.3 peak.
func synthesizeTone(sampleRate int) *entities.Audio {
	n := sampleRate / 10
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = 0.3 * float32(math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
	}
	return &entities.Audio{SampleRate: sampleRate, Channels: 1, Samples: samples}
}
