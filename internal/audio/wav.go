package audio

import (
	"fmt"
	"math"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const pcmBitDepth = 16

// WriteWAV writes mono float32 samples in [-1, 1] to path as a 16-bit PCM
// WAV file at the given sample rate. Samples outside the valid range are
// clamped rather than wrapped.
func WriteWAV(path string, samples []float32, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file; %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, pcmBitDepth, 1, 1)
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: pcmBitDepth,
	}
	for i, s := range samples {
		buf.Data[i] = sampleToPCM16(s)
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode wav data; %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize wav file; %w", err)
	}
	return f.Close()
}

func sampleToPCM16(s float32) int {
	v := int(math.Round(float64(s) * 32767))
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return v
}
