package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/voicelab/voiceclone/domain/entities"
	"github.com/voicelab/voiceclone/domain/repositories"
	"github.com/voicelab/voiceclone/internal/audio"
)

// CloneService orchestrates a single voice conversion: it validates inputs,
// delegates inference to the model runner, applies the output amplitude
// policy and writes the result as a 16-bit PCM WAV file.
type CloneService struct {
	converter repositories.VoiceConverter
	logger    *zap.Logger
}

// NewCloneService creates a new clone service.
func NewCloneService(converter repositories.VoiceConverter, logger *zap.Logger) *CloneService {
	return &CloneService{
		converter: converter,
		logger:    logger,
	}
}

// CloneRequest describes one conversion.
type CloneRequest struct {
	Params     entities.ConversionParams
	OutputPath string

	// SampleRate overrides the output rate. Zero derives it from the F0
	// conditioning flag: 44100 Hz for singing, 22050 Hz for speech.
	SampleRate int
}

// Clone converts the source audio into the target voice and writes the
// result to req.OutputPath. Returns the output path on success.
func (s *CloneService) Clone(ctx context.Context, req CloneRequest) (string, error) {
	if _, err := os.Stat(req.Params.SourcePath); err != nil {
		return "", fmt.Errorf("%w: source audio %s", entities.ErrNotFound, req.Params.SourcePath)
	}
	if _, err := os.Stat(req.Params.TargetPath); err != nil {
		return "", fmt.Errorf("%w: target audio %s", entities.ErrNotFound, req.Params.TargetPath)
	}

	if dir := filepath.Dir(req.OutputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory; %w", err)
		}
	}

	sampleRate := req.SampleRate
	if sampleRate == 0 {
		sampleRate = req.Params.DefaultSampleRate()
	}

	s.logger.Info("Converting voice",
		zap.String("source", req.Params.SourcePath),
		zap.String("target", req.Params.TargetPath),
		zap.String("output", req.OutputPath),
		zap.Int("diffusionSteps", req.Params.DiffusionSteps),
		zap.Bool("f0Condition", req.Params.F0Condition),
		zap.Int("pitchShift", req.Params.PitchShift),
		zap.Int("sampleRate", sampleRate))

	start := time.Now()
	result, err := s.converter.Convert(ctx, req.Params)
	if err != nil {
		return "", err
	}

	// The payload stays in emission order; multi-channel buffers are
	// treated as an already-interleaved mono stream.
	if result.Channels > 1 {
		s.logger.Debug("Flattening multi-channel output to mono",
			zap.Int("channels", result.Channels))
	}

	samples := audio.Normalize(result.Samples)

	if err := audio.WriteWAV(req.OutputPath, samples, sampleRate); err != nil {
		return "", fmt.Errorf("%w: samples=%d channels=%d dtype=float32 rate=%d: %v",
			entities.ErrOutputWrite, len(samples), result.Channels, sampleRate, err)
	}

	s.logger.Info("Voice cloning complete",
		zap.String("output", req.OutputPath),
		zap.Duration("took", time.Since(start)),
		zap.Float64("durationSeconds", float64(len(samples))/float64(sampleRate)))

	return req.OutputPath, nil
}
