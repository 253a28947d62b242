package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"go.uber.org/zap"

	"github.com/voicelab/voiceclone/adapters/seedvc"
	"github.com/voicelab/voiceclone/domain/entities"
)

func writeInputFiles(t *testing.T) (source, target string) {
	t.Helper()
	dir := t.TempDir()
	source = filepath.Join(dir, "source.wav")
	target = filepath.Join(dir, "target.wav")
	for _, path := range []string{source, target} {
		if err := os.WriteFile(path, []byte("fake audio"), 0644); err != nil {
			t.Fatalf("Failed to write input file: %v", err)
		}
	}
	return source, target
}

func decodeOutput(t *testing.T, path string) (peak float64, sampleRate int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open output: %v", err)
	}
	defer f.Close()

	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	for _, s := range buf.Data {
		v := float64(s) / 32767
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak, buf.Format.SampleRate
}

func TestCloneMissingSourceFailsBeforeConversion(t *testing.T) {
	mock := seedvc.NewMockConverter(zap.NewNop())
	service := NewCloneService(mock, zap.NewNop())

	_, target := writeInputFiles(t)
	params := entities.DefaultParams()
	params.SourcePath = filepath.Join(t.TempDir(), "does-not-exist.wav")
	params.TargetPath = target

	_, err := service.Clone(context.Background(), CloneRequest{
		Params:     params,
		OutputPath: filepath.Join(t.TempDir(), "out.wav"),
	})

	if !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if mock.CallCount() != 0 {
		t.Errorf("Expected no converter calls, got %d", mock.CallCount())
	}
}

func TestCloneMissingTargetFailsBeforeConversion(t *testing.T) {
	mock := seedvc.NewMockConverter(zap.NewNop())
	service := NewCloneService(mock, zap.NewNop())

	source, _ := writeInputFiles(t)
	params := entities.DefaultParams()
	params.SourcePath = source
	params.TargetPath = filepath.Join(t.TempDir(), "does-not-exist.wav")

	_, err := service.Clone(context.Background(), CloneRequest{
		Params:     params,
		OutputPath: filepath.Join(t.TempDir(), "out.wav"),
	})

	if !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if mock.CallCount() != 0 {
		t.Errorf("Expected no converter calls, got %d", mock.CallCount())
	}
}

func TestCloneDefaultSampleRates(t *testing.T) {
	cases := []struct {
		name        string
		f0Condition bool
		want        int
	}{
		{"speech", false, 22050},
		{"singing", true, 44100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := seedvc.NewMockConverter(zap.NewNop())
			service := NewCloneService(mock, zap.NewNop())

			source, target := writeInputFiles(t)
			params := entities.DefaultParams()
			params.SourcePath = source
			params.TargetPath = target
			params.F0Condition = tc.f0Condition

			outputPath := filepath.Join(t.TempDir(), "out.wav")
			if _, err := service.Clone(context.Background(), CloneRequest{
				Params:     params,
				OutputPath: outputPath,
			}); err != nil {
				t.Fatalf("Clone failed: %v", err)
			}

			_, rate := decodeOutput(t, outputPath)
			if rate != tc.want {
				t.Errorf("Expected sample rate %d, got %d", tc.want, rate)
			}
		})
	}
}

func TestCloneSampleRateOverrideWins(t *testing.T) {
	mock := seedvc.NewMockConverter(zap.NewNop())
	service := NewCloneService(mock, zap.NewNop())

	source, target := writeInputFiles(t)
	params := entities.DefaultParams()
	params.SourcePath = source
	params.TargetPath = target
	params.F0Condition = true

	outputPath := filepath.Join(t.TempDir(), "out.wav")
	if _, err := service.Clone(context.Background(), CloneRequest{
		Params:     params,
		OutputPath: outputPath,
		SampleRate: 16000,
	}); err != nil {
		t.Fatalf("Clone failed: %v", err)
	}

	_, rate := decodeOutput(t, outputPath)
	if rate != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", rate)
	}
}

func TestClonePeakNeverExceedsCeiling(t *testing.T) {
	mock := seedvc.NewMockConverter(zap.NewNop())
	mock.FullAudio = &entities.Audio{
		SampleRate: 22050,
		Channels:   1,
		Samples:    []float32{2.5, -1.8, 0.4},
	}
	service := NewCloneService(mock, zap.NewNop())

	source, target := writeInputFiles(t)
	params := entities.DefaultParams()
	params.SourcePath = source
	params.TargetPath = target

	outputPath := filepath.Join(t.TempDir(), "out.wav")
	if _, err := service.Clone(context.Background(), CloneRequest{
		Params:     params,
		OutputPath: outputPath,
	}); err != nil {
		t.Fatalf("Clone failed: %v", err)
	}

	peak, _ := decodeOutput(t, outputPath)
	if peak > 0.9501 {
		t.Errorf("Expected peak <= 0.95, got %f", peak)
	}
}

func TestCloneQuietAudioIsBoosted(t *testing.T) {
	mock := seedvc.NewMockConverter(zap.NewNop())
	mock.FullAudio = &entities.Audio{
		SampleRate: 22050,
		Channels:   1,
		Samples:    []float32{0.05, -0.03, 0.01},
	}
	service := NewCloneService(mock, zap.NewNop())

	source, target := writeInputFiles(t)
	params := entities.DefaultParams()
	params.SourcePath = source
	params.TargetPath = target

	outputPath := filepath.Join(t.TempDir(), "out.wav")
	if _, err := service.Clone(context.Background(), CloneRequest{
		Params:     params,
		OutputPath: outputPath,
	}); err != nil {
		t.Fatalf("Clone failed: %v", err)
	}

	peak, _ := decodeOutput(t, outputPath)
	if peak < 0.499 || peak > 0.501 {
		t.Errorf("Expected quiet audio boosted to 0.5 peak, got %f", peak)
	}
}

func TestCloneNoOutputFromModel(t *testing.T) {
	mock := seedvc.NewMockConverter(zap.NewNop())
	mock.NoAudio = true
	service := NewCloneService(mock, zap.NewNop())

	source, target := writeInputFiles(t)
	params := entities.DefaultParams()
	params.SourcePath = source
	params.TargetPath = target

	_, err := service.Clone(context.Background(), CloneRequest{
		Params:     params,
		OutputPath: filepath.Join(t.TempDir(), "out.wav"),
	})

	if !errors.Is(err, entities.ErrNoOutput) {
		t.Errorf("Expected ErrNoOutput, got %v", err)
	}
}

func TestCloneCreatesMissingOutputDirectories(t *testing.T) {
	mock := seedvc.NewMockConverter(zap.NewNop())
	service := NewCloneService(mock, zap.NewNop())

	source, target := writeInputFiles(t)
	params := entities.DefaultParams()
	params.SourcePath = source
	params.TargetPath = target

	outputPath := filepath.Join(t.TempDir(), "nested", "dirs", "out.wav")
	got, err := service.Clone(context.Background(), CloneRequest{
		Params:     params,
		OutputPath: outputPath,
	})
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}
	if got != outputPath {
		t.Errorf("Expected output path %s, got %s", outputPath, got)
	}
	if _, err := os.Stat(outputPath); err != nil {
		t.Errorf("Expected output file to exist: %v", err)
	}
}

func TestCloneWriteFailureIsWrappedWithDiagnostics(t *testing.T) {
	mock := seedvc.NewMockConverter(zap.NewNop())
	service := NewCloneService(mock, zap.NewNop())

	source, target := writeInputFiles(t)
	params := entities.DefaultParams()
	params.SourcePath = source
	params.TargetPath = target

	// Output path is a directory, so the WAV write fails.
	outputDir := t.TempDir()
	_, err := service.Clone(context.Background(), CloneRequest{
		Params:     params,
		OutputPath: outputDir,
	})

	if !errors.Is(err, entities.ErrOutputWrite) {
		t.Errorf("Expected ErrOutputWrite, got %v", err)
	}
}
