// Command voiceclone converts a recording into a target voice from the
// command line, using the same facade the HTTP server exposes.
//
// Usage:
//
//	voiceclone run <source_path> <target_path> <output_path> [--f0] [--pitch_shift N]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/voicelab/voiceclone/adapters/seedvc"
	"github.com/voicelab/voiceclone/domain/entities"
	"github.com/voicelab/voiceclone/internal/config"
	"github.com/voicelab/voiceclone/usecase"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "run" {
		usage()
		os.Exit(1)
	}
	os.Exit(run(os.Args[2:]))
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: voiceclone run <source_path> <target_path> <output_path> [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "  --f0                 enable F0 conditioning (required for singing voice)")
	fmt.Fprintln(os.Stderr, "  --pitch_shift N      shift pitch by N semitones (requires --f0)")
	fmt.Fprintln(os.Stderr, "  --diffusion_steps N  diffusion step count (default 25)")
	fmt.Fprintln(os.Stderr, "  --length_adjust F    playback speed factor (default 1.0)")
	fmt.Fprintln(os.Stderr, "  --cfg_rate F         classifier-free guidance rate (default 0.7)")
	fmt.Fprintln(os.Stderr, "  --sample_rate N      output sample rate (default derived from --f0)")
	fmt.Fprintln(os.Stderr, "  --runner URL         Seed-VC runner URL (default $SEEDVC_RUNNER_URL)")
}

func run(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	f0 := fs.Bool("f0", false, "enable F0 (pitch) conditioning")
	pitchShift := fs.Int("pitch_shift", 0, "pitch shift in semitones")
	diffusionSteps := fs.Int("diffusion_steps", 25, "diffusion step count")
	lengthAdjust := fs.Float64("length_adjust", 1.0, "playback speed factor")
	cfgRate := fs.Float64("cfg_rate", 0.7, "classifier-free guidance rate")
	sampleRate := fs.Int("sample_rate", 0, "output sample rate, 0 derives it from --f0")
	runnerURL := fs.String("runner", "", "Seed-VC runner URL")

	if err := fs.Parse(args); err != nil {
		return 1
	}
	rest := fs.Args()
	if len(rest) < 3 {
		usage()
		return 1
	}
	sourcePath, targetPath, outputPath := rest[0], rest[1], rest[2]
	// Flags are also accepted after the positional arguments.
	if err := fs.Parse(rest[3:]); err != nil {
		return 1
	}

	godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "voiceclone:", err)
		return 1
	}
	if *runnerURL == "" {
		*runnerURL = cfg.RunnerURL
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	converter := seedvc.NewClient(seedvc.Config{
		RunnerURL: *runnerURL,
		Timeout:   cfg.RunnerTimeout,
	}, logger)
	service := usecase.NewCloneService(converter, logger)

	params := entities.DefaultParams()
	params.SourcePath = sourcePath
	params.TargetPath = targetPath
	params.DiffusionSteps = *diffusionSteps
	params.LengthAdjust = *lengthAdjust
	params.InferenceCFGRate = *cfgRate
	params.F0Condition = *f0
	params.PitchShift = *pitchShift

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	output, err := service.Clone(ctx, usecase.CloneRequest{
		Params:     params,
		OutputPath: outputPath,
		SampleRate: *sampleRate,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "voiceclone:", err)
		return 1
	}

	fmt.Println(output)
	return 0
}
