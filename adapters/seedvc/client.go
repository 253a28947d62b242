// Package seedvc contains adapters for the Seed-VC model runner, the
// external process that owns the actual voice-conversion inference.
package seedvc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voicelab/voiceclone/domain/entities"
	"github.com/voicelab/voiceclone/domain/repositories"
)

const (
	defaultRunnerURL = "http://127.0.0.1:8000"
	defaultTimeout   = 10 * time.Minute // inference on CPU is slow
	healthTimeout    = 10 * time.Second

	// NDJSON frames carry whole audio buffers; the scanner needs room
	// for several minutes of base64-encoded float32 samples.
	scanBufferInitial = 64 * 1024
	scanBufferMax     = 256 * 1024 * 1024
)

// Config holds configuration for the runner Client.
// Required fields: none, everything has a default.
// Optional fields:
// - RunnerURL: base URL of the Seed-VC runner (default: "http://127.0.0.1:8000")
// - Timeout: overall HTTP timeout per conversion (default: 10m)
type Config struct {
	RunnerURL string
	Timeout   time.Duration
}

// Client talks to the Seed-VC model runner over HTTP. The runner shares the
// local filesystem, so conversions are addressed by file path and the
// response streams NDJSON frames: encoded chunks while inference progresses
// and a final full-audio payload.
type Client struct {
	runnerURL  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure Client implements the VoiceConverter interface
var _ repositories.VoiceConverter = (*Client)(nil)

// convertRequest is the wire request for POST /convert.
type convertRequest struct {
	Source           string  `json:"source"`
	Target           string  `json:"target"`
	DiffusionSteps   int     `json:"diffusion_steps"`
	LengthAdjust     float64 `json:"length_adjust"`
	InferenceCFGRate float64 `json:"inference_cfg_rate"`
	F0Condition      bool    `json:"f0_condition"`
	AutoF0Adjust     bool    `json:"auto_f0_adjust"`
	PitchShift       int     `json:"pitch_shift"`
	StreamOutput     bool    `json:"stream_output"`
}

// fullAudioPayload is the runner's final audio buffer. Samples are base64
// encoded little-endian values of the declared dtype.
type fullAudioPayload struct {
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Dtype      string `json:"dtype"`
	Samples    string `json:"samples"`
}

// wireFrame is one NDJSON line of the streaming response.
type wireFrame struct {
	Chunk     string            `json:"chunk,omitempty"`
	FullAudio *fullAudioPayload `json:"full_audio,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// NewClient creates a Seed-VC runner client.
func NewClient(config Config, logger *zap.Logger) *Client {
	runnerURL := strings.TrimRight(config.RunnerURL, "/")
	if runnerURL == "" {
		runnerURL = defaultRunnerURL
		logger.Info("Using default runner URL", zap.String("runnerURL", runnerURL))
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		runnerURL:  runnerURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Health checks whether the runner is up and its models are loaded.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.runnerURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("runner health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("runner health check returned status %d", resp.StatusCode)
	}
	return nil
}

// ConvertStream starts a conversion on the runner and forwards its NDJSON
// frames on the returned channel until the stream ends or ctx is cancelled.
func (c *Client) ConvertStream(ctx context.Context, params entities.ConversionParams) (<-chan repositories.StreamFrame, error) {
	request := convertRequest{
		Source:           params.SourcePath,
		Target:           params.TargetPath,
		DiffusionSteps:   params.DiffusionSteps,
		LengthAdjust:     params.LengthAdjust,
		InferenceCFGRate: params.InferenceCFGRate,
		F0Condition:      params.F0Condition,
		AutoF0Adjust:     params.AutoF0Adjust,
		PitchShift:       params.PitchShift,
		StreamOutput:     true,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal convert request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.runnerURL+"/convert", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")

	c.logger.Info("Starting voice conversion on runner",
		zap.String("source", params.SourcePath),
		zap.String("target", params.TargetPath),
		zap.Int("diffusionSteps", params.DiffusionSteps),
		zap.Bool("f0Condition", params.F0Condition),
		zap.Int("pitchShift", params.PitchShift))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach runner: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("runner returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(errorBody)))
	}

	frames := make(chan repositories.StreamFrame, 10)
	go c.readFrames(ctx, resp.Body, frames)
	return frames, nil
}

// Convert runs a conversion to completion, discarding intermediate chunks
// and returning the last full-audio payload of the stream. A sample rate the
// runner attaches to the payload is passed through untouched; resolving the
// effective output rate is the caller's concern.
func (c *Client) Convert(ctx context.Context, params entities.ConversionParams) (*entities.Audio, error) {
	frames, err := c.ConvertStream(ctx, params)
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

func (c *Client) readFrames(ctx context.Context, body io.ReadCloser, frames chan<- repositories.StreamFrame) {
	defer close(frames)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, scanBufferInitial), scanBufferMax)

	frameCount := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var wf wireFrame
		if err := json.Unmarshal(line, &wf); err != nil {
			c.sendFrame(ctx, frames, repositories.StreamFrame{Err: fmt.Errorf("malformed runner frame: %w", err)})
			return
		}

		if wf.Error != "" {
			c.sendFrame(ctx, frames, repositories.StreamFrame{Err: fmt.Errorf("runner error: %s", wf.Error)})
			return
		}

		frame, err := decodeFrame(wf)
		if err != nil {
			c.sendFrame(ctx, frames, repositories.StreamFrame{Err: err})
			return
		}

		frameCount++
		if !c.sendFrame(ctx, frames, frame) {
			c.logger.Warn("Context cancelled while streaming conversion frames")
			return
		}
	}

	if err := scanner.Err(); err != nil {
		c.sendFrame(ctx, frames, repositories.StreamFrame{Err: fmt.Errorf("failed to read runner stream: %w", err)})
		return
	}

	c.logger.Debug("Finished reading runner stream", zap.Int("frames", frameCount))
}

func (c *Client) sendFrame(ctx context.Context, frames chan<- repositories.StreamFrame, frame repositories.StreamFrame) bool {
	select {
	case frames <- frame:
		return true
	case <-ctx.Done():
		return false
	}
}

func decodeFrame(wf wireFrame) (repositories.StreamFrame, error) {
	var frame repositories.StreamFrame

	if wf.Chunk != "" {
		chunk, err := base64.StdEncoding.DecodeString(wf.Chunk)
		if err != nil {
			return frame, fmt.Errorf("malformed chunk encoding: %w", err)
		}
		frame.Chunk = chunk
	}

	if wf.FullAudio != nil {
		audio, err := decodeFullAudio(wf.FullAudio)
		if err != nil {
			return frame, err
		}
		frame.Audio = audio
	}

	return frame, nil
}

func decodeFullAudio(payload *fullAudioPayload) (*entities.Audio, error) {
	raw, err := base64.StdEncoding.DecodeString(payload.Samples)
	if err != nil {
		return nil, fmt.Errorf("malformed sample encoding: %w", err)
	}

	samples, err := decodeSamples(payload.Dtype, raw)
	if err != nil {
		return nil, err
	}

	channels := payload.Channels
	if channels == 0 {
		channels = 1
	}

	return &entities.Audio{
		SampleRate: payload.SampleRate,
		Channels:   channels,
		Samples:    samples,
	}, nil
}

// decodeSamples converts little-endian raw bytes into float32 samples.
// The runner emits float32 buffers in practice; float64 and int16 cover the
// payloads older runner builds produced.
func decodeSamples(dtype string, raw []byte) ([]float32, error) {
	switch dtype {
	case "float32":
		if len(raw)%4 != 0 {
			return nil, fmt.Errorf("%w: float32 payload of %d bytes", entities.ErrUnsupportedAudio, len(raw))
		}
		samples := make([]float32, len(raw)/4)
		for i := range samples {
			samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return samples, nil

	case "float64":
		if len(raw)%8 != 0 {
			return nil, fmt.Errorf("%w: float64 payload of %d bytes", entities.ErrUnsupportedAudio, len(raw))
		}
		samples := make([]float32, len(raw)/8)
		for i := range samples {
			samples[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:])))
		}
		return samples, nil

	case "int16":
		if len(raw)%2 != 0 {
			return nil, fmt.Errorf("%w: int16 payload of %d bytes", entities.ErrUnsupportedAudio, len(raw))
		}
		samples := make([]float32, len(raw)/2)
		for i := range samples {
			samples[i] = float32(int16(binary.LittleEndian.Uint16(raw[i*2:]))) / 32768
		}
		return samples, nil

	default:
		return nil, fmt.Errorf("%w: dtype %q", entities.ErrUnsupportedAudio, dtype)
	}
}
