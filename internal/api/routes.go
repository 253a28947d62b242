package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/voicelab/voiceclone/domain/entities"
	"github.com/voicelab/voiceclone/domain/repositories"
	"github.com/voicelab/voiceclone/internal/config"
	"github.com/voicelab/voiceclone/internal/metrics"
	"github.com/voicelab/voiceclone/internal/websocket"
	"github.com/voicelab/voiceclone/usecase"
)

// InitRoutes initializes all API routes
func InitRoutes(
	e *echo.Echo,
	svc *usecase.CloneService,
	converter repositories.VoiceConverter,
	cfg *config.Config,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) {
	// Health check
	health := func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:  "healthy",
			Service: serviceName,
			Version: serviceVersion,
		})
	}
	e.GET("/health/", health)
	e.GET("/health", health)

	// Voice cloning
	clone := func(c echo.Context) error {
		return cloneVoice(c, svc, cfg, m, logger)
	}
	e.POST("/clone/", clone)
	e.POST("/clone", clone)

	// Streaming conversion over WebSocket
	e.GET("/clone/stream", func(c echo.Context) error {
		return websocket.HandleCloneStream(c, converter, cfg, m, logger)
	})

	// Prometheus exposition
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// cloneVoice handles POST /clone/: multipart upload in, WAV attachment out.
func cloneVoice(c echo.Context, svc *usecase.CloneService, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) error {
	// Both parts are validated before anything touches the filesystem.
	source, err := c.FormFile("source_audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Both source_audio and target_audio files are required",
		})
	}
	target, err := c.FormFile("target_audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Both source_audio and target_audio files are required",
		})
	}

	params := entities.DefaultParams()
	params.DiffusionSteps = defaultDiffusionSteps
	params.F0Condition = defaultF0Condition
	params.AutoF0Adjust = defaultAutoF0Adjust
	params.InferenceCFGRate = defaultInferenceCFGRate

	var sampleRate int
	if err := bindTuningFields(c, &params, &sampleRate); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	requestID := uuid.NewString()
	tempDir := filepath.Join(cfg.TempDir, "voiceclone-"+requestID)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		logger.Error("Failed to create temp directory", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to store uploaded audio",
		})
	}
	// Inputs and the generated output are removed once the response has
	// been written (or the request failed). Best effort only.
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			logger.Warn("Failed to clean up temp directory",
				zap.String("tempDir", tempDir), zap.Error(err))
		}
	}()

	params.SourcePath = filepath.Join(tempDir, "source_"+sanitizeFileName(source.Filename))
	params.TargetPath = filepath.Join(tempDir, "target_"+sanitizeFileName(target.Filename))
	outputPath := filepath.Join(tempDir, outputFileName)

	if err := saveUpload(source, params.SourcePath); err != nil {
		logger.Error("Failed to persist source upload", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to store uploaded audio",
		})
	}
	if err := saveUpload(target, params.TargetPath); err != nil {
		logger.Error("Failed to persist target upload", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to store uploaded audio",
		})
	}
	m.UploadBytes.Observe(float64(source.Size))
	m.UploadBytes.Observe(float64(target.Size))

	logger.Info("Starting voice cloning",
		zap.String("requestID", requestID),
		zap.String("source", source.Filename),
		zap.String("target", target.Filename),
		zap.Int("diffusionSteps", params.DiffusionSteps),
		zap.Bool("f0Condition", params.F0Condition))

	m.ConversionsTotal.Inc()
	start := time.Now()
	_, err = svc.Clone(c.Request().Context(), usecase.CloneRequest{
		Params:     params,
		OutputPath: outputPath,
		SampleRate: sampleRate,
	})
	m.ConversionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.ConversionFailures.Inc()
		logger.Error("Voice cloning failed",
			zap.String("requestID", requestID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: fmt.Sprintf("Voice cloning failed: %v", err),
		})
	}

	f, err := os.Open(outputPath)
	if err != nil {
		m.ConversionFailures.Inc()
		logger.Error("Output file was not generated",
			zap.String("requestID", requestID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to generate cloned audio",
		})
	}
	defer f.Close()

	logger.Info("Voice cloning completed successfully",
		zap.String("requestID", requestID),
		zap.Duration("took", time.Since(start)))

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", downloadFileName))
	return c.Stream(http.StatusOK, "audio/wav", f)
}

// bindTuningFields reads the optional multipart form fields into params.
func bindTuningFields(c echo.Context, params *entities.ConversionParams, sampleRate *int) error {
	var err error
	if params.DiffusionSteps, err = formInt(c, "diffusion_steps", params.DiffusionSteps); err != nil {
		return err
	}
	if params.F0Condition, err = formBool(c, "f0_condition", params.F0Condition); err != nil {
		return err
	}
	if params.AutoF0Adjust, err = formBool(c, "auto_f0_adjust", params.AutoF0Adjust); err != nil {
		return err
	}
	if params.InferenceCFGRate, err = formFloat(c, "inference_cfg_rate", params.InferenceCFGRate); err != nil {
		return err
	}
	if params.LengthAdjust, err = formFloat(c, "length_adjust", params.LengthAdjust); err != nil {
		return err
	}
	if params.PitchShift, err = formInt(c, "pitch_shift", params.PitchShift); err != nil {
		return err
	}
	if *sampleRate, err = formInt(c, "sample_rate", 0); err != nil {
		return err
	}
	return nil
}

func formInt(c echo.Context, field string, fallback int) (int, error) {
	value := c.FormValue(field)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", field, value)
	}
	return n, nil
}

func formFloat(c echo.Context, field string, fallback float64) (float64, error) {
	value := c.FormValue(field)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", field, value)
	}
	return f, nil
}

func formBool(c echo.Context, field string, fallback bool) (bool, error) {
	value := c.FormValue(field)
	if value == "" {
		return fallback, nil
	}
	return strings.EqualFold(value, "true"), nil
}

func saveUpload(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open upload; %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s; %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("failed to write %s; %w", dst, err)
	}
	return nil
}

// sanitizeFileName strips any path components a client may smuggle into the
// multipart filename.
func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "upload"
	}
	return name
}
