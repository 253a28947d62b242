package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/voicelab/voiceclone/domain/entities"
	"github.com/voicelab/voiceclone/domain/repositories"
	"github.com/voicelab/voiceclone/internal/config"
	"github.com/voicelab/voiceclone/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // same policy as the REST surface: unauthenticated
	},
}

// HandleCloneStream upgrades the connection and runs one streaming
// conversion session: params message, source audio, target audio in;
// encoded chunks out, closed by a done or error message.
func HandleCloneStream(
	c echo.Context,
	converter repositories.VoiceConverter,
	cfg *config.Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	m.StreamSessions.Inc()
	sessionID := uuid.NewString()
	logger = logger.With(zap.String("sessionID", sessionID))
	logger.Info("Streaming conversion session started")

	msg, err := readParams(ws)
	if err != nil {
		writeError(ws, logger, fmt.Sprintf("invalid params message: %v", err))
		return nil
	}

	params := entities.DefaultParams()
	msg.Apply(&params)

	tempDir := filepath.Join(cfg.TempDir, "voiceclone-ws-"+sessionID)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		logger.Error("Failed to create temp directory", zap.Error(err))
		writeError(ws, logger, "failed to store uploaded audio")
		return nil
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			logger.Warn("Failed to clean up temp directory", zap.Error(err))
		}
	}()

	params.SourcePath = filepath.Join(tempDir, "source_"+uploadName(msg.SourceName, "source.wav"))
	params.TargetPath = filepath.Join(tempDir, "target_"+uploadName(msg.TargetName, "target.wav"))

	if err := receiveAudio(ws, params.SourcePath); err != nil {
		writeError(ws, logger, fmt.Sprintf("failed to receive source audio: %v", err))
		return nil
	}
	if err := receiveAudio(ws, params.TargetPath); err != nil {
		writeError(ws, logger, fmt.Sprintf("failed to receive target audio: %v", err))
		return nil
	}

	ctx := c.Request().Context()
	frames, err := converter.ConvertStream(ctx, params)
	if err != nil {
		writeError(ws, logger, fmt.Sprintf("conversion failed: %v", err))
		return nil
	}

	chunkCount := 0
	byteCount := 0
	var final *entities.Audio
	for frame := range frames {
		if frame.Err != nil {
			writeError(ws, logger, fmt.Sprintf("conversion failed: %v", frame.Err))
			return nil
		}
		if frame.Chunk != nil {
			if err := ws.WriteMessage(websocket.BinaryMessage, frame.Chunk); err != nil {
				logger.Warn("Client went away mid-stream", zap.Error(err))
				return nil
			}
			m.StreamChunksSent.Inc()
			chunkCount++
			byteCount += len(frame.Chunk)
		}
		if frame.Audio != nil {
			final = frame.Audio
		}
	}

	if chunkCount == 0 && final == nil {
		writeError(ws, logger, fmt.Sprintf("conversion failed: %v", entities.ErrNoOutput))
		return nil
	}

	done := DoneMessage{
		Type:   MessageTypeDone,
		Chunks: chunkCount,
		Bytes:  byteCount,
	}
	if final != nil {
		done.SampleRate = final.SampleRate
	}
	if err := ws.WriteJSON(done); err != nil {
		logger.Warn("Failed to send done message", zap.Error(err))
		return nil
	}

	logger.Info("Streaming conversion session finished",
		zap.Int("chunks", chunkCount),
		zap.Int("bytes", byteCount))
	return nil
}

func readParams(ws *websocket.Conn) (ParamsMessage, error) {
	var msg ParamsMessage
	messageType, data, err := ws.ReadMessage()
	if err != nil {
		return msg, err
	}
	if messageType != websocket.TextMessage {
		return msg, fmt.Errorf("expected a JSON params message first")
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	return msg, nil
}

func receiveAudio(ws *websocket.Conn, dst string) error {
	messageType, data, err := ws.ReadMessage()
	if err != nil {
		return err
	}
	if messageType != websocket.BinaryMessage {
		return fmt.Errorf("expected a binary audio message")
	}
	if len(data) == 0 {
		return fmt.Errorf("empty audio upload")
	}
	return os.WriteFile(dst, data, 0644)
}

func writeError(ws *websocket.Conn, logger *zap.Logger, message string) {
	logger.Error("Streaming conversion session failed", zap.String("message", message))
	if err := ws.WriteJSON(ErrorMessage{Type: MessageTypeError, Message: message}); err != nil {
		logger.Warn("Failed to send error message", zap.Error(err))
	}
}

func uploadName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return filepath.Base(name)
}
