// Package websocket implements the streaming conversion endpoint: encoded
// audio chunks are forwarded to the client while the model runner is still
// working.
package websocket

import "github.com/voicelab/voiceclone/domain/entities"

// MessageType defines the type of a JSON control message. Audio travels as
// binary WebSocket messages and carries no envelope.
type MessageType string

// Supported control message types
const (
	MessageTypeDone  MessageType = "done"
	MessageTypeError MessageType = "error"
)

// ParamsMessage is the first client message of a streaming session. Unset
// fields fall back to the facade defaults. The two binary messages that
// follow carry the source and target audio bytes.
type ParamsMessage struct {
	DiffusionSteps   *int     `json:"diffusion_steps,omitempty"`
	LengthAdjust     *float64 `json:"length_adjust,omitempty"`
	InferenceCFGRate *float64 `json:"inference_cfg_rate,omitempty"`
	F0Condition      *bool    `json:"f0_condition,omitempty"`
	AutoF0Adjust     *bool    `json:"auto_f0_adjust,omitempty"`
	PitchShift       *int     `json:"pitch_shift,omitempty"`

	// Original filenames, used only to keep recognizable temp file names.
	SourceName string `json:"source_name,omitempty"`
	TargetName string `json:"target_name,omitempty"`
}

// Apply overlays the message onto a set of conversion parameters.
func (m ParamsMessage) Apply(params *entities.ConversionParams) {
	if m.DiffusionSteps != nil {
		params.DiffusionSteps = *m.DiffusionSteps
	}
	if m.LengthAdjust != nil {
		params.LengthAdjust = *m.LengthAdjust
	}
	if m.InferenceCFGRate != nil {
		params.InferenceCFGRate = *m.InferenceCFGRate
	}
	if m.F0Condition != nil {
		params.F0Condition = *m.F0Condition
	}
	if m.AutoF0Adjust != nil {
		params.AutoF0Adjust = *m.AutoF0Adjust
	}
	if m.PitchShift != nil {
		params.PitchShift = *m.PitchShift
	}
}

// DoneMessage closes a successful streaming session.
type DoneMessage struct {
	Type       MessageType `json:"type"`
	Chunks     int         `json:"chunks"`
	Bytes      int         `json:"bytes"`
	SampleRate int         `json:"sample_rate,omitempty"`
}

// ErrorMessage closes a failed streaming session.
type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}
