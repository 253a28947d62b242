package entities

import "errors"

// Conversion error taxonomy. Callers match with errors.Is; adapters and the
// facade wrap these with request context via fmt.Errorf("%w").
var (
	// ErrNotFound indicates a missing source or target audio file.
	ErrNotFound = errors.New("input audio not found")

	// ErrNoOutput indicates the model stream ended without ever emitting
	// a full-audio payload.
	ErrNoOutput = errors.New("no audio was generated by the model")

	// ErrUnsupportedAudio indicates the model returned a payload whose
	// sample encoding this layer cannot decode.
	ErrUnsupportedAudio = errors.New("unsupported audio payload type")

	// ErrOutputWrite indicates the converted audio could not be written
	// to disk.
	ErrOutputWrite = errors.New("failed to write output audio")
)
