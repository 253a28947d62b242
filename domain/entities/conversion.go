package entities

// Output sample rates used by the Seed-VC model. Singing-voice conversion
// (F0 conditioning enabled) is produced at 44.1 kHz, regular speech at
// 22.05 kHz.
const (
	SampleRateSpeech  = 22050
	SampleRateSinging = 44100
)

// ConversionParams carries the tuning knobs forwarded to the Seed-VC model
// runner for a single conversion.
type ConversionParams struct {
	SourcePath string // speech/singing to convert
	TargetPath string // voice to clone

	// DiffusionSteps controls the quality/speed trade-off.
	// 10 is fast, 50-100 gives the best quality.
	DiffusionSteps int

	// LengthAdjust scales playback speed: <1.0 speeds up, >1.0 slows down.
	LengthAdjust float64

	// InferenceCFGRate is the classifier-free guidance weight.
	InferenceCFGRate float64

	// F0Condition enables pitch-contour conditioning. Must be true for
	// singing voice conversion.
	F0Condition bool

	// AutoF0Adjust automatically matches the pitch to the target voice.
	// Only effective when F0Condition is set.
	AutoF0Adjust bool

	// PitchShift shifts the pitch by the given number of semitones.
	// Only effective when F0Condition is set.
	PitchShift int
}

// DefaultParams returns the conversion defaults used by the facade and CLI.
func DefaultParams() ConversionParams {
	return ConversionParams{
		DiffusionSteps:   25,
		LengthAdjust:     1.0,
		InferenceCFGRate: 0.7,
		AutoF0Adjust:     true,
	}
}

// DefaultSampleRate derives the output sample rate from the F0 conditioning
// flag when no explicit rate was requested.
func (p ConversionParams) DefaultSampleRate() int {
	if p.F0Condition {
		return SampleRateSinging
	}
	return SampleRateSpeech
}

// Audio is a decoded audio payload returned by the model runner: float32
// samples in [-1, 1] plus the rate they were produced at. Multi-channel
// payloads keep their samples in emission order until flattened to mono.
type Audio struct {
	SampleRate int
	Channels   int
	Samples    []float32
}

// Duration reports the audio length in seconds, treating the buffer as mono.
func (a *Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SampleRate)
}
