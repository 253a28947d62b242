// Package audio implements the output-side audio handling of the voice
// cloning pipeline: the amplitude normalization policy and 16-bit PCM WAV
// encoding.
package audio

// Amplitude policy inherited from the original Seed-VC pipeline. The exact
// thresholds are load-bearing: downstream consumers expect a 0.95 ceiling
// and quiet outputs boosted to a 0.5 peak.
const (
	clipThreshold   = 1.0
	clipTargetPeak  = 0.95
	quietThreshold  = 0.1
	quietTargetPeak = 0.5
)

// Peak returns the maximum absolute sample value.
func Peak(samples []float32) float32 {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// Normalize rescales samples according to the amplitude policy: buffers
// peaking above 1.0 are pulled down to a 0.95 peak, buffers peaking below
// 0.1 are boosted to a 0.5 peak. In-range and all-silent buffers are
// returned as-is. The input slice is never mutated.
func Normalize(samples []float32) []float32 {
	peak := Peak(samples)
	if peak == 0 {
		// Silent buffer; scaling would divide by zero.
		return samples
	}

	var target float32
	switch {
	case peak > clipThreshold:
		target = clipTargetPeak
	case peak < quietThreshold:
		target = quietTargetPeak
	default:
		return samples
	}

	scale := target / peak
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = s * scale
	}
	return out
}
