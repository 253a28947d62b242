package api

// HTTP-facing defaults for POST /clone/. These intentionally differ from the
// facade defaults: the API standardized on high-quality singing-voice
// settings.
const (
	defaultDiffusionSteps   = 100
	defaultF0Condition      = true
	defaultAutoF0Adjust     = true
	defaultInferenceCFGRate = 0.7
)

const (
	serviceName    = "voice-clone-server"
	serviceVersion = "1.0.0"

	outputFileName   = "cloned_output.wav"
	downloadFileName = "cloned_voice.wav"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
