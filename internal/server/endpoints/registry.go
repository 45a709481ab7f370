package endpoints

import (
	"github.com/biaslens/biaslens/internal/api"
	"github.com/biaslens/biaslens/internal/inference"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	// Sidecar is nil when the classifier container is unmanaged.
	Sidecar *inference.ContainerManager
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{Sidecar: cfg.Sidecar},

		// Analysis endpoints
		&AnalyzeEndpoint{},
		&AnalyzeLLMEndpoint{},
		&AnalyzeSimpleEndpoint{},

		// Auth endpoints
		&RegisterEndpoint{},
		&LoginEndpoint{},
		&LogoutEndpoint{},

		// Stored analysis endpoints
		&ListAnalysesEndpoint{},
		&GetAnalysisEndpoint{},
		&DeleteAnalysisEndpoint{},
	}
}
