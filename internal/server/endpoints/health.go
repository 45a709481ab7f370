package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/biaslens/biaslens/internal/analysis"
	"github.com/biaslens/biaslens/internal/api"
	"github.com/biaslens/biaslens/internal/inference"
	"github.com/biaslens/biaslens/internal/svcctx"
)

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status     string `json:"status"`
	Classifier string `json:"classifier,omitempty"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			return nil
		},
	}
}

// ReadyEndpoint handles GET /ready.
type ReadyEndpoint struct{}

func (e *ReadyEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/ready", e.handler
}

func (e *ReadyEndpoint) RequiresInit() bool { return false }

func (e *ReadyEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Classifier: "ok"}

	client := svcctx.InferenceFrom(r.Context())
	if client != nil {
		if err := client.HealthCheck(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Classifier = "unhealthy"
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	} else {
		// Generative-only deployments have no sidecar to check.
		resp.Classifier = "not_configured"
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ReadyEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "Check server readiness (includes classifier sidecar)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/ready", &resp); err != nil {
				return err
			}
			fmt.Printf("Status:     %s\n", resp.Status)
			if resp.Classifier != "" {
				fmt.Printf("Classifier: %s\n", resp.Classifier)
			}
			return nil
		},
	}
}

// StatusResponse is the detailed status response.
type StatusResponse struct {
	Server     string           `json:"server"`
	Mode       string           `json:"mode"`
	BiasTypes  []string         `json:"supported_bias_types"`
	Classifier ClassifierStatus `json:"classifier"`
}

// ClassifierStatus shows sidecar container and health status.
type ClassifierStatus struct {
	Container string `json:"container"`
	Health    string `json:"health"`
	URL       string `json:"url,omitempty"`
}

// StatusEndpoint handles GET /status.
type StatusEndpoint struct {
	// Sidecar is set by the server since only managed deployments have one.
	Sidecar *inference.ContainerManager
}

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return false }

func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Server:    "running",
		BiasTypes: analysis.ClassifierLabels,
	}
	if cfg := svcctx.ConfigFrom(r.Context()); cfg != nil {
		resp.Mode = cfg.Analyzer.Mode
	}

	if e.Sidecar != nil {
		status, err := e.Sidecar.Status(r.Context())
		if err != nil {
			resp.Classifier.Container = "error"
		} else {
			resp.Classifier.Container = string(status)
		}
		resp.Classifier.URL = e.Sidecar.URL()
	} else {
		resp.Classifier.Container = "unmanaged"
	}

	client := svcctx.InferenceFrom(r.Context())
	if client != nil {
		if err := client.HealthCheck(r.Context()); err != nil {
			resp.Classifier.Health = "unhealthy"
		} else {
			resp.Classifier.Health = "healthy"
		}
		if resp.Classifier.URL == "" {
			resp.Classifier.URL = client.URL()
		}
	} else {
		resp.Classifier.Health = "not_configured"
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get detailed server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/status", &resp); err != nil {
				return err
			}
			fmt.Printf("Server: %s\n", resp.Server)
			fmt.Printf("Mode:   %s\n", resp.Mode)
			fmt.Printf("Classifier:\n")
			fmt.Printf("  Container: %s\n", resp.Classifier.Container)
			fmt.Printf("  Health:    %s\n", resp.Classifier.Health)
			fmt.Printf("  URL:       %s\n", resp.Classifier.URL)
			return nil
		},
	}
}
