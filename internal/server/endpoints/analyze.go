package endpoints

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/biaslens/biaslens/internal/analysis"
	"github.com/biaslens/biaslens/internal/analyzer"
	"github.com/biaslens/biaslens/internal/api"
	"github.com/biaslens/biaslens/internal/svcctx"
)

// AnalyzeRequest is the request body for the analysis endpoints.
type AnalyzeRequest struct {
	Text string `json:"text"`

	// ConfidenceThreshold overrides the configured default when set. Only
	// the classifier backend uses it.
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
}

// AnalyzeResponse is a full analysis result plus its storage ID.
type AnalyzeResponse struct {
	ID int64 `json:"id,omitempty"`
	*analysis.Result
}

// AnalyzeEndpoint handles POST /analyze using the configured default backend.
type AnalyzeEndpoint struct{}

func (e *AnalyzeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/analyze", e.handler
}

func (e *AnalyzeEndpoint) RequiresInit() bool { return true }

func (e *AnalyzeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	a := defaultAnalyzer(r)
	if a == nil {
		writeError(w, http.StatusServiceUnavailable, "no analyzer configured")
		return
	}
	runAnalysis(w, r, a)
}

func (e *AnalyzeEndpoint) Command(getServerURL func() string) *cobra.Command {
	var threshold float64
	cmd := &cobra.Command{
		Use:   "analyze <text>",
		Short: "Analyze text for bias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := AnalyzeRequest{Text: args[0]}
			if cmd.Flags().Changed("threshold") {
				req.ConfidenceThreshold = &threshold
			}
			var resp AnalyzeResponse
			if err := client.Post(cmd.Context(), "/analyze", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0.5, "confidence threshold for flagging")
	return cmd
}

// AnalyzeLLMEndpoint handles POST /analyze/llm, always using the generative
// backend regardless of the configured mode.
type AnalyzeLLMEndpoint struct{}

func (e *AnalyzeLLMEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/analyze/llm", e.handler
}

func (e *AnalyzeLLMEndpoint) RequiresInit() bool { return true }

func (e *AnalyzeLLMEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	a := svcctx.GenerativeFrom(r.Context())
	if a == nil {
		writeError(w, http.StatusServiceUnavailable, "generative analyzer not configured")
		return
	}
	runAnalysis(w, r, a)
}

func (e *AnalyzeLLMEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze-llm <text>",
		Short: "Analyze text for bias with the generative backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp AnalyzeResponse
			if err := client.Post(cmd.Context(), "/analyze/llm", AnalyzeRequest{Text: args[0]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// defaultAnalyzer picks the backend for /analyze from configuration, falling
// back to whichever backend is available.
func defaultAnalyzer(r *http.Request) analyzer.Analyzer {
	cfg := svcctx.ConfigFrom(r.Context())
	classifier := svcctx.ClassifierFrom(r.Context())
	generative := svcctx.GenerativeFrom(r.Context())

	if cfg != nil && cfg.Analyzer.Mode == "generative" {
		if generative != nil {
			return generative
		}
		return classifier
	}
	if classifier != nil {
		return classifier
	}
	return generative
}

// resolveThreshold applies the configured default and the request override.
// Values outside [0, 1] are rejected.
func resolveThreshold(r *http.Request, req AnalyzeRequest) (float64, error) {
	threshold := 0.5
	if c := svcctx.ConfigFrom(r.Context()); c != nil {
		threshold = c.Analyzer.ConfidenceThreshold
	}
	if req.ConfidenceThreshold != nil {
		threshold = *req.ConfidenceThreshold
	}
	if threshold < 0 || threshold > 1 {
		return 0, errors.New("confidence_threshold must be between 0 and 1")
	}
	return threshold, nil
}

// runAnalysis is the shared handler body: authenticate, decode, analyze,
// persist, respond.
func runAnalysis(w http.ResponseWriter, r *http.Request, a analyzer.Analyzer) {
	userID, err := userFromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req AnalyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	threshold, err := resolveThreshold(r, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := a.Analyze(r.Context(), req.Text, analyzer.Config{Threshold: threshold})
	if err != nil {
		if errors.Is(err, analyzer.ErrEmptyText) {
			writeError(w, http.StatusBadRequest, "text cannot be empty")
			return
		}
		writeError(w, http.StatusInternalServerError, "analysis failed: "+err.Error())
		return
	}

	resp := AnalyzeResponse{Result: result}
	if st := svcctx.StoreFrom(r.Context()); st != nil {
		id, err := st.SaveAnalysis(r.Context(), userID, a.Name(), result)
		if err != nil {
			if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
				logger.Warn("failed to persist analysis", "error", err)
			}
		} else {
			resp.ID = id
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
