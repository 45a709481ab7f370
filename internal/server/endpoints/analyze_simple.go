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

// SimpleAnalysisResponse is the trimmed-down view of a classifier analysis:
// a boolean verdict plus the flagged clauses and summary.
type SimpleAnalysisResponse struct {
	BiasDetected  bool                  `json:"bias_detected"`
	BiasedClauses []analysis.UnitResult `json:"biased_clauses"`
	Summary       analysis.Summary      `json:"summary"`
}

// AnalyzeSimpleEndpoint handles POST /analyze/simple.
type AnalyzeSimpleEndpoint struct{}

func (e *AnalyzeSimpleEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/analyze/simple", e.handler
}

func (e *AnalyzeSimpleEndpoint) RequiresInit() bool { return true }

func (e *AnalyzeSimpleEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	a := svcctx.ClassifierFrom(r.Context())
	if a == nil {
		writeError(w, http.StatusServiceUnavailable, "classifier analyzer not configured")
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

	writeJSON(w, http.StatusOK, SimpleAnalysisResponse{
		BiasDetected:  len(result.FlaggedUnits) > 0,
		BiasedClauses: result.FlaggedUnits,
		Summary:       result.Summary,
	})
}

func (e *AnalyzeSimpleEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze-simple <text>",
		Short: "Analyze text and return just the flagged clauses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SimpleAnalysisResponse
			if err := client.Post(cmd.Context(), "/analyze/simple", AnalyzeRequest{Text: args[0]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
