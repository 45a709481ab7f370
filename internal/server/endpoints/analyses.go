package endpoints

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/biaslens/biaslens/internal/api"
	"github.com/biaslens/biaslens/internal/store"
	"github.com/biaslens/biaslens/internal/svcctx"
)

// ListAnalysesResponse wraps stored analysis metadata.
type ListAnalysesResponse struct {
	Analyses []store.AnalysisMetadata `json:"analyses"`
}

// ListAnalysesEndpoint handles GET /analyses. Results are scoped to the
// requesting user; anonymous requests see anonymous analyses.
type ListAnalysesEndpoint struct{}

func (e *ListAnalysesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/analyses", e.handler
}

func (e *ListAnalysesEndpoint) RequiresInit() bool { return true }

func (e *ListAnalysesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	userID, err := userFromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer up to 500")
			return
		}
		limit = n
	}

	st := svcctx.StoreFrom(r.Context())
	if st == nil {
		writeError(w, http.StatusServiceUnavailable, "store not initialized")
		return
	}

	metas, err := st.ListAnalyses(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if metas == nil {
		metas = []store.AnalysisMetadata{}
	}
	writeJSON(w, http.StatusOK, ListAnalysesResponse{Analyses: metas})
}

func (e *ListAnalysesEndpoint) Command(getServerURL func() string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListAnalysesResponse
			if err := client.Get(cmd.Context(), fmt.Sprintf("/analyses?limit=%d", limit), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of analyses to return")
	return cmd
}

// GetAnalysisEndpoint handles GET /analyses/{id}.
type GetAnalysisEndpoint struct{}

func (e *GetAnalysisEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/analyses/{id}", e.handler
}

func (e *GetAnalysisEndpoint) RequiresInit() bool { return true }

func (e *GetAnalysisEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	userID, err := userFromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid analysis id")
		return
	}

	st := svcctx.StoreFrom(r.Context())
	if st == nil {
		writeError(w, http.StatusServiceUnavailable, "store not initialized")
		return
	}

	rec, err := st.GetAnalysis(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// Ownership mismatches look identical to missing records so IDs can't
	// be probed across accounts.
	if rec == nil || rec.UserID != userID {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{ID: rec.ID, Result: rec.Result})
}

func (e *GetAnalysisEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a stored analysis by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp AnalyzeResponse
			if err := client.Get(cmd.Context(), "/analyses/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteAnalysisEndpoint handles DELETE /analyses/{id}.
type DeleteAnalysisEndpoint struct{}

func (e *DeleteAnalysisEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/analyses/{id}", e.handler
}

func (e *DeleteAnalysisEndpoint) RequiresInit() bool { return true }

func (e *DeleteAnalysisEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	userID, err := userFromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid analysis id")
		return
	}

	st := svcctx.StoreFrom(r.Context())
	if st == nil {
		writeError(w, http.StatusServiceUnavailable, "store not initialized")
		return
	}

	rec, err := st.GetAnalysis(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil || rec.UserID != userID {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}

	if _, err := st.DeleteAnalysis(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (e *DeleteAnalysisEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/analyses/"+args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted")
			return nil
		},
	}
}
