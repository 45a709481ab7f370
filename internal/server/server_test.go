package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biaslens/biaslens/internal/analysis"
	"github.com/biaslens/biaslens/internal/analyzer"
	"github.com/biaslens/biaslens/internal/config"
	"github.com/biaslens/biaslens/internal/home"
	"github.com/biaslens/biaslens/internal/providers"
	"github.com/biaslens/biaslens/internal/server/endpoints"
)

// ageScorer flags any clause mentioning "old man" with a strong age score.
type ageScorer struct{}

func (ageScorer) Name() string { return "stub" }

func (ageScorer) Score(ctx context.Context, text string) ([]analysis.LabelScore, error) {
	if strings.Contains(text, "old man") {
		return []analysis.LabelScore{{Label: "age", Confidence: 0.82, LabelID: 2}}, nil
	}
	return []analysis.LabelScore{{Label: "age", Confidence: 0.02, LabelID: 2}}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := fmt.Sprintf(`server:
  host: 127.0.0.1
  port: "0"
classifier:
  managed: false
store:
  path: %s
`, filepath.Join(dir, "biaslens.db"))
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	mgr, err := config.NewManager(cfgPath)
	if err != nil {
		t.Fatalf("creating config manager: %v", err)
	}
	homeDir, err := home.New(dir)
	if err != nil {
		t.Fatalf("creating home dir: %v", err)
	}

	mock := providers.NewMockClient()
	mock.ResponseJSON = json.RawMessage(`{"bias_instances":[{"text_span":"old man","category":"Age","explanation":"ageist framing"}]}`)

	s, err := New(Config{
		Home:          homeDir,
		ConfigManager: mgr,
		Logger:        testLogger(),
		Scorer:        ageScorer{},
		LLMClient:     mock,
	})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	if err := s.initServices(context.Background()); err != nil {
		t.Fatalf("initializing services: %v", err)
	}
	t.Cleanup(func() {
		if err := s.db.Close(); err != nil {
			t.Errorf("closing store: %v", err)
		}
	})
	return s
}

func postJSON(t *testing.T, h http.Handler, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling body: %v", err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func getJSON(t *testing.T, h http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func TestRequireInitBeforeStart(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("classifier:\n  managed: false\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	mgr, err := config.NewManager(cfgPath)
	if err != nil {
		t.Fatalf("creating config manager: %v", err)
	}
	homeDir, err := home.New(dir)
	if err != nil {
		t.Fatalf("creating home dir: %v", err)
	}

	s, err := New(Config{Home: homeDir, ConfigManager: mgr, Logger: testLogger(), Scorer: ageScorer{}})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	// Services are not wired until Start runs.
	w := postJSON(t, s.Handler(), "/analyze", "", endpoints.AnalyzeRequest{Text: "hello"})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before init, got %d", w.Code)
	}

	// Health does not require initialization.
	w = getJSON(t, s.Handler(), "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected /health 200 before init, got %d", w.Code)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	doc := "I love sunny days. The old man can't use a phone anyway."

	t.Run("flags biased clause", func(t *testing.T) {
		w := postJSON(t, h, "/analyze", "", endpoints.AnalyzeRequest{Text: doc})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		resp := decodeBody[endpoints.AnalyzeResponse](t, w)
		if resp.ID == 0 {
			t.Error("expected persisted analysis ID")
		}
		if len(resp.FlaggedUnits) != 1 {
			t.Fatalf("expected 1 flagged unit, got %d", len(resp.FlaggedUnits))
		}
		if resp.Summary.RiskLevel != analysis.RiskMedium {
			t.Errorf("expected Medium risk, got %q", resp.Summary.RiskLevel)
		}
	})

	t.Run("request threshold overrides default", func(t *testing.T) {
		threshold := 0.9
		w := postJSON(t, h, "/analyze", "", endpoints.AnalyzeRequest{Text: doc, ConfidenceThreshold: &threshold})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		resp := decodeBody[endpoints.AnalyzeResponse](t, w)
		if len(resp.FlaggedUnits) != 0 {
			t.Errorf("expected no flagged units at threshold 0.9, got %d", len(resp.FlaggedUnits))
		}
	})

	t.Run("empty text", func(t *testing.T) {
		w := postJSON(t, h, "/analyze", "", endpoints.AnalyzeRequest{Text: "   "})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("threshold out of range", func(t *testing.T) {
		threshold := 1.5
		w := postJSON(t, h, "/analyze", "", endpoints.AnalyzeRequest{Text: doc, ConfidenceThreshold: &threshold})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/analyze", strings.NewReader("{not json"))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

func TestAnalyzeLLMEndpoint(t *testing.T) {
	s := newTestServer(t)
	doc := "The old man can't use a phone anyway."

	w := postJSON(t, s.Handler(), "/analyze/llm", "", endpoints.AnalyzeRequest{Text: doc})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody[endpoints.AnalyzeResponse](t, w)
	if len(resp.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(resp.Findings))
	}
	if resp.Findings[0].Category != "Age" {
		t.Errorf("expected Age category, got %q", resp.Findings[0].Category)
	}
	if len(resp.FlaggedUnits) != 0 {
		t.Errorf("generative results carry no per-clause scores, got %d", len(resp.FlaggedUnits))
	}
}

func TestAnalyzeSimpleEndpoint(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	doc := "I love sunny days. The old man can't use a phone anyway."

	t.Run("condensed classifier view", func(t *testing.T) {
		w := postJSON(t, h, "/analyze/simple", "", endpoints.AnalyzeRequest{Text: doc})
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		resp := decodeBody[endpoints.SimpleAnalysisResponse](t, w)
		if !resp.BiasDetected {
			t.Error("expected bias_detected true")
		}
		if len(resp.BiasedClauses) != 1 {
			t.Errorf("expected 1 biased clause, got %d", len(resp.BiasedClauses))
		}
		if resp.Summary.TotalUnitsAnalyzed != 2 {
			t.Errorf("expected 2 units analyzed, got %d", resp.Summary.TotalUnitsAnalyzed)
		}
	})

	t.Run("threshold out of range", func(t *testing.T) {
		threshold := 1.5
		w := postJSON(t, h, "/analyze/simple", "", endpoints.AnalyzeRequest{Text: doc, ConfidenceThreshold: &threshold})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

func TestHealthAndStatus(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	t.Run("health", func(t *testing.T) {
		w := getJSON(t, h, "/health", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		resp := decodeBody[endpoints.HealthResponse](t, w)
		if resp.Status != "ok" {
			t.Errorf("expected status ok, got %q", resp.Status)
		}
	})

	t.Run("status lists classifier labels", func(t *testing.T) {
		w := getJSON(t, h, "/status", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		resp := decodeBody[endpoints.StatusResponse](t, w)
		if len(resp.BiasTypes) != len(analysis.ClassifierLabels) {
			t.Errorf("expected %d bias types, got %d", len(analysis.ClassifierLabels), len(resp.BiasTypes))
		}
	})
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	creds := endpoints.CredentialsRequest{Username: "alice", Password: "correct horse"}

	w := postJSON(t, h, "/auth/register", "", creds)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	reg := decodeBody[endpoints.RegisterResponse](t, w)
	if reg.Username != "alice" || reg.UserID == 0 {
		t.Errorf("unexpected register response: %+v", reg)
	}

	t.Run("duplicate username", func(t *testing.T) {
		w := postJSON(t, h, "/auth/register", "", creds)
		if w.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", w.Code)
		}
	})

	t.Run("weak password", func(t *testing.T) {
		w := postJSON(t, h, "/auth/register", "", endpoints.CredentialsRequest{Username: "bob", Password: "short"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("login and logout", func(t *testing.T) {
		w := postJSON(t, h, "/auth/login", "", creds)
		if w.Code != http.StatusOK {
			t.Fatalf("login: expected 200, got %d", w.Code)
		}
		token := decodeBody[endpoints.LoginResponse](t, w).Token
		if token == "" {
			t.Fatal("expected a session token")
		}

		w = postJSON(t, h, "/auth/logout", token, struct{}{})
		if w.Code != http.StatusOK {
			t.Errorf("logout: expected 200, got %d", w.Code)
		}

		// Token is dead after logout.
		w = getJSON(t, h, "/analyses", token)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 with revoked token, got %d", w.Code)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		w := postJSON(t, h, "/auth/login", "", endpoints.CredentialsRequest{Username: "alice", Password: "wrong password"})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})
}

func TestAnalysisHistory(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()
	doc := "The old man can't use a phone anyway."

	login := func(username string) string {
		t.Helper()
		creds := endpoints.CredentialsRequest{Username: username, Password: "correct horse"}
		if w := postJSON(t, h, "/auth/register", "", creds); w.Code != http.StatusCreated {
			t.Fatalf("register %s: got %d", username, w.Code)
		}
		w := postJSON(t, h, "/auth/login", "", creds)
		if w.Code != http.StatusOK {
			t.Fatalf("login %s: got %d", username, w.Code)
		}
		return decodeBody[endpoints.LoginResponse](t, w).Token
	}

	alice := login("alice")
	mallory := login("mallory")

	w := postJSON(t, h, "/analyze", alice, endpoints.AnalyzeRequest{Text: doc})
	if w.Code != http.StatusOK {
		t.Fatalf("analyze: got %d", w.Code)
	}
	id := decodeBody[endpoints.AnalyzeResponse](t, w).ID
	if id == 0 {
		t.Fatal("expected persisted ID")
	}

	t.Run("list scoped to owner", func(t *testing.T) {
		w := getJSON(t, h, "/analyses", alice)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		resp := decodeBody[endpoints.ListAnalysesResponse](t, w)
		if len(resp.Analyses) != 1 {
			t.Fatalf("expected 1 analysis, got %d", len(resp.Analyses))
		}
		if resp.Analyses[0].ID != id {
			t.Errorf("expected ID %d, got %d", id, resp.Analyses[0].ID)
		}

		w = getJSON(t, h, "/analyses", mallory)
		resp = decodeBody[endpoints.ListAnalysesResponse](t, w)
		if len(resp.Analyses) != 0 {
			t.Errorf("expected empty list for other user, got %d", len(resp.Analyses))
		}
	})

	t.Run("hidden from anonymous requests", func(t *testing.T) {
		w := getJSON(t, h, fmt.Sprintf("/analyses/%d", id), "")
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})

	t.Run("foreign IDs look missing", func(t *testing.T) {
		w := getJSON(t, h, fmt.Sprintf("/analyses/%d", id), mallory)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})

	t.Run("get and delete", func(t *testing.T) {
		w := getJSON(t, h, fmt.Sprintf("/analyses/%d", id), alice)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		resp := decodeBody[endpoints.AnalyzeResponse](t, w)
		if resp.OriginalText != doc {
			t.Errorf("expected original text round-trip, got %q", resp.Result.OriginalText)
		}

		req := httptest.NewRequest("DELETE", fmt.Sprintf("/analyses/%d", id), nil)
		req.Header.Set("Authorization", "Bearer "+alice)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("delete: expected 200, got %d", rec.Code)
		}

		w = getJSON(t, h, fmt.Sprintf("/analyses/%d", id), alice)
		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404 after delete, got %d", w.Code)
		}
	})
}

func TestNoAnalyzerBackend(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfgYAML := `classifier:
  managed: false
llm:
  api_key: ""
`
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	mgr, err := config.NewManager(cfgPath)
	if err != nil {
		t.Fatalf("creating config manager: %v", err)
	}
	homeDir, err := home.New(dir)
	if err != nil {
		t.Fatalf("creating home dir: %v", err)
	}

	s, err := New(Config{Home: homeDir, ConfigManager: mgr, Logger: testLogger()})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	if err := s.initServices(context.Background()); err == nil {
		t.Error("expected error with no classifier and no LLM key")
	}
}

var _ analyzer.Scorer = ageScorer{}
