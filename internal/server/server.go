// Package server wires the analyzers, store, auth, and classifier sidecar
// into one HTTP server with a managed lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/biaslens/biaslens/internal/analyzer"
	"github.com/biaslens/biaslens/internal/api"
	"github.com/biaslens/biaslens/internal/auth"
	"github.com/biaslens/biaslens/internal/config"
	"github.com/biaslens/biaslens/internal/home"
	"github.com/biaslens/biaslens/internal/inference"
	"github.com/biaslens/biaslens/internal/providers"
	"github.com/biaslens/biaslens/internal/server/endpoints"
	"github.com/biaslens/biaslens/internal/store"
	"github.com/biaslens/biaslens/internal/svcctx"
)

// sidecarStartTimeout bounds the wait for the classifier container to load
// its model. First start pulls the image and downloads weights.
const sidecarStartTimeout = 2 * time.Minute

// Server is the main biaslens HTTP server. When the classifier sidecar is
// managed it is started on server start and stopped on shutdown.
type Server struct {
	httpServer  *http.Server
	sidecar     *inference.ContainerManager
	inferClient *inference.Client
	db          *store.Store
	configMgr   *config.Manager
	homeDir     *home.Dir
	logger      *slog.Logger

	// scorer and llmClient are test seams; production wiring builds them
	// from config during Start.
	scorer    analyzer.Scorer
	llmClient providers.LLMClient

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8000)
	Port string
	// Home is the biaslens home directory
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger

	// Scorer overrides the sidecar-backed scorer (tests only).
	Scorer analyzer.Scorer
	// LLMClient overrides the config-built LLM client (tests only).
	LLMClient providers.LLMClient
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ConfigManager == nil {
		return nil, errors.New("config manager is required")
	}
	if cfg.Home == nil {
		return nil, errors.New("home directory is required")
	}

	appCfg := cfg.ConfigManager.Get()

	s := &Server{
		configMgr: cfg.ConfigManager,
		homeDir:   cfg.Home,
		logger:    cfg.Logger,
		scorer:    cfg.Scorer,
		llmClient: cfg.LLMClient,
	}

	// Managed classifier deployments get a container manager; unmanaged
	// ones talk to classifier.url directly.
	if appCfg.Classifier.Managed && cfg.Scorer == nil {
		modelPath := appCfg.Classifier.ModelPath
		if modelPath == "" {
			modelPath = cfg.Home.ModelsPath()
		}
		sidecar, err := inference.NewContainerManager(inference.DockerConfig{
			ContainerName: appCfg.Classifier.ContainerName,
			Image:         appCfg.Classifier.Image,
			ModelPath:     modelPath,
			HostPort:      appCfg.Classifier.Port,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create sidecar manager: %w", err)
		}
		s.sidecar = sidecar
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{Sidecar: s.sidecar}) {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // generative analyses can be slow
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server and, when managed, the classifier sidecar.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.initServices(ctx); err != nil {
		s.setNotRunning()
		return err
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// initServices opens the store, brings up the analyzer backends, and builds
// the service context handlers read from.
func (s *Server) initServices(ctx context.Context) error {
	appCfg := s.configMgr.Get()

	// Open the store
	db, err := store.Open(s.databasePath(appCfg), store.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	s.db = db

	// Bring up the classifier backend
	scorer := s.scorer
	if scorer == nil {
		client, err := s.startClassifier(ctx, appCfg)
		if err != nil {
			_ = s.db.Close()
			return err
		}
		s.inferClient = client
		if client != nil {
			scorer = client
		}
	}

	var classifierAnalyzer analyzer.Analyzer
	if scorer != nil {
		classifierAnalyzer = analyzer.NewClassifier(scorer,
			analyzer.WithWorkers(appCfg.Analyzer.Workers),
			analyzer.WithClassifierLogger(s.logger),
		)
	}

	var generativeAnalyzer analyzer.Analyzer
	if llm := s.buildLLMClient(appCfg); llm != nil {
		generativeAnalyzer = analyzer.NewGenerative(llm,
			analyzer.WithModel(appCfg.LLM.Model),
			analyzer.WithGenerativeLogger(s.logger),
		)
	}

	if classifierAnalyzer == nil && generativeAnalyzer == nil {
		_ = s.db.Close()
		return errors.New("no analyzer backend available: configure the classifier sidecar or an LLM provider")
	}

	s.services = &svcctx.Services{
		Config:     appCfg,
		Store:      s.db,
		Auth:       auth.NewService(s.db),
		Classifier: classifierAnalyzer,
		Generative: generativeAnalyzer,
		Inference:  s.inferClient,
		Sidecar:    s.sidecar,
		Logger:     s.logger,
		Home:       s.homeDir,
	}

	return nil
}

// startClassifier brings up the sidecar (when managed) and returns a client
// for it, or nil when no classifier is configured.
func (s *Server) startClassifier(ctx context.Context, appCfg *config.Config) (*inference.Client, error) {
	if s.sidecar != nil {
		if err := s.sidecar.ValidateExisting(ctx); err != nil {
			return nil, fmt.Errorf("existing classifier container incompatible: %w", err)
		}

		s.logger.Info("starting classifier sidecar")
		if err := s.sidecar.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start classifier sidecar: %w", err)
		}
		if err := s.sidecar.WaitReady(ctx, sidecarStartTimeout); err != nil {
			return nil, fmt.Errorf("classifier sidecar never became ready: %w", err)
		}

		client := inference.NewClient(s.sidecar.URL())
		if err := client.HealthCheck(ctx); err != nil {
			return nil, fmt.Errorf("classifier health check failed: %w", err)
		}
		s.logger.Info("classifier sidecar is ready", "url", s.sidecar.URL())
		return client, nil
	}

	if appCfg.Classifier.URL != "" {
		client := inference.NewClient(appCfg.Classifier.URL)
		if err := client.HealthCheck(ctx); err != nil {
			s.logger.Warn("external classifier is unhealthy, continuing without it",
				"url", appCfg.Classifier.URL,
				"error", err)
			return nil, nil
		}
		return client, nil
	}

	return nil, nil
}

// buildLLMClient constructs the generative backend from config.
func (s *Server) buildLLMClient(appCfg *config.Config) providers.LLMClient {
	if s.llmClient != nil {
		return s.llmClient
	}

	apiKey := appCfg.ResolvedAPIKey()
	if apiKey == "" {
		s.logger.Warn("no LLM API key configured, generative analysis disabled")
		return nil
	}

	switch appCfg.LLM.Provider {
	case "openai":
		return providers.NewOpenAIClient(providers.OpenAIConfig{
			APIKey:       apiKey,
			DefaultModel: appCfg.LLM.Model,
			BaseURL:      appCfg.LLM.BaseURL,
		})
	case "openrouter", "":
		return providers.NewOpenRouterClient(providers.OpenRouterConfig{
			APIKey:       apiKey,
			DefaultModel: appCfg.LLM.Model,
			BaseURL:      appCfg.LLM.BaseURL,
		})
	default:
		s.logger.Warn("unknown LLM provider, generative analysis disabled",
			"provider", appCfg.LLM.Provider)
		return nil
	}
}

// databasePath resolves the SQLite path from config with the home layout as
// fallback.
func (s *Server) databasePath(appCfg *config.Config) string {
	if appCfg.Store.Path != "" {
		return appCfg.Store.Path
	}
	return s.homeDir.DatabasePath()
}

// shutdown performs graceful shutdown of the HTTP server, sidecar, and store.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.sidecar != nil {
		s.logger.Info("stopping classifier sidecar")
		if err := s.sidecar.Stop(shutdownCtx); err != nil {
			s.logger.Error("sidecar stop error", "error", err)
		}
		if err := s.sidecar.Close(); err != nil {
			s.logger.Error("sidecar manager close error", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("store close error", "error", err)
		}
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the fully wired HTTP handler (tests drive it directly).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable while the store and analyzers come up.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.services == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
