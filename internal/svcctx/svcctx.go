// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/biaslens/biaslens/internal/analyzer"
	"github.com/biaslens/biaslens/internal/auth"
	"github.com/biaslens/biaslens/internal/config"
	"github.com/biaslens/biaslens/internal/home"
	"github.com/biaslens/biaslens/internal/inference"
	"github.com/biaslens/biaslens/internal/store"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Config     *config.Config
	Store      *store.Store
	Auth       *auth.Service
	Classifier analyzer.Analyzer
	Generative analyzer.Analyzer
	Inference  *inference.Client
	Sidecar    *inference.ContainerManager
	Logger     *slog.Logger
	Home       *home.Dir
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// ConfigFrom extracts the active configuration from context.
func ConfigFrom(ctx context.Context) *config.Config {
	if s := ServicesFrom(ctx); s != nil {
		return s.Config
	}
	return nil
}

// StoreFrom extracts the database store from context.
func StoreFrom(ctx context.Context) *store.Store {
	if s := ServicesFrom(ctx); s != nil {
		return s.Store
	}
	return nil
}

// AuthFrom extracts the auth service from context.
func AuthFrom(ctx context.Context) *auth.Service {
	if s := ServicesFrom(ctx); s != nil {
		return s.Auth
	}
	return nil
}

// ClassifierFrom extracts the classifier-backed analyzer from context.
func ClassifierFrom(ctx context.Context) analyzer.Analyzer {
	if s := ServicesFrom(ctx); s != nil {
		return s.Classifier
	}
	return nil
}

// GenerativeFrom extracts the generative analyzer from context.
func GenerativeFrom(ctx context.Context) analyzer.Analyzer {
	if s := ServicesFrom(ctx); s != nil {
		return s.Generative
	}
	return nil
}

// InferenceFrom extracts the classifier sidecar client from context.
func InferenceFrom(ctx context.Context) *inference.Client {
	if s := ServicesFrom(ctx); s != nil {
		return s.Inference
	}
	return nil
}

// SidecarFrom extracts the classifier sidecar manager from context.
func SidecarFrom(ctx context.Context) *inference.ContainerManager {
	if s := ServicesFrom(ctx); s != nil {
		return s.Sidecar
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}

// HomeFrom extracts the home directory from context.
func HomeFrom(ctx context.Context) *home.Dir {
	if s := ServicesFrom(ctx); s != nil {
		return s.Home
	}
	return nil
}
