package model

import (
	"log/slog"
	"sync"

	"github.com/ekisa-team/estimo/internal/artifact"
	"github.com/ekisa-team/estimo/internal/config"
)

// Manager builds the registry from config and applies config reloads to it.
type Manager struct {
	registry *Registry
	mu       sync.Mutex
}

// NewManager creates a Manager whose registry is configured from cfg.
func NewManager(cfg *config.Config, loader Loader) *Manager {
	registry := NewRegistry(
		artifact.NewFromConfig(cfg),
		loader,
		WithDimension(cfg.Artifact.Dimension),
		WithInitTimeout(cfg.Artifact.InitTimeout),
	)

	return &Manager{
		registry: registry,
	}
}

// Registry returns the model registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// ApplyConfig installs a resolver built from cfg for the next initialization.
// A loaded model keeps serving; operators call Reload to pick up the change.
func (m *Manager) ApplyConfig(cfg *config.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	resolver := artifact.NewFromConfig(cfg)
	m.registry.configure(resolver, cfg.Artifact.Dimension, cfg.Artifact.InitTimeout)

	slog.Info("Model config applied", "path", resolver.Path(), "dimension", cfg.Artifact.Dimension)
}
