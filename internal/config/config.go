package config

import (
	"time"
)

// Config holds the main configuration for the application.
type Config struct {
	Version  string         `json:"version"            yaml:"version"`
	Root     string         `json:"root,omitempty"     yaml:"root,omitempty"`
	Server   ServerConfig   `json:"server,omitempty"   yaml:"server,omitempty"`
	Artifact ArtifactConfig `json:"artifact,omitempty" yaml:"artifact,omitempty"`
}

// ServerConfig holds listener configuration.
type ServerConfig struct {
	HTTPPort        int           `json:"http_port,omitempty"        yaml:"http_port,omitempty"`
	GRPCPort        int           `json:"grpc_port,omitempty"        yaml:"grpc_port,omitempty"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout,omitempty" yaml:"shutdown_timeout,omitempty"`
}

// ArtifactConfig describes where the model artifact lives and how to obtain it.
type ArtifactConfig struct {
	// Path is the well-known local artifact path, relative to Root unless absolute.
	Path string `json:"path" yaml:"path"`

	// Dimension pins the expected feature count. Zero trusts the artifact.
	Dimension int `json:"dimension,omitempty" yaml:"dimension,omitempty"`

	// Eager starts resolution at startup instead of on the first request.
	Eager bool `json:"eager,omitempty" yaml:"eager,omitempty"`

	// InitTimeout bounds one whole resolution and load sequence.
	InitTimeout time.Duration `json:"init_timeout,omitempty" yaml:"init_timeout,omitempty"`

	Pull   PullConfig   `json:"pull,omitempty"   yaml:"pull,omitempty"`
	Remote RemoteConfig `json:"remote,omitempty" yaml:"remote,omitempty"`
}

// PullConfig configures the version-control pull tier.
type PullConfig struct {
	Enabled bool          `json:"enabled"           yaml:"enabled"`
	Command string        `json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string      `json:"args,omitempty"    yaml:"args,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// RemoteConfig configures the raw HTTP download tier.
type RemoteConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Origin is the repository remote (git@host:owner/repo.git or
	// https://host/owner/repo). Empty means ask git for remote.origin.url.
	Origin       string        `json:"origin,omitempty"        yaml:"origin,omitempty"`
	Branch       string        `json:"branch,omitempty"        yaml:"branch,omitempty"`
	RelativePath string        `json:"relative_path,omitempty" yaml:"relative_path,omitempty"`
	RawHost      string        `json:"raw_host,omitempty"      yaml:"raw_host,omitempty"`
	Token        string        `json:"token,omitempty"         yaml:"token,omitempty"`
	Timeout      time.Duration `json:"timeout,omitempty"       yaml:"timeout,omitempty"`
	// MaxBytes caps the downloaded artifact size.
	MaxBytes int64 `json:"max_bytes,omitempty" yaml:"max_bytes,omitempty"`
}

// ArtifactRelativePath returns the path used inside the origin repository.
// It falls back to the local artifact path when not configured.
func (c *Config) ArtifactRelativePath() string {
	if c.Artifact.Remote.RelativePath != "" {
		return c.Artifact.Remote.RelativePath
	}

	return c.Artifact.Path
}
