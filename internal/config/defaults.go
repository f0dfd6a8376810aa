package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	defaultHTTPPort        = 5000
	defaultGRPCPort        = 9090
	defaultShutdownTimeout = 10 * time.Second
	defaultArtifactPath    = "models/model.json"
	defaultInitTimeout     = 5 * time.Minute
	defaultPullCommand     = "dvc"
	defaultPullTimeout     = 2 * time.Minute
	defaultRemoteBranch    = "main"
	defaultRemoteTimeout   = time.Minute
	defaultRemoteMaxBytes  = 512 << 20
)

// DefaultHTTPPort returns the default HTTP port.
func DefaultHTTPPort() int {
	return defaultHTTPPort
}

// DefaultGRPCPort returns the default gRPC port.
func DefaultGRPCPort() int {
	return defaultGRPCPort
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Version: "1",
		Root:    ".",
		Server: ServerConfig{
			HTTPPort:        defaultHTTPPort,
			GRPCPort:        defaultGRPCPort,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Artifact: ArtifactConfig{
			Path:        defaultArtifactPath,
			InitTimeout: defaultInitTimeout,
			Pull: PullConfig{
				Enabled: true,
				Command: defaultPullCommand,
				Args:    []string{"pull"},
				Timeout: defaultPullTimeout,
			},
			Remote: RemoteConfig{
				Enabled:  true,
				Branch:   defaultRemoteBranch,
				Timeout:  defaultRemoteTimeout,
				MaxBytes: defaultRemoteMaxBytes,
			},
		},
	}
}

// DefaultConfigPath returns the default path for the estimo config directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "estimo", "config")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "estimo")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "estimo")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "estimo")
		}
		return filepath.Join(home, ".config", "estimo")
	}
}

// fillZero restores defaults for fields a config file zeroed out.
func fillZero(cfg *Config) {
	def := Default()

	if cfg.Root == "" {
		cfg.Root = def.Root
	}
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = def.Server.HTTPPort
	}
	if cfg.Server.GRPCPort == 0 {
		cfg.Server.GRPCPort = def.Server.GRPCPort
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if cfg.Artifact.Path == "" {
		cfg.Artifact.Path = def.Artifact.Path
	}
	if cfg.Artifact.InitTimeout == 0 {
		cfg.Artifact.InitTimeout = def.Artifact.InitTimeout
	}
	if cfg.Artifact.Pull.Command == "" {
		cfg.Artifact.Pull.Command = def.Artifact.Pull.Command
	}
	if cfg.Artifact.Pull.Timeout == 0 {
		cfg.Artifact.Pull.Timeout = def.Artifact.Pull.Timeout
	}
	if cfg.Artifact.Remote.Branch == "" {
		cfg.Artifact.Remote.Branch = def.Artifact.Remote.Branch
	}
	if cfg.Artifact.Remote.Timeout == 0 {
		cfg.Artifact.Remote.Timeout = def.Artifact.Remote.Timeout
	}
	if cfg.Artifact.Remote.MaxBytes == 0 {
		cfg.Artifact.Remote.MaxBytes = def.Artifact.Remote.MaxBytes
	}
}
