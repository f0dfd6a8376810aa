package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/estimo/internal/envvar"
)

const sampleConfig = `
version: "1"
root: /srv/estimo
server:
  http_port: 8080
artifact:
  path: models/model.json
  dimension: 4
  eager: true
  pull:
    enabled: false
  remote:
    enabled: true
    origin: git@github.com:acme/homes.git
    branch: release
    timeout: 30s
`

func TestParse_AppliesFileOverDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig), "")
	require.NoError(t, err)

	assert.Equal(t, "/srv/estimo", cfg.Root)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, DefaultGRPCPort(), cfg.Server.GRPCPort)
	assert.Equal(t, 4, cfg.Artifact.Dimension)
	assert.True(t, cfg.Artifact.Eager)
	assert.False(t, cfg.Artifact.Pull.Enabled)
	assert.Equal(t, "dvc", cfg.Artifact.Pull.Command)
	assert.Equal(t, "release", cfg.Artifact.Remote.Branch)
	assert.Equal(t, 30*time.Second, cfg.Artifact.Remote.Timeout)
	assert.Equal(t, int64(512<<20), cfg.Artifact.Remote.MaxBytes)
	assert.Equal(t, 5*time.Minute, cfg.Artifact.InitTimeout)
	assert.Equal(t, "models/model.json", cfg.ArtifactRelativePath())
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("version: \"1\"\nartifact:\n  bogus: true\n"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestParse_RejectsBadDuration(t *testing.T) {
	_, err := Parse([]byte("version: \"1\"\nartifact:\n  init_timeout: soon\n"), "")
	assert.Error(t, err)
}

func TestParse_RejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("version: [\n"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML")
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv(envvar.EstimoServerHTTPPort, "7000")
	t.Setenv(envvar.EstimoArtifactPath, "/tmp/model.json")
	t.Setenv(envvar.EstimoOrigin, "https://github.com/acme/other")

	cfg, err := Parse([]byte("version: \"1\"\n"), "")
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.HTTPPort)
	assert.Equal(t, "/tmp/model.json", cfg.Artifact.Path)
	assert.Equal(t, "https://github.com/acme/other", cfg.Artifact.Remote.Origin)
}

func TestParse_InvalidEnvPort(t *testing.T) {
	t.Setenv(envvar.EstimoServerGRPCPort, "grpc")

	_, err := Parse([]byte("version: \"1\"\n"), "")
	assert.Error(t, err)
}

func TestLoadAndValidate_MissingFile(t *testing.T) {
	_, err := LoadAndValidate(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1\"\n"), 0o644))

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, "", func(cfg *Config, err error) {
		if err != nil {
			return
		}
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, DefaultHTTPPort(), w.Snapshot().Server.HTTPPort)

	require.NoError(t, os.WriteFile(path, []byte("version: \"1\"\nserver:\n  http_port: 6001\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 6001, cfg.Server.HTTPPort)
		assert.Equal(t, 6001, w.Snapshot().Server.HTTPPort)
		assert.GreaterOrEqual(t, w.ReloadCount(), uint32(1))
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}
