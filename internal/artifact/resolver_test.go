package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekisa-team/estimo/internal/config"
	"github.com/ekisa-team/estimo/internal/source"
)

// countingTier counts calls and optionally writes the artifact.
type countingTier struct {
	name   string
	writes bool
	err    error
	calls  atomic.Int32
}

func (c *countingTier) Name() string {
	return c.name
}

func (c *countingTier) Fetch(_ context.Context, localPath string) error {
	c.calls.Add(1)
	if c.writes {
		if err := os.WriteFile(localPath, []byte("{}"), 0o644); err != nil {
			return err
		}
	}
	return c.err
}

func newTiers() (*countingTier, *countingTier, *countingTier) {
	return &countingTier{name: "local"}, &countingTier{name: "pull"}, &countingTier{name: "remote"}
}

func TestResolve_LocalHitShortCircuits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	_, pull, remote := newTiers()

	res, err := NewResolver(path, WithPull(pull), WithRemote(remote)).Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateLocalHit, res.State)
	assert.Len(t, res.Tiers, 1)
	assert.Zero(t, pull.calls.Load())
	assert.Zero(t, remote.calls.Load())
}

func TestResolve_PullShortCircuits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	local, pull, remote := newTiers()
	pull.writes = true

	res, err := NewResolver(path, WithLocal(local), WithPull(pull), WithRemote(remote)).Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatePulledViaVCS, res.State)
	assert.EqualValues(t, 1, local.calls.Load())
	assert.EqualValues(t, 1, pull.calls.Load())
	assert.Zero(t, remote.calls.Load())
}

func TestResolve_PullExitStatusIsNotTheSourceOfTruth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	_, pull, remote := newTiers()
	pull.writes = true
	pull.err = errors.New("exit status 1")

	res, err := NewResolver(path, WithPull(pull), WithRemote(remote)).Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StatePulledViaVCS, res.State)
	assert.True(t, res.Tiers[1].OK)
	assert.Error(t, res.Tiers[1].Err)
	assert.Zero(t, remote.calls.Load())
}

func TestResolve_RemoteAfterPullFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	_, pull, remote := newTiers()
	pull.err = errors.New("dvc: executable file not found")
	remote.writes = true

	res, err := NewResolver(path, WithPull(pull), WithRemote(remote)).Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, StateDownloadedRemote, res.State)
	assert.Equal(t, []string{"local", "pull", "remote"}, tierNames(res.Tiers))
	assert.EqualValues(t, 1, remote.calls.Load())
}

func TestResolve_AllTiersFail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	local, pull, remote := newTiers()
	pull.err = errors.New("timeout")
	remote.err = errors.New("404")

	res, err := NewResolver(path, WithLocal(local), WithPull(pull), WithRemote(remote)).Resolve(context.Background())

	require.ErrorIs(t, err, ErrArtifactNotFound)
	var rerr *ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, []string{"local", "pull", "remote"}, tierNames(rerr.Attempted))
	assert.Contains(t, err.Error(), "remote: 404")
	assert.Equal(t, StateFailed, res.State)

	for _, tier := range []*countingTier{local, pull, remote} {
		assert.EqualValues(t, 1, tier.calls.Load(), tier.name)
	}
}

func TestResolve_DisabledTiersAreSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	_, err := NewResolver(path).Resolve(context.Background())

	var rerr *ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, []string{"local"}, tierNames(rerr.Attempted))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "local_hit", StateLocalHit.String())
	assert.Equal(t, "pulled_via_vcs", StatePulledViaVCS.String())
	assert.Equal(t, "downloaded_remote", StateDownloadedRemote.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unresolved", StateUnresolved.String())
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Root = "/srv/estimo"
	cfg.Artifact.Pull.Enabled = false

	r := NewFromConfig(cfg)

	assert.Equal(t, filepath.Join("/srv/estimo", "models/model.json"), r.Path())
	assert.Nil(t, r.pull)
	require.NotNil(t, r.remote)
	assert.Equal(t, "remote", r.remote.Name())
	assert.IsType(t, source.Local{}, r.local)
}

func tierNames(results []TierResult) []string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Tier)
	}
	return names
}
