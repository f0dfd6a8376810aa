// Package artifact resolves the model artifact onto the local filesystem.
//
// Resolution walks an ordered list of tiers (local check, version-control
// pull, raw HTTP download) and stops at the first tier after which a file
// exists at the artifact path. A tier's own error never decides success: the
// file does.
package artifact

import (
	"context"
	"log/slog"
	"time"

	"github.com/ekisa-team/estimo/internal/source"
	"github.com/ekisa-team/estimo/internal/xfs"
)

// State is the outcome of a resolution.
type State int

const (
	StateUnresolved State = iota
	StateLocalHit
	StatePulledViaVCS
	StateDownloadedRemote
	StateFailed
)

// String returns the state as a snake_case string.
func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateLocalHit:
		return "local_hit"
	case StatePulledViaVCS:
		return "pulled_via_vcs"
	case StateDownloadedRemote:
		return "downloaded_remote"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Tier is one strategy for placing the artifact at a local path.
type Tier interface {
	Name() string
	Fetch(ctx context.Context, localPath string) error
}

// TierResult records one tier attempt.
type TierResult struct {
	Tier     string
	OK       bool
	Err      error
	Duration time.Duration
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	Path  string
	State State
	Tiers []TierResult
}

type stage struct {
	tier  Tier
	state State
}

// Resolver obtains the artifact through the local, pull and remote tiers.
type Resolver struct {
	path   string
	local  Tier
	pull   Tier
	remote Tier
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLocal replaces the local filesystem tier.
func WithLocal(t Tier) Option {
	return func(r *Resolver) {
		r.local = t
	}
}

// WithPull sets the version-control pull tier. Nil disables it.
func WithPull(t Tier) Option {
	return func(r *Resolver) {
		r.pull = t
	}
}

// WithRemote sets the raw download tier. Nil disables it.
func WithRemote(t Tier) Option {
	return func(r *Resolver) {
		r.remote = t
	}
}

// NewResolver creates a resolver for the artifact at path. Only the local
// tier is enabled unless options add the others.
func NewResolver(path string, opts ...Option) *Resolver {
	r := &Resolver{
		path:  path,
		local: source.Local{},
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Path returns the local artifact path.
func (r *Resolver) Path() string {
	return r.path
}

// Resolve runs the tiers in order. It never retries a tier and returns a
// *ResolutionError when none of them left a file at the artifact path.
func (r *Resolver) Resolve(ctx context.Context) (Resolution, error) {
	stages := []stage{
		{r.local, StateLocalHit},
		{r.pull, StatePulledViaVCS},
		{r.remote, StateDownloadedRemote},
	}

	res := Resolution{Path: r.path, State: StateUnresolved}
	for _, st := range stages {
		if st.tier == nil {
			continue
		}

		start := time.Now()
		err := st.tier.Fetch(ctx, r.path)
		result := TierResult{
			Tier:     st.tier.Name(),
			OK:       xfs.FileExists(r.path),
			Err:      err,
			Duration: time.Since(start),
		}
		res.Tiers = append(res.Tiers, result)

		if result.OK {
			if err != nil {
				slog.Warn("Tier reported failure but artifact is present", "tier", result.Tier, "path", r.path, "error", err)
			}
			res.State = st.state
			slog.Info("Artifact resolved", "tier", result.Tier, "state", res.State.String(), "path", r.path, "duration", result.Duration)
			return res, nil
		}

		slog.Warn("Tier failed", "tier", result.Tier, "path", r.path, "duration", result.Duration, "error", err)
	}

	res.State = StateFailed
	slog.Error("Artifact could not be resolved", "path", r.path, "tiers", len(res.Tiers))

	return res, &ResolutionError{Path: r.path, Attempted: res.Tiers}
}
