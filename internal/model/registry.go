package model

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ekisa-team/estimo/internal/artifact"
	"github.com/ekisa-team/estimo/internal/backend"
)

const defaultInitTimeout = 5 * time.Minute

// State is the lifecycle state of a Registry.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateUnavailable
)

// String returns the state as a lowercase string.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Resolver places the artifact on the local filesystem.
type Resolver interface {
	Resolve(ctx context.Context) (artifact.Resolution, error)
}

// Loader deserializes the artifact at path.
type Loader interface {
	Load(path string) (backend.Predictor, error)
}

// Status is a point-in-time view of the registry.
type Status struct {
	State      State
	Resolution artifact.Resolution
	Format     backend.Format
	Dimension  int
	LoadedAt   time.Time
	Attempts   int
	Err        error
}

// Registry holds the process's single predictor.
//
// The first Predictor call (or Warm) starts one resolution and load sequence
// in the background; concurrent callers wait for that same sequence. Its
// outcome, failure included, is kept until Reload is called. The sequence
// runs detached from any caller's context under the init timeout, so a
// caller giving up does not affect what gets memoized.
type Registry struct {
	resolver    Resolver
	loader      Loader
	dimension   int
	initTimeout time.Duration

	mu         sync.Mutex
	state      State
	predictor  backend.Predictor
	err        error
	resolution artifact.Resolution
	loadedAt   time.Time
	attempts   int
	inflight   chan struct{}
}

// Option configures a Registry.
type Option func(*Registry)

// WithDimension requires the loaded predictor to expect exactly d features.
// Zero disables the check.
func WithDimension(d int) Option {
	return func(r *Registry) {
		r.dimension = d
	}
}

// WithInitTimeout bounds one resolution and load sequence.
func WithInitTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.initTimeout = d
		}
	}
}

// NewRegistry creates an uninitialized registry.
func NewRegistry(resolver Resolver, loader Loader, opts ...Option) *Registry {
	r := &Registry{
		resolver:    resolver,
		loader:      loader,
		initTimeout: defaultInitTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Predictor returns the shared predictor, initializing it on first use. It
// returns an error wrapping ErrUnavailable when the registry is unavailable
// or ctx ends while waiting for initialization.
func (r *Registry) Predictor(ctx context.Context) (backend.Predictor, error) {
	r.mu.Lock()
	switch {
	case r.state == StateReady:
		p := r.predictor
		r.mu.Unlock()
		return p, nil
	case r.inflight == nil && r.state == StateUnavailable:
		err := r.err
		r.mu.Unlock()
		return nil, err
	}
	done := r.startLocked()
	r.mu.Unlock()

	if err := wait(ctx, done); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateReady {
		return r.predictor, nil
	}

	return nil, r.err
}

// Warm starts initialization without waiting for it.
func (r *Registry) Warm() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateUninitialized {
		r.startLocked()
	}
}

// Reload runs one new resolution and load sequence, or joins the one already
// running. A failed reload keeps a previously loaded predictor in service.
func (r *Registry) Reload(ctx context.Context) (Status, error) {
	r.mu.Lock()
	done := r.startLocked()
	r.mu.Unlock()

	if err := wait(ctx, done); err != nil {
		return r.Status(), err
	}

	status := r.Status()
	return status, status.Err
}

// configure replaces every setting used by the next initialization. It does
// not trigger one.
func (r *Registry) configure(resolver Resolver, dimension int, initTimeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resolver = resolver
	r.dimension = dimension
	if initTimeout > 0 {
		r.initTimeout = initTimeout
	}
}

// Status returns the registry's current state.
func (r *Registry) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Status{
		State:      r.state,
		Resolution: r.resolution,
		LoadedAt:   r.loadedAt,
		Attempts:   r.attempts,
		Err:        r.err,
	}
	if r.predictor != nil {
		s.Format = r.predictor.Format()
		s.Dimension = r.predictor.Dimension()
	}

	return s
}

// startLocked returns the channel of the in-flight initialization, starting
// one if none is running. r.mu must be held.
func (r *Registry) startLocked() chan struct{} {
	if r.inflight != nil {
		return r.inflight
	}

	done := make(chan struct{})
	r.inflight = done
	r.attempts++
	go r.initialize(r.resolver, r.dimension, r.initTimeout, r.attempts, done)

	return done
}

func (r *Registry) initialize(resolver Resolver, dimension int, timeout time.Duration, attempt int, done chan struct{}) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	slog.Info("Initializing model", "attempt", attempt)

	res, err := resolver.Resolve(ctx)
	var p backend.Predictor
	if err == nil {
		p, err = r.load(res.Path, dimension)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	defer close(done)

	r.inflight = nil
	r.resolution = res

	if err != nil {
		r.err = fmt.Errorf("%w: %w", ErrUnavailable, err)
		if r.state == StateReady {
			slog.Error("Model reload failed, keeping loaded model", "attempt", attempt, "error", err)
			return
		}

		r.state = StateUnavailable
		slog.Error("Model unavailable", "attempt", attempt, "duration", time.Since(start), "error", err)
		return
	}

	r.state = StateReady
	r.predictor = p
	r.err = nil
	r.loadedAt = time.Now()
	slog.Info("Model ready",
		"attempt", attempt,
		"path", res.Path,
		"resolver_state", res.State.String(),
		"format", p.Format(),
		"dimension", p.Dimension(),
		"duration", time.Since(start))
}

func (r *Registry) load(path string, dimension int) (backend.Predictor, error) {
	p, err := r.loader.Load(path)
	if err != nil {
		return nil, err
	}

	if dimension > 0 && p.Dimension() != dimension {
		return nil, fmt.Errorf("%w: artifact expects %d features, configured %d", backend.ErrDimension, p.Dimension(), dimension)
	}

	return p, nil
}

func wait(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for initialization: %w", ErrUnavailable, ctx.Err())
	}
}
