package source

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ekisa-team/estimo/internal/invoke"
	"github.com/ekisa-team/estimo/internal/xfs"
)

// Puller pulls the artifact from a version-control managed store by running
// an external command with the local path as its last positional argument.
type Puller struct {
	executor *invoke.Executor
	args     []string
}

// NewPuller creates a puller that runs executor with args followed by the path.
func NewPuller(executor *invoke.Executor, args ...string) *Puller {
	return &Puller{
		executor: executor,
		args:     slices.Clone(args),
	}
}

// Name returns the tier name.
func (p *Puller) Name() string {
	return "pull"
}

// Fetch runs the pull command. The exit status is reported but the caller
// decides success by checking the file afterwards.
func (p *Puller) Fetch(ctx context.Context, localPath string) error {
	if err := xfs.EnsureParentDir(localPath); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	args := append(slices.Clone(p.args), localPath)

	slog.Info("Pulling artifact", "command", p.executor.Name(), "args", args)
	_, stderr, err := p.executor.Execute(ctx, args, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v: %s", ErrExternalTool, p.executor.Name(), err, strings.TrimSpace(string(stderr)))
	}

	return nil
}
