package source

import (
	"context"
	"fmt"

	"github.com/ekisa-team/estimo/internal/xfs"
)

// Local checks the local filesystem only. It has no side effects.
type Local struct{}

// Name returns the tier name.
func (Local) Name() string {
	return "local"
}

// Fetch succeeds when the artifact already exists at localPath.
func (Local) Fetch(_ context.Context, localPath string) error {
	if !xfs.FileExists(localPath) {
		return fmt.Errorf("%w: %s", ErrNotFound, localPath)
	}

	return nil
}
