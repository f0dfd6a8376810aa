package artifact

import (
	"github.com/ekisa-team/estimo/internal/config"
	"github.com/ekisa-team/estimo/internal/invoke"
	"github.com/ekisa-team/estimo/internal/source"
	"github.com/ekisa-team/estimo/internal/xfs"
)

// NewFromConfig builds a resolver with the tiers enabled in cfg. The pull
// command and origin discovery both run in the configured root.
func NewFromConfig(cfg *config.Config, opts ...Option) *Resolver {
	root := xfs.ExpandTilde(cfg.Root)
	path := xfs.Resolve(root, cfg.Artifact.Path)

	var base []Option
	if pull := cfg.Artifact.Pull; pull.Enabled {
		executor := invoke.NewExecutor(pull.Command, pull.Timeout).WithDir(root)
		base = append(base, WithPull(source.NewPuller(executor, pull.Args...)))
	}
	if remote := cfg.Artifact.Remote; remote.Enabled {
		base = append(base, WithRemote(source.NewFetcher(source.FetcherConfig{
			Origin:       remote.Origin,
			Discover:     invoke.NewExecutor("git", remote.Timeout).WithDir(root),
			Branch:       remote.Branch,
			RelativePath: cfg.ArtifactRelativePath(),
			RawHost:      remote.RawHost,
			Token:        remote.Token,
			Timeout:      remote.Timeout,
			MaxBytes:     remote.MaxBytes,
		})))
	}

	return NewResolver(path, append(base, opts...)...)
}
