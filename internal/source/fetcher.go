package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ekisa-team/estimo/internal/invoke"
	"github.com/ekisa-team/estimo/internal/xfs"
)

const (
	defaultFetchTimeout = time.Minute
	defaultMaxBytes     = 512 << 20
	partialSuffix       = ".part"
)

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	// Origin is the repository remote. When empty, Discover is asked for it.
	Origin       string
	Discover     *invoke.Executor
	Branch       string
	RelativePath string
	RawHost      string
	Token        string
	Timeout      time.Duration
	// MaxBytes caps the download. Larger bodies fail the tier.
	MaxBytes int64
	Client   *http.Client
}

// Fetcher downloads the artifact from the raw-content host of its origin.
type Fetcher struct {
	cfg    FetcherConfig
	client *http.Client
}

// NewFetcher creates a new Fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultFetchTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}

	return &Fetcher{cfg: cfg, client: client}
}

// Name returns the tier name.
func (f *Fetcher) Name() string {
	return "remote"
}

// URL derives the download URL from the configured or discovered origin.
func (f *Fetcher) URL(ctx context.Context) (string, error) {
	raw := f.cfg.Origin
	if raw == "" {
		if f.cfg.Discover == nil {
			return "", fmt.Errorf("%w: no origin configured", ErrInvalidOrigin)
		}

		discovered, err := DiscoverOrigin(ctx, f.cfg.Discover)
		if err != nil {
			return "", err
		}
		raw = discovered
	}

	origin, err := ParseOrigin(raw)
	if err != nil {
		return "", err
	}

	return origin.RawURL(f.cfg.RawHost, f.cfg.Branch, f.cfg.RelativePath), nil
}

// Fetch downloads the artifact into localPath. Bytes land in a sibling
// ".part" file first so an interrupted transfer never leaves a file at
// localPath.
func (f *Fetcher) Fetch(ctx context.Context, localPath string) error {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	url, err := f.URL(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if f.cfg.Token != "" {
		req.Header.Set("Authorization", "token "+f.cfg.Token)
	}

	slog.Info("Downloading artifact", "url", url, "path", localPath)
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrExternalTool, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: GET %s: unexpected status %s", ErrExternalTool, url, resp.Status)
	}

	if err := xfs.EnsureParentDir(localPath); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	partial := localPath + partialSuffix
	out, err := os.Create(partial)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", partial, err)
	}

	written, err := io.Copy(out, io.LimitReader(resp.Body, f.cfg.MaxBytes+1))
	if err == nil && written > f.cfg.MaxBytes {
		err = fmt.Errorf("artifact exceeds %d bytes", f.cfg.MaxBytes)
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(partial)
		return fmt.Errorf("%w: GET %s: %v", ErrExternalTool, url, err)
	}

	if err := os.Rename(partial, localPath); err != nil {
		os.Remove(partial)
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}

	slog.Info("Artifact downloaded", "url", url, "path", localPath, "bytes", written)
	return nil
}
