package source

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/ekisa-team/estimo/internal/invoke"
)

// Origin identifies a repository on a git hosting service.
type Origin struct {
	Host  string
	Owner string
	Repo  string
}

// rawHosts maps hosting services onto their raw-content host.
var rawHosts = map[string]string{
	"github.com": "raw.githubusercontent.com",
}

// ParseOrigin parses an SSH-style (git@host:owner/repo.git), ssh:// or
// https:// remote into an Origin.
func ParseOrigin(raw string) (Origin, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Origin{}, fmt.Errorf("%w: empty", ErrInvalidOrigin)
	}

	var host, repoPath string
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return Origin{}, fmt.Errorf("%w: %q: %v", ErrInvalidOrigin, raw, err)
		}
		host, repoPath = u.Hostname(), u.Path
	} else {
		at := strings.LastIndex(s, "@")
		colon := strings.Index(s, ":")
		if colon < 0 || colon < at {
			return Origin{}, fmt.Errorf("%w: %q", ErrInvalidOrigin, raw)
		}
		host, repoPath = s[at+1:colon], s[colon+1:]
	}

	repoPath = strings.TrimSuffix(strings.Trim(repoPath, "/"), ".git")
	idx := strings.LastIndex(repoPath, "/")
	if host == "" || idx <= 0 || idx == len(repoPath)-1 {
		return Origin{}, fmt.Errorf("%w: %q: expected owner/repo", ErrInvalidOrigin, raw)
	}

	return Origin{
		Host:  strings.ToLower(host),
		Owner: repoPath[:idx],
		Repo:  repoPath[idx+1:],
	}, nil
}

// RawHost returns the raw-content host for the origin's hosting service.
func (o Origin) RawHost() string {
	if h, ok := rawHosts[o.Host]; ok {
		return h
	}

	return o.Host
}

// RawURL builds https://<raw-host>/<owner>/<repo>/<branch>/<relative-path>.
// An empty rawHost selects the origin's default raw host.
func (o Origin) RawURL(rawHost, branch, relPath string) string {
	if rawHost == "" {
		rawHost = o.RawHost()
	}

	rel := strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(relPath, "\\", "/")), "/")

	return "https://" + strings.TrimSuffix(rawHost, "/") + "/" + o.Owner + "/" + o.Repo + "/" + branch + "/" + rel
}

// DiscoverOrigin asks git for remote.origin.url.
func DiscoverOrigin(ctx context.Context, git *invoke.Executor) (string, error) {
	stdout, stderr, err := git.Execute(ctx, []string{"config", "--get", "remote.origin.url"}, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v: %s", ErrExternalTool, git.Name(), err, strings.TrimSpace(string(stderr)))
	}

	origin := strings.TrimSpace(string(stdout))
	if origin == "" {
		return "", fmt.Errorf("%w: remote.origin.url is not set", ErrInvalidOrigin)
	}

	return origin, nil
}
