package xfs

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces a leading tilde (~) with the user's home directory.
func ExpandTilde(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], string(filepath.Separator)))
		}
	}

	return path
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

// Resolve joins path onto root unless path is already absolute.
func Resolve(root, path string) string {
	path = ExpandTilde(path)
	if filepath.IsAbs(path) || root == "" {
		return path
	}

	return filepath.Join(ExpandTilde(root), path)
}

// EnsureParentDir creates the parent directory of path.
func EnsureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
