package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DataDirName is the per-workspace directory holding callroot state
	DataDirName = ".callroot"
	// ManifestFileName is the workspace manifest inside the data dir
	ManifestFileName = "workspace.toml"
	// DatabaseFileName is the redirect store inside the data dir
	DatabaseFileName = "callroot.db"
	// ConfigFileName is the viper config file (without extension)
	ConfigFileName = "config"
	// LogsSubdir holds log files inside the data dir
	LogsSubdir = "logs"
)

// GetDataDir returns <root>/.callroot
func GetDataDir(root string) string {
	return filepath.Join(root, DataDirName)
}

// EnsureDataDir creates <root>/.callroot if needed and returns it
func EnsureDataDir(root string) (string, error) {
	dir := GetDataDir(root)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// GetManifestPath returns the default workspace manifest path
func GetManifestPath(root string) string {
	return filepath.Join(GetDataDir(root), ManifestFileName)
}

// GetDatabasePath returns the default redirect database path
func GetDatabasePath(root string) string {
	return filepath.Join(GetDataDir(root), DatabaseFileName)
}

// GetLogPath returns <root>/.callroot/logs/<name>.log
func GetLogPath(root, name string) string {
	return filepath.Join(GetDataDir(root), LogsSubdir, name+".log")
}

// ResolveAgainst returns p unchanged when absolute, otherwise joined to root
func ResolveAgainst(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// CanonicalizePath converts an absolute path to a root-relative canonical path
// with forward slashes. Symlinks are resolved when the path exists.
func CanonicalizePath(absolutePath string, root string) (string, error) {
	resolved, err := filepath.EvalSymlinks(absolutePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		resolved = absolutePath
	}

	rootResolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		rootResolved = root
	}

	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// IsWithinRoot checks if a path is inside root
func IsWithinRoot(path string, root string) bool {
	canonical, err := CanonicalizePath(path, root)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// JoinRootPath joins a root with a canonical forward-slash path
func JoinRootPath(root string, canonicalPath string) string {
	parts := strings.Split(strings.ReplaceAll(canonicalPath, "\\", "/"), "/")
	return filepath.Join(append([]string{root}, parts...)...)
}
