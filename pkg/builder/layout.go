package builder

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starconf/starconf/pkg/compiler"
)

// Layout describes the input tree consumed by a build:
//
//	<input>/environments/<env>.conf   one file per environment
//	<input>/apps/<app>/<env>.conf     optional per-pair overlay
//	<input>/vars/<name>.conf          shared fragments, resolved on demand
//
// The vars directory is never enumerated; fragments are reached only
// through vars() calls in script code.
type Layout struct {
	root string
}

// NewLayout returns the layout rooted at the given input directory.
func NewLayout(root string) Layout {
	return Layout{root: root}
}

// EnvironmentsDir returns the directory holding environment scripts.
func (l Layout) EnvironmentsDir() string {
	return filepath.Join(l.root, "environments")
}

// AppsDir returns the directory holding per-application overlay trees.
func (l Layout) AppsDir() string {
	return filepath.Join(l.root, "apps")
}

// VarsDir returns the directory holding shared fragments.
func (l Layout) VarsDir() string {
	return filepath.Join(l.root, "vars")
}

// Environments enumerates environment names, sorted.
func (l Layout) Environments() ([]string, error) {
	entries, err := os.ReadDir(l.EnvironmentsDir())
	if err != nil {
		return nil, compiler.NewIOError(l.EnvironmentsDir(), err)
	}
	var envs []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), compiler.ScriptExt) {
			continue
		}
		envs = append(envs, strings.TrimSuffix(entry.Name(), compiler.ScriptExt))
	}
	sort.Strings(envs)
	return envs, nil
}

// Apps enumerates application names, sorted. A missing apps directory is
// not an error; it just means there is nothing to build.
func (l Layout) Apps() ([]string, error) {
	entries, err := os.ReadDir(l.AppsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, compiler.NewIOError(l.AppsDir(), err)
	}
	var apps []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		apps = append(apps, entry.Name())
	}
	sort.Strings(apps)
	return apps, nil
}
