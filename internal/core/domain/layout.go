package domain

import (
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

const (
	// BuildDirName is the project's managed build-output directory. Every
	// derived artifact is placed under it, so the whole directory is
	// cleanable as a unit.
	BuildDirName = ".build"

	// ExtDirName is the directory for external repositories (submodules).
	ExtDirName = "ext"

	// KRepoDirName is the K framework checkout inside the ext directory.
	KRepoDirName = "k"

	// ManifestFileName is the generated ninja manifest inside the build
	// directory.
	ManifestFileName = "generated.ninja"

	// ProveExpectedFileName is the shared baseline for proof check stages.
	ProveExpectedFileName = "kprove.expected"

	// UseSystemKEnv selects a pre-installed K toolchain instead of one built
	// from the ext submodule.
	UseSystemKEnv = "KNINJA_USE_SYSTEM_K"
)

// Layout captures the directory conventions of a project: where the build
// output lives, where submodules are checked out, and where the K release
// (and therefore its binaries) is found.
type Layout struct {
	buildDir   string
	extDir     string
	releaseDir string
	systemK    bool
}

// NewLayout returns the layout for a project building K from the ext
// submodule.
func NewLayout(buildDir, extDir string) Layout {
	l := Layout{buildDir: buildDir, extDir: extDir}
	l.releaseDir = l.KRepoPath("k-distribution", "target", "release", "k")
	return l
}

// NewSystemLayout returns a layout resolving K binaries from a pre-installed
// release directory.
func NewSystemLayout(buildDir, extDir, releaseDir string) Layout {
	return Layout{buildDir: buildDir, extDir: extDir, releaseDir: releaseDir, systemK: true}
}

// UsesSystemK reports whether the layout points at a pre-installed K release.
func (l Layout) UsesSystemK() bool { return l.systemK }

// BuildPath joins paths under the managed build directory.
func (l Layout) BuildPath(paths ...string) string {
	return filepath.Join(append([]string{l.buildDir}, paths...)...)
}

// BuildDir returns the managed build directory.
func (l Layout) BuildDir() string { return l.buildDir }

// ExtPath joins paths under the submodule directory.
func (l Layout) ExtPath(paths ...string) string {
	return filepath.Join(append([]string{l.extDir}, paths...)...)
}

// KRepoPath joins paths under the K framework checkout.
func (l Layout) KRepoPath(paths ...string) string {
	return l.ExtPath(append([]string{KRepoDirName}, paths...)...)
}

// KReleasePath joins paths under the K release directory.
func (l Layout) KReleasePath(paths ...string) string {
	return filepath.Join(append([]string{l.releaseDir}, paths...)...)
}

// KBinPath joins paths under the K release bin directory.
func (l Layout) KBinPath(paths ...string) string {
	return l.KReleasePath(append([]string{"bin"}, paths...)...)
}

// KLibPath joins paths under the K release library directory.
func (l Layout) KLibPath(paths ...string) string {
	return l.KReleasePath(append([]string{"lib", "kframework"}, paths...)...)
}

// ManifestPath returns the path of the generated manifest.
func (l Layout) ManifestPath() string {
	return l.BuildPath(ManifestFileName)
}

// PlaceInBuildDir rewrites a relative path to be nested under the build
// directory unless it already is; the rewrite is idempotent. Absolute paths
// are rejected so derived artifacts never escape the managed tree.
func (l Layout) PlaceInBuildDir(path string) (string, error) {
	if filepath.IsAbs(path) {
		return "", zerr.With(ErrAbsoluteOutput, "path", path)
	}
	if isSubPath(path, l.buildDir) {
		return path, nil
	}
	return filepath.Join(l.buildDir, path), nil
}

// isSubPath reports whether path is strictly nested under dir.
func isSubPath(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
