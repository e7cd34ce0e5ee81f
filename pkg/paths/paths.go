// Package paths implements the loader's filesystem layout contract,
// invocation-identity resolution and candidate path construction.
//
// The layout packagers must follow:
//
//	{prefix}/bin/hwcaps-loader                  the loader binary itself
//	{prefix}/hwcaps-loader/{tier}/bin/{name}    optimized "bin" variant
//	{prefix}/hwcaps-loader/{tier}/libexec/{name} optimized "libexec" variant
//	{prefix}/bin/{name}      -> symlink to hwcaps-loader
//	{prefix}/libexec/{name}  -> symlink to hwcaps-loader
//
// Packages need not provide every tier; dispatch falls through missing
// ones in descending capability order.
package paths

import (
	"path/filepath"
)

// MaxPathLen is the bounded path buffer size, terminator included. It
// is a hard ceiling, not a tunable: a path that does not fit is a
// validity error, never a resize-and-retry.
const MaxPathLen = 4096

// Default layout constants.
const (
	// DefaultPrefix is the installation prefix on a normal system.
	DefaultPrefix = "/usr"

	// LoaderName is the loader binary's file name. The variants root
	// directory shares it.
	LoaderName = "hwcaps-loader"

	// BinDir is the subdirectory holding the loader and the command
	// symlinks pointed at it.
	BinDir = "bin"
)

// Layout describes one installation of the loader. The zero value is
// not usable; construct with DefaultLayout or NewLayout.
type Layout struct {
	// prefix is the installation root, strict ancestor of every valid
	// dispatch target.
	prefix string
}

// DefaultLayout returns the layout of a standard installation.
func DefaultLayout() Layout {
	return Layout{prefix: DefaultPrefix}
}

// NewLayout returns a layout rooted at the given prefix. Used by tests
// and by the inspect tool to point dry-runs at staging trees.
func NewLayout(prefix string) Layout {
	return Layout{prefix: filepath.Clean(prefix)}
}

// Prefix returns the installation root.
func (l Layout) Prefix() string { return l.prefix }

// LoaderPath returns the canonical path of the loader binary.
func (l Layout) LoaderPath() string {
	return filepath.Join(l.prefix, BinDir, LoaderName)
}

// LoaderDir returns the directory holding the loader binary. Bare
// command aliases (argv0 without a path separator) resolve against it.
func (l Layout) LoaderDir() string {
	return filepath.Join(l.prefix, BinDir)
}

// VariantsRoot returns the directory holding the per-tier variant
// trees.
func (l Layout) VariantsRoot() string {
	return filepath.Join(l.prefix, LoaderName)
}
