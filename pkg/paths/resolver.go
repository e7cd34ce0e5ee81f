package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jrelvas-ipc/hwcaps-loader/pkg/errors"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/logging"
)

// Target is the logical program subpath a symlink requested, relative
// to the installation prefix: "bin/foo" or "libexec/bar". It is always
// non-empty, traversal-free and bounded.
type Target struct {
	rel string
}

// NewTarget constructs a target from a prefix-relative subpath,
// rejecting anything empty, absolute, escaping or oversized. Resolver
// produced targets already satisfy this; the constructor exists for
// callers that name a target directly, such as the inspect tool.
func NewTarget(rel string) (Target, error) {
	cleaned := filepath.Clean(rel)
	switch {
	case rel == "" || cleaned == ".":
		return Target{}, errors.New(errors.ErrTargetPathInvalid, "target subpath is empty")
	case filepath.IsAbs(cleaned):
		return Target{}, errors.New(errors.ErrTargetPathInvalid,
			"target subpath must be relative to the prefix").WithPath(rel)
	case cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)):
		return Target{}, errors.New(errors.ErrTargetPathInvalid,
			"target subpath escapes the prefix").WithPath(rel)
	case len(cleaned)+1 > MaxPathLen:
		return Target{}, errors.New(errors.ErrTargetPathInvalid,
			"target subpath exceeds the path buffer")
	}
	return Target{rel: cleaned}, nil
}

// Rel returns the subpath relative to the prefix.
func (t Target) Rel() string { return t.rel }

// String implements fmt.Stringer.
func (t Target) String() string { return t.rel }

// Resolver determines the loader's own canonical identity and the
// target a given invocation actually requested. It holds no state
// across calls; every invocation of the loader is independent.
type Resolver struct {
	layout Layout

	// executable reads the OS's running-image reference. Overridable
	// so tests do not depend on where the test binary lives.
	executable func() (string, error)
}

// NewResolver returns a resolver for the given layout.
func NewResolver(layout Layout) *Resolver {
	return &Resolver{
		layout:     layout,
		executable: os.Executable,
	}
}

// NewResolverWithExecutable returns a resolver whose running-image
// lookup is replaced. Tests use this to simulate installations.
func NewResolverWithExecutable(layout Layout, executable func() (string, error)) *Resolver {
	return &Resolver{layout: layout, executable: executable}
}

// Self resolves the loader's own canonical path from the operating
// system's running-executable reference, never from argv0 (argv0 is
// caller-controlled). The result must be exactly the layout's loader
// path: anything else means the loader was copied or linked somewhere
// it does not belong, and dispatching from there could chain the
// loader into itself.
func (r *Resolver) Self() (string, error) {
	self, err := r.executable()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrProcPathIO, "cannot read running-image reference")
	}

	expected := r.layout.LoaderPath()
	if self != expected {
		return "", errors.Newf(errors.ErrProcPathInvalid,
			"loader is running from %q, expected %q", self, expected).WithPath(self)
	}

	return self, nil
}

// Requested resolves argv0 to the target the invocation asked for.
//
// argv0 arrives in one of three shapes: an absolute path, an explicit
// relative path (./x, ../x), or a bare command alias from PATH lookup
// ("foo"). Aliases are anchored at the loader's own bin directory, the
// only place the dispatch symlinks live. The anchored path is then
// resolved to an absolute, symlink-free location through the
// filesystem, and validated to sit strictly under the prefix.
func (r *Resolver) Requested(argv0 string) (Target, error) {
	log := logging.GetLogger("paths")

	if argv0 == "" || len(argv0)+1 > MaxPathLen {
		return Target{}, errors.Newf(errors.ErrCommandPathInvalid,
			"argv0 is empty or exceeds %d bytes", MaxPathLen)
	}

	anchored := argv0
	if isAlias(argv0) {
		anchored = filepath.Join(r.layout.LoaderDir(), argv0)
	}

	absolute, err := filepath.Abs(anchored)
	if err != nil {
		return Target{}, errors.Wrap(err, errors.ErrPathResolutionIO,
			"cannot absolutize command path").WithPath(anchored)
	}

	// Canonicalize the parent directory only. The final component is
	// deliberately left unfollowed: the symlink path IS the requested
	// identity, and chasing it would collapse every dispatch symlink
	// into the loader binary itself.
	dir, err := filepath.EvalSymlinks(filepath.Dir(absolute))
	if err != nil {
		return Target{}, errors.Wrap(err, errors.ErrPathResolutionIO,
			"cannot resolve command path").WithPath(absolute)
	}
	resolved := filepath.Join(dir, filepath.Base(absolute))

	if _, err := os.Lstat(resolved); err != nil {
		return Target{}, errors.Wrap(err, errors.ErrPathResolutionIO,
			"cannot resolve command path").WithPath(resolved)
	}

	if len(resolved)+1 > MaxPathLen {
		return Target{}, errors.New(errors.ErrCommandPathInvalid,
			"resolved command path exceeds the path buffer").WithPath(argv0)
	}

	log.Trace().Str("argv0", argv0).Str("resolved", resolved).Msg("resolved invocation path")

	// Anti-recursion guard: the loader must never become its own
	// dispatch target.
	if resolved == r.layout.LoaderPath() {
		return Target{}, errors.New(errors.ErrSelfExecution,
			"refusing to dispatch the loader itself").WithPath(resolved)
	}

	rel, err := filepath.Rel(r.layout.Prefix(), resolved)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Target{}, errors.Newf(errors.ErrTargetPathInvalid,
			"target is not under %s", r.layout.Prefix()).WithPath(resolved)
	}

	return Target{rel: rel}, nil
}

// isAlias reports whether argv0 is a bare command name as produced by
// shell PATH lookup, rather than an absolute or explicitly relative
// path.
func isAlias(argv0 string) bool {
	return !strings.HasPrefix(argv0, "/") &&
		!strings.HasPrefix(argv0, "./") &&
		!strings.HasPrefix(argv0, "../")
}
