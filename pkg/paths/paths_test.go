package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrelvas-ipc/hwcaps-loader/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newInstallation builds a minimal on-disk installation under a temp
// prefix: the loader binary plus bin/ and libexec/ dispatch symlinks.
func newInstallation(t *testing.T) (Layout, *Resolver) {
	t.Helper()

	// Canonicalize so parent-directory resolution lands back on the
	// prefix even when the temp root itself is behind a symlink.
	tmp, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	prefix := filepath.Join(tmp, "usr")
	require.NoError(t, os.MkdirAll(filepath.Join(prefix, "bin"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(prefix, "libexec"), 0o755))

	layout := NewLayout(prefix)
	require.NoError(t, os.WriteFile(layout.LoaderPath(), []byte("loader"), 0o755))

	resolver := NewResolverWithExecutable(layout, func() (string, error) {
		return layout.LoaderPath(), nil
	})
	return layout, resolver
}

func addSymlink(t *testing.T, layout Layout, rel string) string {
	t.Helper()
	link := filepath.Join(layout.Prefix(), rel)
	require.NoError(t, os.Symlink(layout.LoaderPath(), link))
	return link
}

func TestLayoutPaths(t *testing.T) {
	layout := DefaultLayout()
	assert.Equal(t, "/usr", layout.Prefix())
	assert.Equal(t, "/usr/bin/hwcaps-loader", layout.LoaderPath())
	assert.Equal(t, "/usr/bin", layout.LoaderDir())
	assert.Equal(t, "/usr/hwcaps-loader", layout.VariantsRoot())
}

func TestSelf(t *testing.T) {
	layout, resolver := newInstallation(t)

	self, err := resolver.Self()
	require.NoError(t, err)
	assert.Equal(t, layout.LoaderPath(), self)
}

func TestSelfReadFailure(t *testing.T) {
	layout, _ := newInstallation(t)
	resolver := NewResolverWithExecutable(layout, func() (string, error) {
		return "", os.ErrPermission
	})

	_, err := resolver.Self()
	assert.True(t, errors.IsCode(err, errors.ErrProcPathIO))
}

func TestSelfWrongInstallPath(t *testing.T) {
	layout, _ := newInstallation(t)
	resolver := NewResolverWithExecutable(layout, func() (string, error) {
		return "/tmp/stolen-copy", nil
	})

	_, err := resolver.Self()
	assert.True(t, errors.IsCode(err, errors.ErrProcPathInvalid))
}

func TestRequested(t *testing.T) {
	layout, resolver := newInstallation(t)
	addSymlink(t, layout, "bin/foo")
	addSymlink(t, layout, "libexec/bar")

	tests := []struct {
		name    string
		argv0   func() string
		wantRel string
	}{
		{
			name:    "absolute bin symlink",
			argv0:   func() string { return filepath.Join(layout.Prefix(), "bin", "foo") },
			wantRel: "bin/foo",
		},
		{
			name:    "absolute libexec symlink",
			argv0:   func() string { return filepath.Join(layout.Prefix(), "libexec", "bar") },
			wantRel: "libexec/bar",
		},
		{
			name:    "bare alias anchors at loader dir",
			argv0:   func() string { return "foo" },
			wantRel: "bin/foo",
		},
		{
			name: "dot segments are normalized",
			argv0: func() string {
				return filepath.Join(layout.Prefix(), "libexec", "..", "bin", "foo")
			},
			wantRel: "bin/foo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := resolver.Requested(tt.argv0())
			require.NoError(t, err)
			assert.Equal(t, tt.wantRel, target.Rel())
		})
	}
}

func TestRequestedDeterministic(t *testing.T) {
	layout, resolver := newInstallation(t)
	argv0 := addSymlink(t, layout, "bin/foo")

	first, err := resolver.Requested(argv0)
	require.NoError(t, err)
	second, err := resolver.Requested(argv0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRequestedParentSymlinkCanonicalized(t *testing.T) {
	layout, resolver := newInstallation(t)
	addSymlink(t, layout, "bin/foo")

	// An alias directory pointing at bin must collapse to bin, while
	// the final symlink component stays unfollowed.
	require.NoError(t, os.Symlink(
		filepath.Join(layout.Prefix(), "bin"),
		filepath.Join(layout.Prefix(), "sbin")))

	target, err := resolver.Requested(filepath.Join(layout.Prefix(), "sbin", "foo"))
	require.NoError(t, err)
	assert.Equal(t, "bin/foo", target.Rel())
}

func TestRequestedFailures(t *testing.T) {
	layout, resolver := newInstallation(t)
	addSymlink(t, layout, "bin/foo")

	outside := filepath.Join(filepath.Dir(layout.Prefix()), "escapee")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o755))

	tests := []struct {
		name     string
		argv0    string
		wantCode errors.ErrorCode
	}{
		{
			name:     "empty argv0",
			argv0:    "",
			wantCode: errors.ErrCommandPathInvalid,
		},
		{
			name:     "argv0 exceeds path buffer",
			argv0:    "/" + strings.Repeat("a", MaxPathLen),
			wantCode: errors.ErrCommandPathInvalid,
		},
		{
			name:     "nonexistent command",
			argv0:    filepath.Join(layout.Prefix(), "bin", "ghost"),
			wantCode: errors.ErrPathResolutionIO,
		},
		{
			name:     "nonexistent parent",
			argv0:    filepath.Join(layout.Prefix(), "nowhere", "foo"),
			wantCode: errors.ErrPathResolutionIO,
		},
		{
			name:     "target outside the prefix",
			argv0:    outside,
			wantCode: errors.ErrTargetPathInvalid,
		},
		{
			name:     "prefix itself is not a target",
			argv0:    layout.Prefix(),
			wantCode: errors.ErrTargetPathInvalid,
		},
		{
			name:     "direct loader invocation",
			argv0:    layout.LoaderPath(),
			wantCode: errors.ErrSelfExecution,
		},
		{
			name:     "loader alias invocation",
			argv0:    LoaderName,
			wantCode: errors.ErrSelfExecution,
		},
		{
			name:     "traversal escaping the prefix",
			argv0:    filepath.Join(layout.Prefix(), "bin", "..", "..", "escapee"),
			wantCode: errors.ErrTargetPathInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Requested(tt.argv0)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err), "got: %v", err)
		})
	}
}

func TestNewTarget(t *testing.T) {
	tests := []struct {
		name    string
		rel     string
		wantRel string
		wantErr bool
	}{
		{name: "bin target", rel: "bin/foo", wantRel: "bin/foo"},
		{name: "libexec target", rel: "libexec/bar", wantRel: "libexec/bar"},
		{name: "cleaned", rel: "bin//foo/./", wantRel: "bin/foo"},
		{name: "empty", rel: "", wantErr: true},
		{name: "dot", rel: ".", wantErr: true},
		{name: "absolute", rel: "/usr/bin/foo", wantErr: true},
		{name: "escaping", rel: "../etc/passwd", wantErr: true},
		{name: "oversized", rel: "bin/" + strings.Repeat("n", MaxPathLen), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := NewTarget(tt.rel)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrTargetPathInvalid, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRel, target.Rel())
		})
	}
}

func TestIsAlias(t *testing.T) {
	tests := []struct {
		argv0 string
		want  bool
	}{
		{"foo", true},
		{"foo/bar", true},
		{"/usr/bin/foo", false},
		{"./foo", false},
		{"../foo", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isAlias(tt.argv0), "argv0=%q", tt.argv0)
	}
}
