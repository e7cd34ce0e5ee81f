package main

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/jrelvas-ipc/hwcaps-loader/pkg/dispatch"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/errors"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/hwcaps"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installation is a complete fake install under a temp prefix,
// exercised through the same pipeline the real binary runs.
type installation struct {
	layout   paths.Layout
	resolver *paths.Resolver
	exec     *recordingExec
}

type recordingExec struct {
	attempts []string
	present  map[string]error
}

func (r *recordingExec) exec(path string, argv, env []string) error {
	r.attempts = append(r.attempts, path)
	if err, ok := r.present[path]; ok {
		return err
	}
	return syscall.ENOENT
}

func newInstallation(t *testing.T) *installation {
	t.Helper()

	tmp, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	prefix := filepath.Join(tmp, "usr")
	require.NoError(t, os.MkdirAll(filepath.Join(prefix, "bin"), 0o755))

	layout := paths.NewLayout(prefix)
	require.NoError(t, os.WriteFile(layout.LoaderPath(), []byte("loader"), 0o755))

	return &installation{
		layout: layout,
		resolver: paths.NewResolverWithExecutable(layout, func() (string, error) {
			return layout.LoaderPath(), nil
		}),
		exec: &recordingExec{present: map[string]error{}},
	}
}

func (in *installation) link(t *testing.T, rel string) string {
	t.Helper()
	link := filepath.Join(in.layout.Prefix(), rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0o755))
	require.NoError(t, os.Symlink(in.layout.LoaderPath(), link))
	return link
}

// shipBroken marks a candidate as present but not executable, which
// stops the walk there. It lets tests observe which candidate the
// pipeline selects without actually replacing the test process.
func (in *installation) shipBroken(t *testing.T, tier hwcaps.Tier, rel string) string {
	t.Helper()
	target, err := paths.NewTarget(rel)
	require.NoError(t, err)
	path := in.layout.CandidatePath(tier, target)
	in.exec.present[path] = syscall.EACCES
	return path
}

func (in *installation) run(argv []string, tier hwcaps.Tier) error {
	d := dispatch.NewWithExec(in.exec.exec, argv, []string{"HOME=/root"})
	return pipeline(in.layout, in.resolver, argv, tier, d)
}

func TestPipelineSelectsBestPresentTier(t *testing.T) {
	in := newInstallation(t)
	foo := in.link(t, "bin/foo")

	v3 := in.shipBroken(t, hwcaps.TierX8664v3, "bin/foo")
	v1 := in.shipBroken(t, hwcaps.TierX8664v1, "bin/foo")

	err := in.run([]string{foo, "--help"}, hwcaps.TierX8664v2)

	// The walk stopped at v1: v2 was absent, v3 unreachable from a v2
	// host.
	assert.Equal(t, errors.ErrTargetExecution, errors.CodeOf(err))
	assert.Equal(t, v1, in.exec.attempts[len(in.exec.attempts)-1])
	assert.NotContains(t, in.exec.attempts, v3)
}

func TestPipelineFallsThroughToLowestTier(t *testing.T) {
	in := newInstallation(t)
	foo := in.link(t, "bin/foo")
	lowest := in.shipBroken(t, hwcaps.Lowest(), "bin/foo")

	err := in.run([]string{foo}, hwcaps.Highest())

	assert.Equal(t, errors.ErrTargetExecution, errors.CodeOf(err))
	assert.Equal(t, lowest, in.exec.attempts[len(in.exec.attempts)-1])
	assert.Len(t, in.exec.attempts, 8)
}

func TestPipelineExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		arrange  func(t *testing.T, in *installation) []string
		wantCode int
	}{
		{
			name: "direct invocation is self execution",
			arrange: func(t *testing.T, in *installation) []string {
				return []string{in.layout.LoaderPath()}
			},
			wantCode: 200,
		},
		{
			name: "empty argv",
			arrange: func(t *testing.T, in *installation) []string {
				return nil
			},
			wantCode: 210,
		},
		{
			name: "target outside the prefix",
			arrange: func(t *testing.T, in *installation) []string {
				outside := filepath.Join(filepath.Dir(in.layout.Prefix()), "rogue")
				require.NoError(t, os.WriteFile(outside, []byte("x"), 0o755))
				return []string{outside}
			},
			wantCode: 240,
		},
		{
			name: "no candidate for any tier",
			arrange: func(t *testing.T, in *installation) []string {
				return []string{in.link(t, "bin/ghost")}
			},
			wantCode: 243,
		},
		{
			name: "nonexistent invocation path",
			arrange: func(t *testing.T, in *installation) []string {
				return []string{filepath.Join(in.layout.Prefix(), "bin", "missing")}
			},
			wantCode: 230,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newInstallation(t)
			argv := tt.arrange(t, in)

			err := in.run(argv, hwcaps.TierX8664v2)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.ExitCode(err))
		})
	}
}

func TestPipelineSelfReadFailure(t *testing.T) {
	in := newInstallation(t)
	in.resolver = paths.NewResolverWithExecutable(in.layout, func() (string, error) {
		return "", os.ErrPermission
	})

	err := in.run([]string{"foo"}, hwcaps.TierX8664v2)
	assert.Equal(t, 220, errors.ExitCode(err))
}

func TestPipelineForeignLoaderLocation(t *testing.T) {
	in := newInstallation(t)
	in.resolver = paths.NewResolverWithExecutable(in.layout, func() (string, error) {
		return "/home/user/hwcaps-loader", nil
	})

	err := in.run([]string{"foo"}, hwcaps.TierX8664v2)
	assert.Equal(t, 221, errors.ExitCode(err))
}

func TestPipelineLibexecTarget(t *testing.T) {
	in := newInstallation(t)
	helper := in.link(t, "libexec/helper")
	chosen := in.shipBroken(t, hwcaps.TierI686, "libexec/helper")

	err := in.run([]string{helper}, hwcaps.TierX8664v1)

	assert.Equal(t, errors.ErrTargetExecution, errors.CodeOf(err))
	assert.Equal(t, chosen, in.exec.attempts[len(in.exec.attempts)-1])
}
