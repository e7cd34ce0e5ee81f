// Package dispatch walks a candidate sequence and hands the process
// over to the first variant binary that exists. Process replacement is
// terminal: on success the kernel discards this program's image, so the
// exec primitive is modeled as a function that can only ever return
// failure.
package dispatch

import (
	stderrors "errors"
	"io/fs"
	"iter"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/jrelvas-ipc/hwcaps-loader/pkg/errors"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/logging"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/paths"
)

// ExecFunc replaces the current process image with the program at path,
// passing argv and the environment through unmodified. It never returns
// on success; any returned error describes a failed replacement
// attempt.
type ExecFunc func(path string, argv []string, env []string) error

// Exec is the production ExecFunc, a direct execve wrapper.
func Exec(path string, argv []string, env []string) error {
	return unix.Exec(path, argv, env)
}

// Dispatcher attempts process replacement over a candidate sequence.
type Dispatcher struct {
	exec ExecFunc

	// Argv is handed to the target as-is beyond index 0; index 0
	// becomes the candidate path.
	Argv []string
	Env  []string
}

// New returns a dispatcher using the real execve and the current
// process's argv and environment.
func New() *Dispatcher {
	return &Dispatcher{exec: Exec, Argv: os.Args, Env: os.Environ()}
}

// NewWithExec returns a dispatcher with a replaced exec primitive.
// Tests use this to observe the attempt order without leaving the test
// process.
func NewWithExec(exec ExecFunc, argv []string, env []string) *Dispatcher {
	return &Dispatcher{exec: exec, Argv: argv, Env: env}
}

// Run walks candidates in order, attempting process replacement on
// each. It only ever returns an error:
//
//   - a candidate that does not exist is expected (packages need not
//     ship every tier) and falls through to the next;
//   - any other replacement failure aborts immediately with
//     TARGET_EXECUTION_ERROR, so a permission or corruption problem is
//     never masked by silently falling back to a slower binary;
//   - an exhausted sequence is TARGET_NO_VIABLE_BINARIES.
func (d *Dispatcher) Run(candidates iter.Seq[paths.Candidate]) error {
	log := logging.GetLogger("dispatch")

	for c := range candidates {
		log.Debug().Str("tier", c.Tier.String()).Str("path", c.Path).Msg("attempting candidate")

		argv := make([]string, len(d.Argv))
		copy(argv, d.Argv)
		if len(argv) == 0 {
			argv = []string{c.Path}
		} else {
			argv[0] = c.Path
		}

		err := d.exec(c.Path, argv, d.Env)
		if err == nil {
			// Replacement cannot return control on success.
			return errors.New(errors.ErrPanic, "exec returned without error").WithPath(c.Path)
		}
		if isNotExist(err) {
			continue
		}
		return errors.Wrap(err, errors.ErrTargetExecution, "process replacement failed").WithPath(c.Path)
	}

	return errors.New(errors.ErrNoViableBinaries, "no candidate binary exists for any tier")
}

// DryRun stats every candidate in order without executing anything and
// reports the full walk plus the candidate that would have been
// executed, if any. Resolution stays side-effect-free, so repeated
// dry-runs over identical inputs yield identical results.
func (d *Dispatcher) DryRun(candidates iter.Seq[paths.Candidate]) ([]paths.Candidate, *paths.Candidate) {
	var walked []paths.Candidate
	for c := range candidates {
		walked = append(walked, c)
		if info, err := os.Stat(c.Path); err == nil && info.Mode().IsRegular() {
			chosen := c
			return walked, &chosen
		}
	}
	return walked, nil
}

// isNotExist classifies the one recoverable exec failure: the
// candidate file (or a directory on its path) is absent. ENOTDIR
// covers a missing tier directory shadowed by a regular file.
func isNotExist(err error) bool {
	return stderrors.Is(err, fs.ErrNotExist) ||
		stderrors.Is(err, syscall.ENOENT) ||
		stderrors.Is(err, syscall.ENOTDIR)
}
