// Command hwcaps-loader is the dispatch shim installed at
// /usr/bin/hwcaps-loader and invoked through the symlinks that replace
// a distribution's real executables. It deliberately has no flags and
// no subcommands: which program to launch is decided entirely by argv0
// and the host CPU, and everything past argv[0] belongs to the target.
//
// The pipeline runs once per process: resolve the loader's own
// identity, resolve the requested target, detect the CPU capability
// tier, then attempt process replacement on each candidate variant in
// descending tier order. On success control never returns here; on any
// failure the process exits with one of the documented stable codes.
package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/jrelvas-ipc/hwcaps-loader/pkg/dispatch"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/errors"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/hwcaps"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/logging"
	"github.com/jrelvas-ipc/hwcaps-loader/pkg/paths"
)

func main() {
	logging.SetupLoader()

	// Invariant violations must exit with their own code, never a
	// stack trace mistaken for an ordinary failure.
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("internal invariant violation")
			os.Exit(errors.New(errors.ErrPanic, "panic").ExitCode())
		}
	}()

	if err := run(); err != nil {
		log.Error().Err(err).Msg("dispatch failed")
		os.Exit(errors.ExitCode(err))
	}

	// run only returns with an error; a nil return means the exec
	// contract was broken.
	os.Exit(errors.New(errors.ErrPanic, "dispatch returned").ExitCode())
}

func run() error {
	layout := paths.DefaultLayout()
	return pipeline(layout, paths.NewResolver(layout), os.Args, hwcaps.DetectHost(), dispatch.New())
}

// pipeline is the whole dispatch-resolution sequence: self identity,
// requested target, candidate construction, process replacement. It is
// stateless and runs exactly once per process lifetime.
func pipeline(layout paths.Layout, resolver *paths.Resolver, args []string, tier hwcaps.Tier, d *dispatch.Dispatcher) error {
	if _, err := resolver.Self(); err != nil {
		return err
	}

	argv0 := ""
	if len(args) > 0 {
		argv0 = args[0]
	}

	target, err := resolver.Requested(argv0)
	if err != nil {
		return err
	}

	log.Debug().Str("tier", tier.String()).Str("target", target.Rel()).Msg("dispatching")

	candidates, err := layout.Candidates(tier, target)
	if err != nil {
		return err
	}

	return d.Run(candidates)
}
