// Package logging configures zerolog for the loader and its inspect
// tool. The loader itself is silent by default: the exit code is the
// diagnostic surface, and a dispatch shim on the hot path of every
// program launch must not write anywhere unless asked to.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvDebug enables stderr trace output from the loader binary when set
// to a non-empty value. This replaces a build-time switch with a
// runtime one; the default remains fully silent.
const EnvDebug = "HWCAPS_LOADER_DEBUG"

// LogFileName is the inspect tool's log file under the XDG state dir.
const LogFileName = "hwcaps-loader.log"

// SetupLoader configures the global logger for the loader binary.
// Output is disabled unless EnvDebug is set.
func SetupLoader() {
	if os.Getenv(EnvDebug) == "" {
		zerolog.SetGlobalLevel(zerolog.Disabled)
		log.Logger = zerolog.Nop()
		return
	}

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}).With().Timestamp().Logger()
}

// SetupInspect configures the global logger for the inspect tool based
// on verbosity level, mirroring the usual -v/-vv/-vvv ladder. Output
// goes to the console and, when possible, a state-dir log file.
func SetupInspect(verbosity int) {
	switch verbosity {
	case 0:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case 2:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}

	writers := []io.Writer{consoleWriter}

	logFile := LogFilePath()
	logHandle, err := openLogFile(logFile)
	if err == nil {
		writers = append(writers, logHandle)
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()

	if err != nil {
		log.Warn().Err(err).Str("path", logFile).Msg("Failed to open log file, logging to console only")
	}

	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	log.Debug().Int("verbosity", verbosity).Str("logFile", logFile).Msg("Logger initialized")
}

// GetLogger returns a contextualized logger with the given component name.
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// LogFilePath returns the inspect tool's log file path under the XDG
// state directory.
func LogFilePath() string {
	return filepath.Join(xdg.StateHome, "hwcaps-loader", LogFileName)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}
