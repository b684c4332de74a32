// Package logging configures the global zerolog logger with dual sinks:
// a console writer on stderr and a rotating file.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init sets up the global logger and returns it for injection. logDir may
// be empty to log to the console only; an unwritable directory degrades to
// console-only with a warning rather than failing startup.
func Init(verbose bool, logDir string) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}

	writers := []io.Writer{consoleWriter}

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			logger := zerolog.New(consoleWriter).With().Timestamp().Logger()
			logger.Warn().Err(err).Str("path", logDir).Msg("log directory unavailable; console only")
			log.Logger = logger
			return logger
		}

		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "radius.log"),
			MaxSize:    16, // megabytes
			MaxBackups: 8,
			MaxAge:     90, // days
			Compress:   true,
		})
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger()

	log.Logger = logger
	return logger
}
