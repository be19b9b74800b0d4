// Package logging configures the process-wide zerolog logger used by the host
// and the headless peer.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup installs a console writer on log.Logger and sets the global level.
// Unknown level names fall back to info.
func Setup(level string) {
	SetupWriter(os.Stdout, level)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(out io.Writer, level string) {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// For returns a child of the global logger tagged with component.
func For(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
