// Package logging configures zerolog from the --verbosity flag.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Verbosity levels accepted on the command line.
const (
	Quiet = "quiet"
	Info  = "info"
	Debug = "debug"
)

// ParseLevel maps a verbosity name onto a zerolog level. quiet keeps
// errors only.
func ParseLevel(verbosity string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(verbosity)) {
	case Quiet:
		return zerolog.ErrorLevel, nil
	case "", Info:
		return zerolog.InfoLevel, nil
	case Debug:
		return zerolog.DebugLevel, nil
	}
	return zerolog.NoLevel, fmt.Errorf("unknown verbosity %q (want quiet, info or debug)", verbosity)
}

// Setup builds a logger writing to w at the given verbosity and installs it
// as the global zerolog logger. Output is human readable when w is a
// terminal and JSON otherwise.
func Setup(verbosity string, w io.Writer) (zerolog.Logger, error) {
	level, err := ParseLevel(verbosity)
	if err != nil {
		return zerolog.Nop(), err
	}

	if isTerminal(w) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
