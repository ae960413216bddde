package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
)

// Field names
const (
	Scheme    = "scheme"
	Workers   = "workers"
	Bits      = "bits"
	Blocks    = "blocks"
	Corrected = "corrected"
	Flipped   = "flipped"
)

// LogConfig describes configuration of logger
type LogConfig struct {
	// Log level: -1-trace 0-debug 1-info 2-warn 3-error 4-fatal 5-panic
	Level int

	// Path to the logfile. "stdout" or "stderr" are possible too.
	Path string

	// The size of diode buffer. 0 disables the diode.
	DiodeBuf int
}

// DefaultLogConfig logs warnings and above to stderr.
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: int(zerolog.WarnLevel), Path: "stderr"}
}

// InitLogger builds a logger from lc, installs it as the global zerolog
// logger and returns it together with a function closing the output.
func InitLogger(lc LogConfig) (zerolog.Logger, func() error, error) {
	var (
		output io.Writer
		closer io.Closer
	)

	switch lc.Path {
	case "stdout":
		output = struct{ io.Writer }{os.Stdout}

	case "", "stderr":
		output = struct{ io.Writer }{os.Stderr}

	default:
		file, err := os.Create(lc.Path)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		output = file
		closer = file
	}

	// enable diode; closing it drains the buffer and closes the file
	if lc.DiodeBuf > 0 {
		d := diode.NewWriter(output, lc.DiodeBuf, 0, func(missed int) {
			fmt.Fprintf(os.Stderr, "WARNING: Dropped %d log entries\n", missed)
		})
		output = d
		closer = d
	}

	logger := zerolog.New(output).Level(zerolog.Level(lc.Level)).With().Timestamp().Logger()
	log.Logger = logger

	closeFn := func() error {
		if closer == nil {
			return nil
		}
		return closer.Close()
	}
	return logger, closeFn, nil
}
