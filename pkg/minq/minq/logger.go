package minq

import (
	"io"

	"github.com/minqlang/minq/pkg/minq/evaluator"
)

// Logger is an alias for evaluator.Logger for convenience
type Logger = evaluator.Logger

// BufferedLogger captures output for later retrieval.
type BufferedLogger = evaluator.BufferedLogger

// NewBufferedLogger creates a new buffered logger
func NewBufferedLogger() *BufferedLogger {
	return evaluator.NewBufferedLogger()
}

// StdoutLogger returns a logger that writes to stdout (default for CLI/REPL)
func StdoutLogger() Logger {
	return evaluator.DefaultLogger
}

// WriterLogger returns a logger that writes to an io.Writer
func WriterLogger(w io.Writer) Logger {
	return evaluator.WriterLogger(w)
}

// nullLogger discards all output
type nullLogger struct{}

func (l *nullLogger) Log(values ...any)     {}
func (l *nullLogger) LogLine(values ...any) {}

// NullLogger returns a logger that discards all output
func NullLogger() Logger {
	return &nullLogger{}
}
