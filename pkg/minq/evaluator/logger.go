package evaluator

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Logger is where a Runtime sends script output (console.log, console.write)
// and, through its WarnLogger, the "[MINQ] Unhandled Errors:" diagnostics.
// Log writes without a newline; LogLine ends the line.
type Logger interface {
	Log(values ...any)
	LogLine(values ...any)
}

type streamLogger struct {
	w io.Writer
}

func (l *streamLogger) Log(values ...any)     { io.WriteString(l.w, joinValues(values)) }
func (l *streamLogger) LogLine(values ...any) { io.WriteString(l.w, joinValues(values)+"\n") }

// WriterLogger sends script output to w.
func WriterLogger(w io.Writer) Logger {
	return &streamLogger{w: w}
}

var (
	// DefaultLogger is used by runtimes built without WithLogger.
	DefaultLogger Logger = WriterLogger(os.Stdout)
	// DefaultWarnLogger is used by runtimes built without WithWarnLogger.
	DefaultWarnLogger Logger = WriterLogger(os.Stderr)
)

// BufferedLogger keeps everything a runtime printed in memory. It is safe
// for use by a web server's concurrent requests.
type BufferedLogger struct {
	mu  sync.Mutex
	out strings.Builder
}

func NewBufferedLogger() *BufferedLogger {
	return &BufferedLogger{}
}

func (l *BufferedLogger) Log(values ...any) {
	l.mu.Lock()
	l.out.WriteString(joinValues(values))
	l.mu.Unlock()
}

func (l *BufferedLogger) LogLine(values ...any) {
	l.mu.Lock()
	l.out.WriteString(joinValues(values))
	l.out.WriteByte('\n')
	l.mu.Unlock()
}

// String returns the output exactly as a terminal would have shown it.
func (l *BufferedLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out.String()
}

// joinValues separates values with single spaces.
func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}
