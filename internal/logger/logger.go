package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// LogLevel represents the priority of a log message
type LogLevel int

const (
	// Debug level for detailed troubleshooting
	Debug LogLevel = iota
	// Info level for accepted directives and general operational entries
	Info
	// Warn level for non-critical issues
	Warn
	// Error level for rejected directives and failures
	Error
)

var levelNames = map[LogLevel]string{
	Debug: "DEBUG",
	Info:  "INFO",
	Warn:  "WARN",
	Error: "ERROR",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// Backend receives fully formatted messages. Implementations must not
// append anything beyond their own framing.
type Backend interface {
	Write(level LogLevel, msg string) error
}

// Config holds logger configuration
type Config struct {
	// Debug is the diagnostic verbosity. Any value above zero routes all
	// messages to standard error instead of the system logger.
	Debug int
	// Tag identifies the process in the system logger
	Tag string
	// LogFile, when set, replaces the system logger with a rotated file
	LogFile string
	// MaxSize is the maximum size in MB before log rotation
	MaxSize int
	// MaxAge is the number of days rotated files are kept
	MaxAge int
}

// Logger is the dual-mode logging facade used by every directive handler.
// In debug mode messages go to standard error; otherwise they are
// forwarded verbatim to the production backend.
type Logger struct {
	backend Backend
	stderr  io.Writer
	debug   int
	mu      sync.Mutex
	closer  io.Closer
}

// NewLogger creates a logger whose backend is selected from config
func NewLogger(config Config) (*Logger, error) {
	if config.Debug > 0 {
		return New(NewStreamBackend(os.Stderr), os.Stderr, config.Debug), nil
	}

	if config.LogFile != "" {
		fb, err := newFileBackend(config)
		if err != nil {
			return nil, err
		}
		l := New(fb, os.Stderr, 0)
		l.closer = fb
		return l, nil
	}

	sb, err := newSystemBackend(config.Tag)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system logger: %w", err)
	}
	l := New(sb, os.Stderr, 0)
	if c, ok := sb.(io.Closer); ok {
		l.closer = c
	}
	return l, nil
}

// New creates a logger around an explicit backend. stderr receives Trace
// output when debug is above the trace level.
func New(backend Backend, stderr io.Writer, debug int) *Logger {
	if stderr == nil {
		stderr = io.Discard
	}
	return &Logger{backend: backend, stderr: stderr, debug: debug}
}

// Close releases the backend if it holds a file or socket
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// DebugLevel returns the configured verbosity
func (l *Logger) DebugLevel() int {
	return l.debug
}

// Log formats and forwards a message at the given priority
func (l *Logger) Log(level LogLevel, format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.backend.Write(level, msg); err != nil {
		fmt.Fprintf(l.stderr, "log backend failed: %v: %s\n", err, msg)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.Log(Debug, format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.Log(Info, format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.Log(Warn, format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.Log(Error, format, v...)
}

// Trace writes to standard error only, and only when the configured
// verbosity is strictly greater than lvl. It never reaches the system logger.
func (l *Logger) Trace(lvl int, format string, v ...interface{}) {
	if l.debug <= lvl {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.stderr, format+"\n", v...)
}
