package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// DirMode defines platform-specific directory permissions
var DirMode os.FileMode

func init() {
	if runtime.GOOS == "windows" {
		DirMode = 0666
	} else {
		DirMode = 0755
	}
}

// StreamBackend writes each message followed by a newline to w
type StreamBackend struct {
	w io.Writer
}

// NewStreamBackend creates a backend that writes to w
func NewStreamBackend(w io.Writer) *StreamBackend {
	return &StreamBackend{w: w}
}

func (s *StreamBackend) Write(_ LogLevel, msg string) error {
	_, err := fmt.Fprintf(s.w, "%s\n", msg)
	return err
}

// fileBackend writes level-prefixed lines to a size-rotated file
type fileBackend struct {
	out     *lumberjack.Logger
	loggers map[LogLevel]*log.Logger
}

func newFileBackend(config Config) (*fileBackend, error) {
	path := filepath.Clean(config.LogFile)
	if err := os.MkdirAll(filepath.Dir(path), DirMode); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	out := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    config.MaxSize, // megabytes
		MaxAge:     config.MaxAge,  // days
		MaxBackups: 3,
		Compress:   true,
	}

	fb := &fileBackend{out: out, loggers: make(map[LogLevel]*log.Logger, len(levelNames))}
	for level, name := range levelNames {
		fb.loggers[level] = log.New(out, name+": ", log.Ldate|log.Ltime|log.Lmicroseconds)
	}
	return fb, nil
}

func (f *fileBackend) Write(level LogLevel, msg string) error {
	l, ok := f.loggers[level]
	if !ok {
		l = f.loggers[Info]
	}
	return l.Output(2, msg)
}

func (f *fileBackend) Close() error {
	return f.out.Close()
}

// Entry is a single message captured by a Recorder
type Entry struct {
	Level   LogLevel
	Message string
}

// Recorder is an in-memory backend, useful for asserting on what a
// component logged.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Write(level LogLevel, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg})
	return nil
}

// Entries returns a copy of everything recorded so far
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Messages returns the recorded messages at the given level
func (r *Recorder) Messages(level LogLevel) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
