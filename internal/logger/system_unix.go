//go:build !windows

package logger

import (
	"log/syslog"

	"github.com/coreos/go-systemd/v22/journal"
)

// journalBackend forwards messages to systemd-journald
type journalBackend struct {
	vars map[string]string
}

func (j *journalBackend) Write(level LogLevel, msg string) error {
	return journal.Send(msg, journalPriority(level), j.vars)
}

func journalPriority(level LogLevel) journal.Priority {
	switch level {
	case Debug:
		return journal.PriDebug
	case Warn:
		return journal.PriWarning
	case Error:
		return journal.PriErr
	default:
		return journal.PriInfo
	}
}

// syslogBackend forwards messages to the local syslog daemon
type syslogBackend struct {
	w *syslog.Writer
}

func (s *syslogBackend) Write(level LogLevel, msg string) error {
	switch level {
	case Debug:
		return s.w.Debug(msg)
	case Warn:
		return s.w.Warning(msg)
	case Error:
		return s.w.Err(msg)
	default:
		return s.w.Info(msg)
	}
}

func (s *syslogBackend) Close() error {
	return s.w.Close()
}

// newSystemBackend prefers the journal and falls back to syslog when the
// journal socket is not present.
func newSystemBackend(tag string) (Backend, error) {
	if journal.Enabled() {
		return &journalBackend{vars: map[string]string{"SYSLOG_IDENTIFIER": tag}}, nil
	}
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_DAEMON, tag)
	if err != nil {
		return nil, err
	}
	return &syslogBackend{w: w}, nil
}
