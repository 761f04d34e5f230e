//go:build windows

package logger

import "os"

// Windows has no syslog; production messages go to standard error.
func newSystemBackend(_ string) (Backend, error) {
	return NewStreamBackend(os.Stderr), nil
}
