package capture

import (
	"errors"
	"fmt"
	"strings"
)

const maxInterfaceNameLen = 255

// validateInterfaceName rejects names that could not be a network
// interface: anything outside letters, digits, '.', '-', '_', ':' and the
// platform's extra device-name characters.
func validateInterfaceName(name string) error {
	if name == "" {
		return errors.New("interface name cannot be empty")
	}
	if len(name) > maxInterfaceNameLen {
		return fmt.Errorf("interface name too long: %d characters", len(name))
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '_', r == ':':
		case strings.ContainsRune(deviceNameRunes, r):
		default:
			return errors.New("interface name contains invalid characters")
		}
	}
	return nil
}
