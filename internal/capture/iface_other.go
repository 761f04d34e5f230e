//go:build !windows

package capture

const deviceNameRunes = ""
