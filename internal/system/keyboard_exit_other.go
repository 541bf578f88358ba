//go:build !linux

package system

import "context"

const (
	KeyEsc = 1
	KeyF4  = 62
)

type keyboardExitLogger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// StartExitOnKey is a no-op without Linux evdev.
func StartExitOnKey(ctx context.Context, logger keyboardExitLogger, onExit func(), keys ...uint16) {
	if logger != nil {
		logger.Infof("input", "evdev exit keys not supported on this platform")
	}
}
