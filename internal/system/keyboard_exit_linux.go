//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/sys/unix"
)

const (
	evKey      = 0x01
	keyPressed = 1

	// KeyF4 and KeyEsc are Linux input-event-codes.h key codes.
	KeyEsc = 1
	KeyF4  = 62
)

type keyboardExitLogger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// inputEventLayout describes struct input_event on this architecture:
// a timeval followed by u16 type, u16 code and s32 value.
type inputEventLayout struct {
	timevalSize int
	size        int
}

func nativeInputEventLayout() inputEventLayout {
	tv := binary.Size(unix.Timeval{})
	return inputEventLayout{timevalSize: tv, size: tv + 8}
}

// keyPresses returns the codes of all key-down records in buf. Trailing
// partial records are ignored.
func (l inputEventLayout) keyPresses(buf []byte) []uint16 {
	var codes []uint16
	for off := 0; off+l.size <= len(buf); off += l.size {
		rec := buf[off+l.timevalSize : off+l.size]
		typ := binary.LittleEndian.Uint16(rec[0:2])
		code := binary.LittleEndian.Uint16(rec[2:4])
		value := int32(binary.LittleEndian.Uint32(rec[4:8]))
		if typ == evKey && value == keyPressed {
			codes = append(codes, code)
		}
	}
	return codes
}

// StartExitOnKey watches every /dev/input/event* device and calls onExit once
// when any of keys goes down. It is the way out of a framebuffer session that
// owns the console. Without input devices it logs and returns.
func StartExitOnKey(ctx context.Context, logger keyboardExitLogger, onExit func(), keys ...uint16) {
	if onExit == nil || len(keys) == 0 {
		return
	}

	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		if logger != nil {
			logger.Infof("input", "no evdev devices found for exit keys")
		}
		return
	}

	var once sync.Once
	fire := func(code uint16) {
		once.Do(func() {
			if logger != nil {
				logger.Infof("input", "key %d pressed: exiting", code)
			}
			onExit()
		})
	}

	layout := nativeInputEventLayout()
	for _, path := range paths {
		go watchInputDevice(ctx, path, layout, keys, fire)
	}
}

// watchInputDevice polls one device until ctx is done, the device fails or an
// exit key fires.
func watchInputDevice(ctx context.Context, path string, layout inputEventLayout, keys []uint16, fire func(uint16)) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() { _ = f.Close() }()

	buf := make([]byte, 64*layout.size)
	for ctx.Err() == nil {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(fds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if fds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err == unix.EAGAIN || err == unix.EINTR {
			continue
		}
		if err != nil {
			return
		}
		for _, code := range layout.keyPresses(buf[:n]) {
			if isExitKey(code, keys) {
				fire(code)
				return
			}
		}
	}
}

func isExitKey(code uint16, keys []uint16) bool { return slices.Contains(keys, code) }
