//go:build windows

package sockets

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// controlReuseAddr enables SO_REUSEADDR on the socket before it is
// bound. Windows has no SO_REUSEPORT; SO_REUSEADDR alone is enough for
// the announce sockets.
func controlReuseAddr(network, address string, c syscall.RawConn) error {
	var optErr error
	err := c.Control(func(fd uintptr) {
		optErr = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return optErr
}
