//go:build !windows

package sockets

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// controlReuseAddr enables SO_REUSEADDR on the socket before it is
// bound, so several announce sockets can coexist on one host.
func controlReuseAddr(network, address string, c syscall.RawConn) error {
	var optErr error
	err := c.Control(func(fd uintptr) {
		optErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return optErr
}
