package peernet

import (
	"errors"
	"fmt"
)

// ErrAcceptorClosed indicates the listening socket was closed while the
// acceptor was waiting for connections. The driving loop should stop
// polling this acceptor.
var ErrAcceptorClosed = errors.New("acceptor listening socket closed")

// NetError carries the operation and local address under which an
// acceptor failure happened.
type NetError struct {
	Op   string // operation that caused the error
	Addr string // local address if relevant
	Err  error  // underlying error
}

func (e *NetError) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("peernet %s %s: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("peernet %s: %v", e.Op, e.Err)
}

func (e *NetError) Unwrap() error {
	return e.Err
}
