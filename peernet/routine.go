package peernet

import (
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
)

// ConnectionRoutine is a deferred, cancellable inbound connection
// attempt: a peer is knocking, but the connection is not yet
// negotiated. The driving loop either finalizes it with Establish or
// abandons it with Cancel. Each routine is expected to be consumed at
// most once, though this is not enforced.
type ConnectionRoutine interface {
	// RemoteAddr returns the remote address captured at accept time.
	RemoteAddr() net.Addr

	// Establish resolves the peer identity and finalizes the
	// connection. Collaborator failures are converted into a Failure
	// result; Establish never panics.
	Establish() ConnectionResult

	// Cancel closes the raw connection without finalizing it. Close
	// errors are logged and swallowed.
	Cancel()
}

type incomingRoutine struct {
	registry PeerRegistry
	factory  ConnectionFactory
	conn     net.Conn
	remote   net.Addr
}

func (r *incomingRoutine) RemoteAddr() net.Addr {
	return r.remote
}

func (r *incomingRoutine) Establish() (result ConnectionResult) {
	defer func() {
		if v := recover(); v != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "incomingRoutine.Establish",
				"remote_addr": r.remote.String(),
				"panic":       fmt.Sprint(v),
			}).Error("Recovered panic while establishing incoming connection")
			result = Failure("unexpected error", fmt.Errorf("establish connection from %s: %v", r.remote, v))
		}
	}()

	peer, err := r.registry.PeerForAddress(r.remote)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "incomingRoutine.Establish",
			"remote_addr": r.remote.String(),
			"error":       err.Error(),
		}).Error("Failed to resolve peer for incoming connection")
		return Failure("failed to resolve peer", err)
	}

	return r.factory.CreateIncoming(peer, r.conn)
}

func (r *incomingRoutine) Cancel() {
	if err := r.conn.Close(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "incomingRoutine.Cancel",
			"remote_addr": r.remote.String(),
			"error":       err.Error(),
		}).Warn("Failed to close incoming connection")
	}
}
