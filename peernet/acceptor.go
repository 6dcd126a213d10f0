package peernet

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
)

// ListenerProvider opens the stream listener an acceptor binds to.
// sockets.NetProvider is the production implementation.
type ListenerProvider interface {
	OpenListener(ctx context.Context, address string) (net.Listener, error)
}

// ConnectionAcceptor turns inbound raw connections on a local address
// into ConnectionRoutines. The listening socket is bound lazily on the
// first Accept and lives for the acceptor's lifetime; unlike the
// announce channel there is no repair, a dead listener is a dead
// acceptor.
//
// Accept is meant to be driven by a single dedicated goroutine per
// acceptor; the lazy bind is still guarded, but concurrent Accept
// calls on one acceptor are not part of the contract.
type ConnectionAcceptor struct {
	provider  ListenerProvider
	registry  PeerRegistry
	factory   ConnectionFactory
	localAddr string

	mu       sync.Mutex
	listener net.Listener
}

// NewConnectionAcceptor creates an acceptor for the given local
// address ("host:port"). No socket is bound until the first Accept.
func NewConnectionAcceptor(provider ListenerProvider, registry PeerRegistry, factory ConnectionFactory, localAddr string) *ConnectionAcceptor {
	return &ConnectionAcceptor{
		provider:  provider,
		registry:  registry,
		factory:   factory,
		localAddr: localAddr,
	}
}

// LocalAddr returns the configured bind address.
func (a *ConnectionAcceptor) LocalAddr() string {
	return a.localAddr
}

// BoundAddr returns the actual address of the listening socket, or nil
// if the first Accept has not bound it yet. Useful when binding to an
// ephemeral port.
func (a *ConnectionAcceptor) BoundAddr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Accept blocks until an inbound connection with a resolvable remote
// address arrives and returns a routine for it. Connections whose
// remote address cannot be resolved are discarded and the wait
// continues; this loop is intentionally unbounded since those failures
// are rare and retried at the socket level.
//
// Errors from Accept are fatal for the acceptor: a failed bind, an
// I/O error on the listener, or — distinguishable with
// errors.Is(err, ErrAcceptorClosed) — a listener closed from outside.
func (a *ConnectionAcceptor) Accept() (ConnectionRoutine, error) {
	listener, err := a.getListener()
	if err != nil {
		return nil, &NetError{Op: "listen", Addr: a.localAddr, Err: err}
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil, &NetError{Op: "accept", Addr: a.localAddr, Err: ErrAcceptorClosed}
			}
			return nil, &NetError{Op: "accept", Addr: a.localAddr, Err: err}
		}

		remote := conn.RemoteAddr()
		if remote == nil {
			logrus.WithFields(logrus.Fields{
				"function":   "ConnectionAcceptor.Accept",
				"local_addr": a.localAddr,
			}).Error("Failed to resolve remote address of incoming connection")
			_ = conn.Close()
			continue
		}

		return &incomingRoutine{
			registry: a.registry,
			factory:  a.factory,
			conn:     conn,
			remote:   remote,
		}, nil
	}
}

// Close closes the listening socket, if bound. A blocked Accept then
// fails with ErrAcceptorClosed; the acceptor cannot be reused.
func (a *ConnectionAcceptor) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return nil
	}
	return a.listener.Close()
}

// getListener lazily binds the listening socket. Bound once for the
// acceptor's lifetime; a bind failure is fatal and not retried with
// backoff here, though a later Accept will attempt the bind again.
func (a *ConnectionAcceptor) getListener() (net.Listener, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener, nil
	}

	listener, err := a.provider.OpenListener(context.Background(), a.localAddr)
	if err != nil {
		return nil, err
	}
	a.listener = listener

	logrus.WithFields(logrus.Fields{
		"function":   "ConnectionAcceptor.getListener",
		"local_addr": listener.Addr().String(),
	}).Info("Listening for incoming peer connections")

	return listener, nil
}
