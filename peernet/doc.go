// Package peernet turns raw inbound sockets into protocol-ready
// connection attempts for the swarm engine.
//
// A ConnectionAcceptor owns one listening socket. Each Accept call
// blocks until a connection with a resolvable remote address arrives
// and returns a ConnectionRoutine for it — a deferred, cancellable
// attempt that the driving loop later finalizes or abandons:
//
//	acceptor := peernet.NewConnectionAcceptor(provider, registry, factory, "0.0.0.0:6881")
//	for {
//	    routine, err := acceptor.Accept()
//	    if err != nil {
//	        break // acceptor is dead, stop polling it
//	    }
//	    result := routine.Establish() // or routine.Cancel()
//	    ...
//	}
//
// Establish resolves the peer identity through the PeerRegistry and
// hands the raw connection to the ConnectionFactory for the wire
// handshake; collaborator failures become ConnectionResult failures,
// never panics, so one bad peer never kills the accept loop.
//
// Acceptors are not self-healing: a closed or failed listening socket
// surfaces as a fatal error (ErrAcceptorClosed for the closed case) so
// the driving loop can stop polling a dead acceptor.
package peernet
