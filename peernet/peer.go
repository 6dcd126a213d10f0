package peernet

import "net"

// Peer is the logical identity behind a remote address. Identity
// resolution lives outside this package; the connection layer only
// carries the peer through to the factory.
type Peer interface {
	// Address returns the peer's remote address.
	Address() net.Addr
}

// PeerRegistry resolves, or lazily creates, the peer identity for a
// remote address.
type PeerRegistry interface {
	PeerForAddress(addr net.Addr) (Peer, error)
}

// PeerConnection is a fully negotiated protocol connection. The wire
// handshake and message framing live behind this boundary.
type PeerConnection interface {
	Peer() Peer
	RemoteAddr() net.Addr
	Close() error
}

// ConnectionFactory finalizes an accepted raw connection into a
// negotiated peer connection. The factory owns the handshake; it
// reports its outcome as a ConnectionResult rather than an error so
// the reason travels with the cause.
type ConnectionFactory interface {
	CreateIncoming(peer Peer, conn net.Conn) ConnectionResult
}
