package peernet

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"
)

type fakePeer struct {
	addr net.Addr
}

func (p *fakePeer) Address() net.Addr { return p.addr }

type fakeRegistry struct {
	err    error
	panics bool

	mu    sync.Mutex
	calls []net.Addr
}

func (r *fakeRegistry) PeerForAddress(addr net.Addr) (Peer, error) {
	r.mu.Lock()
	r.calls = append(r.calls, addr)
	r.mu.Unlock()
	if r.panics {
		panic("registry exploded")
	}
	if r.err != nil {
		return nil, r.err
	}
	return &fakePeer{addr: addr}, nil
}

type fakePeerConnection struct {
	peer   Peer
	remote net.Addr
}

func (c *fakePeerConnection) Peer() Peer           { return c.peer }
func (c *fakePeerConnection) RemoteAddr() net.Addr { return c.remote }
func (c *fakePeerConnection) Close() error         { return nil }

type fakeFactory struct {
	result *ConnectionResult // nil means build a success from the inputs
	panics bool

	mu    sync.Mutex
	calls int
}

func (f *fakeFactory) CreateIncoming(peer Peer, conn net.Conn) ConnectionResult {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.panics {
		panic("factory exploded")
	}
	if f.result != nil {
		return *f.result
	}
	return Success(&fakePeerConnection{peer: peer, remote: peer.Address()})
}

// fakeConn is a net.Conn stub for routine tests; only Close and
// RemoteAddr matter here.
type fakeConn struct {
	remote net.Addr

	mu         sync.Mutex
	closeCount int
	closeErr   error
}

func (c *fakeConn) Read(b []byte) (int, error)  { return 0, errors.New("not implemented") }
func (c *fakeConn) Write(b []byte) (int, error) { return 0, errors.New("not implemented") }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCount++
	return c.closeErr
}

func (c *fakeConn) LocalAddr() net.Addr                { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)} }
func (c *fakeConn) RemoteAddr() net.Addr               { return c.remote }
func (c *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

type failingListenerProvider struct {
	err error
}

func (p *failingListenerProvider) OpenListener(ctx context.Context, address string) (net.Listener, error) {
	return nil, p.err
}

func testRemote() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(10, 0, 0, 7), Port: 51413}
}
