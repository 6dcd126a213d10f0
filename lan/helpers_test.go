package lan

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"
)

// fakeDatagram is one queued inbound datagram for a fakePacketConn.
type fakeDatagram struct {
	data []byte
	from net.Addr
}

// fakePacketConn is an in-memory net.PacketConn recording writes and
// serving queued inbound datagrams.
type fakePacketConn struct {
	local *net.UDPAddr

	mu         sync.Mutex
	closed     bool
	closeCount int
	closeErr   error
	writeErr   error
	writes     [][]byte
	writeAddrs []net.Addr

	inbound chan fakeDatagram
}

func newFakePacketConn(port int) *fakePacketConn {
	return &fakePacketConn{
		local:   &net.UDPAddr{IP: net.IPv4zero, Port: port},
		inbound: make(chan fakeDatagram, 8),
	}
}

func (c *fakePacketConn) ReadFrom(p []byte) (int, net.Addr, error) {
	d, ok := <-c.inbound
	if !ok {
		return 0, nil, net.ErrClosed
	}
	n := copy(p, d.data)
	return n, d.from, nil
}

func (c *fakePacketConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, net.ErrClosed
	}
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	c.writes = append(c.writes, append([]byte(nil), p...))
	c.writeAddrs = append(c.writeAddrs, addr)
	return len(p), nil
}

func (c *fakePacketConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCount++
	if c.closed {
		return net.ErrClosed
	}
	c.closed = true
	close(c.inbound)
	return c.closeErr
}

func (c *fakePacketConn) LocalAddr() net.Addr                { return c.local }
func (c *fakePacketConn) SetDeadline(t time.Time) error      { return nil }
func (c *fakePacketConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fakePacketConn) SetWriteDeadline(t time.Time) error { return nil }

func (c *fakePacketConn) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func (c *fakePacketConn) lastWrite() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.writes) == 0 {
		return nil
	}
	return c.writes[len(c.writes)-1]
}

func (c *fakePacketConn) setWriteErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

func (c *fakePacketConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakePacketConn) push(data []byte, from net.Addr) {
	c.inbound <- fakeDatagram{data: data, from: from}
}

// fakeProvider hands out fakePacketConns with increasing local ports
// and records the order of creation steps.
type fakeProvider struct {
	mu       sync.Mutex
	ops      []string
	networks []string
	ttls     []int
	conns    []*fakePacketConn
	nextPort int

	openErr error
	ttlErr  error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{nextPort: 40000}
}

func (p *fakeProvider) OpenDatagram(ctx context.Context, network string) (net.PacketConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.openErr != nil {
		return nil, p.openErr
	}
	p.ops = append(p.ops, "open")
	p.networks = append(p.networks, network)
	p.nextPort++
	conn := newFakePacketConn(p.nextPort)
	p.conns = append(p.conns, conn)
	return conn, nil
}

func (p *fakeProvider) SetMulticastTTL(conn net.PacketConn, network string, ttl int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ttlErr != nil {
		return p.ttlErr
	}
	p.ops = append(p.ops, "setttl")
	p.ttls = append(p.ttls, ttl)
	return nil
}

func (p *fakeProvider) openCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, op := range p.ops {
		if op == "open" {
			n++
		}
	}
	return n
}

func (p *fakeProvider) conn(i int) *fakePacketConn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conns[i]
}

func (p *fakeProvider) opOrder() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.ops...)
}

func testGroup(t *testing.T) *AnnounceGroup {
	t.Helper()
	group, err := NewAnnounceGroup(&net.UDPAddr{IP: net.IPv4(239, 1, 1, 1), Port: 6771}, 4)
	if err != nil {
		t.Fatalf("Failed to create test group: %v", err)
	}
	return group
}
