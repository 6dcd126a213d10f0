package lan

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/sirupsen/logrus"
)

// DatagramProvider opens the raw datagram sockets the announce channel
// is built on. sockets.NetProvider is the production implementation;
// tests substitute fakes to observe the creation sequence.
type DatagramProvider interface {
	// OpenDatagram returns a socket of the given family ("udp4" or
	// "udp6") with address reuse enabled, already bound to the family
	// wildcard on an ephemeral port.
	OpenDatagram(ctx context.Context, network string) (net.PacketConn, error)

	// SetMulticastTTL applies the multicast TTL to a bound socket.
	SetMulticastTTL(conn net.PacketConn, network string, ttl int) error
}

// AnnounceGroupChannel is a repairable datagram channel bound to a
// multicast announce group.
//
// The underlying socket is created lazily on the first Send or Receive
// and recreated just as lazily after a CloseQuietly. If a Send or
// Receive fails with an I/O error the socket is left in place; the
// caller's designated recovery is CloseQuietly followed by a retry of
// the original operation, which builds a fresh socket. Shutdown is
// terminal: the current socket is discarded and no new one is ever
// created.
//
// At most one live socket exists per channel at any time.
type AnnounceGroupChannel struct {
	group    *AnnounceGroup
	provider DatagramProvider

	mu       sync.Mutex
	conn     net.PacketConn
	shutdown bool
}

// NewAnnounceGroupChannel creates a channel for the given group. No
// socket is opened until the first Send or Receive.
func NewAnnounceGroupChannel(group *AnnounceGroup, provider DatagramProvider) *AnnounceGroupChannel {
	return &AnnounceGroupChannel{
		group:    group,
		provider: provider,
	}
}

// Group returns the announce group this channel is bound to.
func (c *AnnounceGroupChannel) Group() *AnnounceGroup {
	return c.group
}

// Send writes one announcement datagram to the group address, creating
// the socket on demand. A failed write leaves the socket in place; see
// CloseQuietly for the recovery protocol.
func (c *AnnounceGroupChannel) Send(buf []byte) error {
	conn, err := c.getConn()
	if err != nil {
		return err
	}
	if _, err := conn.WriteTo(buf, c.group.Address()); err != nil {
		return fmt.Errorf("announce send to %s: %w", c.group, err)
	}
	return nil
}

// Receive reads one datagram into buf and returns the number of bytes
// read and the sender address, creating the socket on demand. Receive
// blocks until a datagram arrives or the socket is closed from another
// goroutine (CloseQuietly or Shutdown), in which case it returns an
// I/O error.
func (c *AnnounceGroupChannel) Receive(buf []byte) (int, net.Addr, error) {
	conn, err := c.getConn()
	if err != nil {
		return 0, nil, err
	}
	n, addr, err := conn.ReadFrom(buf)
	if err != nil {
		return 0, nil, fmt.Errorf("announce receive on %s: %w", c.group, err)
	}
	return n, addr, nil
}

// getConn is the single creation entry point shared by Send and
// Receive. The socket reference and lifecycle state are guarded by the
// channel mutex; the blocking I/O itself runs on the returned snapshot
// so that CloseQuietly can interrupt a blocked Receive.
func (c *AnnounceGroupChannel) getConn() (net.PacketConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}
	if c.shutdown {
		return nil, ErrChannelShutdown
	}

	network := c.group.Network()
	conn, err := c.provider.OpenDatagram(context.Background(), network)
	if err != nil {
		return nil, fmt.Errorf("open announce socket for %s: %w", c.group, err)
	}
	// The socket comes back already bound; the TTL option only takes
	// effect on a bound socket, so this order is load-bearing.
	if err := c.provider.SetMulticastTTL(conn, network, c.group.TimeToLive()); err != nil {
		c.closeConn(conn)
		return nil, fmt.Errorf("configure announce socket for %s: %w", c.group, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "AnnounceGroupChannel.getConn",
		"group":      c.group.String(),
		"local_addr": conn.LocalAddr().String(),
	}).Debug("Announce socket created")

	c.conn = conn
	return conn, nil
}

// CloseQuietly closes and discards the current socket if present. Close
// errors are logged and swallowed; closing is best-effort cleanup and
// must never block the subsequent recreation. Idempotent. Does not set
// the shutdown flag, so the next Send or Receive creates a fresh
// socket.
func (c *AnnounceGroupChannel) CloseQuietly() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discardConnLocked()
}

// Shutdown permanently disables the channel. The first call closes the
// current socket; concurrent and repeated calls are no-ops. After
// Shutdown every Send and Receive fails with ErrChannelShutdown.
func (c *AnnounceGroupChannel) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shutdown {
		return
	}
	c.shutdown = true
	c.discardConnLocked()

	logrus.WithFields(logrus.Fields{
		"function": "AnnounceGroupChannel.Shutdown",
		"group":    c.group.String(),
	}).Debug("Announce channel shut down")
}

// discardConnLocked releases the current socket, if any. Callers must
// hold c.mu. State transitions as if the close succeeded regardless of
// the close outcome.
func (c *AnnounceGroupChannel) discardConnLocked() {
	if c.conn == nil {
		return
	}
	c.closeConn(c.conn)
	c.conn = nil
}

func (c *AnnounceGroupChannel) closeConn(conn net.PacketConn) {
	if err := conn.Close(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "AnnounceGroupChannel.closeConn",
			"group":    c.group.String(),
			"error":    err.Error(),
		}).Warn("Failed to close announce socket")
	}
}
