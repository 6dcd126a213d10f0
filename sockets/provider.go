// Package sockets opens the raw sockets the connection and discovery
// layers are built on. It is the single place where platform socket
// options are applied, so the ordering requirements of multicast
// configuration (bind before setting the TTL option) live here and in
// the callers' creation sequence, not scattered across components.
package sockets

import (
	"context"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// NetProvider opens sockets using the standard library network stack.
// It implements the datagram and listener provider interfaces consumed
// by the lan and peernet packages.
type NetProvider struct{}

// NewNetProvider creates a provider backed by the host network stack.
func NewNetProvider() *NetProvider {
	return &NetProvider{}
}

// OpenDatagram opens a datagram socket for the given network ("udp4" or
// "udp6") with address reuse enabled, bound to the wildcard address of
// the matching family on an ephemeral port. The socket is returned
// already bound so that multicast options applied afterwards take
// effect.
func (p *NetProvider) OpenDatagram(ctx context.Context, network string) (net.PacketConn, error) {
	var wildcard string
	switch network {
	case "udp4":
		wildcard = "0.0.0.0:0"
	case "udp6":
		wildcard = "[::]:0"
	default:
		return nil, fmt.Errorf("open datagram: unsupported network %q", network)
	}

	lc := net.ListenConfig{Control: controlReuseAddr}
	conn, err := lc.ListenPacket(ctx, network, wildcard)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NetProvider.OpenDatagram",
			"network":  network,
			"error":    err.Error(),
		}).Error("Failed to open datagram socket")
		return nil, fmt.Errorf("open datagram: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "NetProvider.OpenDatagram",
		"network":    network,
		"local_addr": conn.LocalAddr().String(),
	}).Debug("Datagram socket opened")

	return conn, nil
}

// SetMulticastTTL applies the multicast time-to-live (hop limit for
// IPv6) to a datagram socket previously opened with OpenDatagram. The
// socket must already be bound.
func (p *NetProvider) SetMulticastTTL(conn net.PacketConn, network string, ttl int) error {
	var err error
	switch network {
	case "udp4":
		err = ipv4.NewPacketConn(conn).SetMulticastTTL(ttl)
	case "udp6":
		err = ipv6.NewPacketConn(conn).SetMulticastHopLimit(ttl)
	default:
		return fmt.Errorf("set multicast ttl: unsupported network %q", network)
	}
	if err != nil {
		return fmt.Errorf("set multicast ttl: %w", err)
	}
	return nil
}

// OpenListener binds a stream listener to the given local address in
// blocking accept mode.
func (p *NetProvider) OpenListener(ctx context.Context, address string) (net.Listener, error) {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "NetProvider.OpenListener",
			"address":  address,
			"error":    err.Error(),
		}).Error("Failed to open listener")
		return nil, fmt.Errorf("open listener: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function":   "NetProvider.OpenListener",
		"address":    address,
		"local_addr": listener.Addr().String(),
	}).Debug("Listener opened")

	return listener, nil
}
