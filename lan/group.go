package lan

import (
	"fmt"
	"net"
)

// Standard local service discovery groups.
var (
	// GroupIPv4 is the IPv4 multicast group peers announce on.
	GroupIPv4 = &net.UDPAddr{IP: net.IPv4(239, 192, 152, 143), Port: 6771}

	// GroupIPv6 is the IPv6 multicast group peers announce on.
	GroupIPv6 = &net.UDPAddr{IP: net.ParseIP("ff15::efc0:988f"), Port: 6771}
)

// AnnounceGroup identifies a multicast group used for local peer
// discovery: the address announcements are sent to and the time-to-live
// applied to outgoing datagrams. Immutable once created.
type AnnounceGroup struct {
	addr *net.UDPAddr
	ttl  int
}

// NewAnnounceGroup creates a group for the given multicast address.
// The TTL is passed through to the socket unvalidated; out-of-range
// values surface as errors when the option is set.
func NewAnnounceGroup(addr *net.UDPAddr, ttl int) (*AnnounceGroup, error) {
	if addr == nil || addr.IP == nil {
		return nil, fmt.Errorf("announce group: missing address")
	}
	if !addr.IP.IsMulticast() {
		return nil, fmt.Errorf("announce group: %s is not a multicast address", addr.IP)
	}
	return &AnnounceGroup{addr: addr, ttl: ttl}, nil
}

// Address returns the group's multicast address.
func (g *AnnounceGroup) Address() *net.UDPAddr {
	return g.addr
}

// TimeToLive returns the multicast TTL for announcements to this group.
func (g *AnnounceGroup) TimeToLive() int {
	return g.ttl
}

// Network returns the address family the group's sockets must use,
// "udp4" or "udp6".
func (g *AnnounceGroup) Network() string {
	if g.addr.IP.To4() != nil {
		return "udp4"
	}
	return "udp6"
}

func (g *AnnounceGroup) String() string {
	return fmt.Sprintf("%s (ttl %d)", g.addr.String(), g.ttl)
}
