package lan

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// maxAnnounceSize bounds one BT-SEARCH datagram.
const maxAnnounceSize = 2048

// receiveRetryDelay spaces out recreation attempts when the announce
// socket keeps failing.
const receiveRetryDelay = time.Second

// Announcement is one peer sighting on the local network.
type Announcement struct {
	// Source is the address the datagram arrived from.
	Source net.Addr
	// Port is the peer connection port the peer announced.
	Port int
	// InfoHashes are the torrents the peer announced.
	InfoHashes []InfoHash
}

// Discovery listens for announcements from other peers on the local
// network and reports them through a callback. Announcements carrying
// our own cookie are multicast echo and are dropped.
type Discovery struct {
	channel *AnnounceGroupChannel
	cookie  Cookie
	clock   clock.Clock

	mu       sync.RWMutex
	callback func(Announcement)
	running  bool
	cancel   context.CancelFunc
}

// NewDiscovery creates a discovery service reading from the given
// channel. The channel may be shared with an Announcer; the service
// closes it quietly on Stop but never shuts it down.
func NewDiscovery(channel *AnnounceGroupChannel, cookie Cookie) *Discovery {
	return &Discovery{
		channel: channel,
		cookie:  cookie,
		clock:   clock.New(),
	}
}

// OnPeer sets the callback invoked for each announcement received from
// another peer.
func (d *Discovery) OnPeer(callback func(Announcement)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callback = callback
}

// Start launches the receive loop. Calling Start on a running service
// is a no-op.
func (d *Discovery) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.running = true
	go d.receiveLoop(ctx)

	logrus.WithFields(logrus.Fields{
		"function": "Discovery.Start",
		"group":    d.channel.Group().String(),
	}).Debug("Local discovery started")
}

// Stop halts the receive loop and quietly closes the channel's socket
// to unblock a pending receive. The channel stays usable afterwards.
func (d *Discovery) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()

	cancel()
	d.channel.CloseQuietly()

	logrus.WithFields(logrus.Fields{
		"function": "Discovery.Stop",
		"group":    d.channel.Group().String(),
	}).Debug("Local discovery stopped")
}

// IsRunning reports whether the receive loop is active.
func (d *Discovery) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

func (d *Discovery) receiveLoop(ctx context.Context) {
	buf := make([]byte, maxAnnounceSize)

	for {
		if ctx.Err() != nil {
			return
		}
		n, src, err := d.channel.Receive(buf)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if errors.Is(err, ErrChannelShutdown) {
				return
			}
			logrus.WithFields(logrus.Fields{
				"function": "Discovery.receiveLoop",
				"group":    d.channel.Group().String(),
				"error":    err.Error(),
			}).Debug("Announce receive failed, recreating socket")

			d.channel.CloseQuietly()
			d.clock.Sleep(receiveRetryDelay)
			continue
		}

		msg, err := ParseAnnounceMessage(buf[:n])
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Discovery.receiveLoop",
				"source":   src.String(),
				"error":    err.Error(),
			}).Debug("Ignoring malformed announcement")
			continue
		}
		if msg.Cookie != "" && msg.Cookie == d.cookie {
			continue // our own echo
		}

		d.mu.RLock()
		callback := d.callback
		d.mu.RUnlock()
		if callback != nil {
			callback(Announcement{Source: src, Port: msg.Port, InfoHashes: msg.InfoHashes})
		}
	}
}
