package lan

import (
	"context"
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// Announcer periodically broadcasts the locally served info hashes to
// the announce group.
type Announcer struct {
	channel  *AnnounceGroupChannel
	cookie   Cookie
	port     int
	interval time.Duration
	clock    clock.Clock
}

// NewAnnouncer creates an announcer for the given channel. port is the
// peer connection port advertised to the local network; interval is
// the period between announcement rounds in Run.
func NewAnnouncer(channel *AnnounceGroupChannel, cookie Cookie, port int, interval time.Duration) *Announcer {
	return &Announcer{
		channel:  channel,
		cookie:   cookie,
		port:     port,
		interval: interval,
		clock:    clock.New(),
	}
}

// Announce sends one announcement for the given info hashes. A failed
// send triggers the channel's designated recovery, a quiet close
// followed by a single retry on a fresh socket. A channel that has
// been shut down is not retried.
func (a *Announcer) Announce(hashes []InfoHash) error {
	msg := &AnnounceMessage{Port: a.port, InfoHashes: hashes, Cookie: a.cookie}
	data, err := msg.Marshal(a.channel.Group())
	if err != nil {
		return err
	}

	if err := a.channel.Send(data); err != nil {
		if errors.Is(err, ErrChannelShutdown) {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"function": "Announcer.Announce",
			"group":    a.channel.Group().String(),
			"error":    err.Error(),
		}).Warn("Announce failed, retrying on a fresh socket")

		a.channel.CloseQuietly()
		return a.channel.Send(data)
	}
	return nil
}

// Run announces every interval until ctx is cancelled or the channel
// is shut down. hashes is consulted on each round so the announced set
// can change over time.
func (a *Announcer) Run(ctx context.Context, hashes func() []InfoHash) {
	ticker := a.clock.Ticker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			set := hashes()
			if len(set) == 0 {
				continue
			}
			if err := a.Announce(set); err != nil {
				if errors.Is(err, ErrChannelShutdown) {
					return
				}
				logrus.WithFields(logrus.Fields{
					"function": "Announcer.Run",
					"group":    a.channel.Group().String(),
					"error":    err.Error(),
				}).Error("Failed to announce to group")
			}
		}
	}
}
