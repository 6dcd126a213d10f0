// Package lan implements local-network peer discovery for the swarm
// engine: announcing the torrents a node serves to a multicast group
// and collecting the announcements of other nodes on the same network.
//
// The transport is AnnounceGroupChannel, a repairable datagram channel.
// Datagram sockets fail unpredictably; instead of dying with them, the
// channel lets the caller close the broken socket quietly and retry,
// which transparently creates a fresh one:
//
//	channel := lan.NewAnnounceGroupChannel(group, sockets.NewNetProvider())
//	if err := channel.Send(payload); err != nil {
//	    channel.CloseQuietly()
//	    err = channel.Send(payload) // fresh socket
//	}
//
// On top of the channel sit the BT-SEARCH announcement codec, the
// periodic Announcer and the Discovery service, which reports peers
// seen on the local network through a callback:
//
//	disc := lan.NewDiscovery(channel, cookie)
//	disc.OnPeer(func(a lan.Announcement) {
//	    // a.Source, a.Port, a.InfoHashes
//	})
//	disc.Start()
//	defer disc.Stop()
//
// Shutdown of a channel is terminal: no socket is ever created again
// and Send/Receive fail with ErrChannelShutdown.
package lan
