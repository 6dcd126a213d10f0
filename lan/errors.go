package lan

import "errors"

// ErrChannelShutdown indicates the announce channel has been shut down
// permanently; no further sockets will be created for it.
var ErrChannelShutdown = errors.New("announce channel has been shut down")
