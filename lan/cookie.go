package lan

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Cookie is an opaque token attached to outgoing announcements so an
// instance can recognize and drop its own multicast echo. Cookies
// carry no meaning beyond equality.
type Cookie string

// NewCookie returns a fresh random cookie.
func NewCookie() Cookie {
	id := uuid.New()
	return Cookie(hex.EncodeToString(id[:8]))
}

func (c Cookie) String() string {
	return string(c)
}
