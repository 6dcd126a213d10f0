package lan

import (
	"encoding/hex"
	"fmt"
)

// InfoHash identifies a torrent in announcements.
type InfoHash [20]byte

// ParseInfoHash decodes a 40-character hex info hash. Both cases are
// accepted on the wire.
func ParseInfoHash(s string) (InfoHash, error) {
	var h InfoHash
	if len(s) != hex.EncodedLen(len(h)) {
		return h, fmt.Errorf("info hash: expected %d hex characters, got %d", hex.EncodedLen(len(h)), len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("info hash: %w", err)
	}
	return h, nil
}

// Hex returns the lowercase hex form used in announcements.
func (h InfoHash) Hex() string {
	return hex.EncodeToString(h[:])
}

func (h InfoHash) String() string {
	return h.Hex()
}
