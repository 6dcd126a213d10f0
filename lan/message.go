package lan

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// announceStartLine opens every local service discovery datagram.
const announceStartLine = "BT-SEARCH * HTTP/1.1"

// AnnounceMessage is one local service discovery announcement: the
// announcing peer's listening port, the info hashes it serves and its
// cookie. The wire form is the HTTP-like BT-SEARCH datagram:
//
//	BT-SEARCH * HTTP/1.1\r\n
//	Host: 239.192.152.143:6771\r\n
//	Port: 6881\r\n
//	Infohash: <40 hex characters>\r\n
//	cookie: <opaque token>\r\n
//	\r\n
//	\r\n
//
// with one Infohash header per announced torrent. The cookie header is
// optional.
type AnnounceMessage struct {
	Port       int
	InfoHashes []InfoHash
	Cookie     Cookie
}

// Marshal renders the message in wire form for the given group.
func (m *AnnounceMessage) Marshal(group *AnnounceGroup) ([]byte, error) {
	if m.Port <= 0 || m.Port > 65535 {
		return nil, fmt.Errorf("announce message: invalid port %d", m.Port)
	}
	if len(m.InfoHashes) == 0 {
		return nil, errors.New("announce message: no info hashes")
	}

	var b strings.Builder
	b.WriteString(announceStartLine)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Host: %s\r\n", group.Address().String())
	fmt.Fprintf(&b, "Port: %d\r\n", m.Port)
	for _, h := range m.InfoHashes {
		fmt.Fprintf(&b, "Infohash: %s\r\n", h.Hex())
	}
	if m.Cookie != "" {
		fmt.Fprintf(&b, "cookie: %s\r\n", m.Cookie)
	}
	b.WriteString("\r\n\r\n")

	return []byte(b.String()), nil
}

// ParseAnnounceMessage parses a BT-SEARCH datagram. Header names are
// case-insensitive; unknown headers are ignored. A message without a
// valid Port or without at least one Infohash is rejected.
func ParseAnnounceMessage(data []byte) (*AnnounceMessage, error) {
	lines := strings.Split(string(data), "\r\n")
	if strings.TrimSpace(lines[0]) != announceStartLine {
		return nil, fmt.Errorf("announce message: unexpected start line %q", lines[0])
	}

	msg := &AnnounceMessage{}
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("announce message: malformed header %q", line)
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(name)) {
		case "port":
			port, err := strconv.Atoi(value)
			if err != nil || port <= 0 || port > 65535 {
				return nil, fmt.Errorf("announce message: invalid port %q", value)
			}
			msg.Port = port
		case "infohash":
			h, err := ParseInfoHash(value)
			if err != nil {
				return nil, fmt.Errorf("announce message: %w", err)
			}
			msg.InfoHashes = append(msg.InfoHashes, h)
		case "cookie":
			msg.Cookie = Cookie(value)
		}
	}

	if msg.Port == 0 {
		return nil, errors.New("announce message: missing port")
	}
	if len(msg.InfoHashes) == 0 {
		return nil, errors.New("announce message: missing info hash")
	}
	return msg, nil
}
