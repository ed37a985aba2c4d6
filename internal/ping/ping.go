package ping

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/squareland/pinger/internal/mcproto"
)

const (
	// The legacy "are you there" probe and the kick packet id that carries
	// the status payload in response.
	probeByte     byte = 0xFE
	probePayload  byte = 0x01
	kickPacketID  byte = 0xFF
	readTimeout        = 500 * time.Millisecond
	modernMarker       = "§1"
	fieldDelimRaw      = "§"
)

// GetStatus connects to address, bounded by connectTimeout, and performs a
// single legacy status query. The connection is closed before returning,
// whether the query succeeded or not. Each read after the dial is bounded
// by a fixed 500 ms deadline.
func GetStatus(address string, connectTimeout time.Duration) (*Status, error) {
	conn, err := net.DialTimeout("tcp", address, connectTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return GetStatusConn(conn)
}

// GetStatusConn performs the legacy status query over a caller-supplied
// duplex stream. The caller keeps ownership of conn; GetStatusConn only
// sets its read deadline.
func GetStatusConn(conn net.Conn) (*Status, error) {
	if _, err := conn.Write([]byte{probeByte, probePayload}); err != nil {
		return nil, fmt.Errorf("failed to send status probe: %w", err)
	}

	// The timeout budgets each read, not the exchange as a whole. A server
	// trickling a valid response in sub-500ms chunks still succeeds.
	r := deadlineReader{conn: conn}

	var id [1]byte
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return nil, fmt.Errorf("failed to read packet id: %w", err)
	}
	if id[0] != kickPacketID {
		return nil, &UnexpectedPacketIDError{ID: id[0]}
	}

	payload, err := mcproto.ReadUTF16String(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read status payload: %w", err)
	}

	return parsePayload(payload)
}

// deadlineReader re-arms the connection's read deadline before every read.
type deadlineReader struct {
	conn net.Conn
}

func (r deadlineReader) Read(p []byte) (int, error) {
	if err := r.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return 0, fmt.Errorf("failed to set read deadline: %w", err)
	}
	return r.conn.Read(p)
}

// parsePayload dispatches on the payload prefix and extracts the status
// fields. Servers since 1.4 answer even the legacy probe with a
// NUL-delimited payload marked "§1"; older servers answer with three
// §-delimited fields. The split happens once per branch.
func parsePayload(payload string) (*Status, error) {
	if strings.HasPrefix(payload, modernMarker) {
		return parseModernInLegacy(payload)
	}
	return parseLegacy(payload)
}

// parseModernInLegacy handles the NUL-delimited form:
// [marker, protocol, server version, motd, current, max].
func parseModernInLegacy(payload string) (*Status, error) {
	fields := strings.Split(payload, "\x00")
	if len(fields) < 6 {
		return nil, &ParseError{
			Field: "field_count",
			Err:   fmt.Errorf("expected 6 NUL-delimited fields, got %d", len(fields)),
		}
	}

	protocol, err := strconv.ParseInt(fields[1], 10, 16)
	if err != nil {
		return nil, &ParseError{Field: "protocol", Err: err}
	}

	online, err := parsePlayerCount(fields[4], fields[5])
	if err != nil {
		return nil, err
	}

	return &Status{
		Dirty: true,
		Version: &Version{
			Protocol: int16(protocol),
			Server:   fields[2],
		},
		MOTD:   fields[3],
		Online: online,
	}, nil
}

// parseLegacy handles the pre-1.4 form: [motd, current, max] delimited by
// the section sign.
func parseLegacy(payload string) (*Status, error) {
	fields := strings.Split(payload, fieldDelimRaw)
	if len(fields) < 3 {
		return nil, &ParseError{
			Field: "field_count",
			Err:   fmt.Errorf("expected 3 §-delimited fields, got %d", len(fields)),
		}
	}

	online, err := parsePlayerCount(fields[1], fields[2])
	if err != nil {
		return nil, err
	}

	return &Status{
		Dirty:  true,
		MOTD:   fields[0],
		Online: online,
	}, nil
}

// parsePlayerCount parses the two decimal player count fields.
func parsePlayerCount(current, max string) (PlayerCount, error) {
	cur, err := strconv.ParseUint(current, 10, 16)
	if err != nil {
		return PlayerCount{}, &ParseError{Field: "current_players", Err: err}
	}

	slots, err := strconv.ParseUint(max, 10, 16)
	if err != nil {
		return PlayerCount{}, &ParseError{Field: "max_players", Err: err}
	}

	return PlayerCount{Current: uint16(cur), Max: uint16(slots)}, nil
}
