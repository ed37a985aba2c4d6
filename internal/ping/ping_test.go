package ping

import (
	"bytes"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/squareland/pinger/internal/mcproto"
)

func TestParsePayloadModernInLegacy(t *testing.T) {
	payload := "§1\x00127\x001.8\x00A Minecraft Server\x005\x0020"

	status, err := parsePayload(payload)
	if err != nil {
		t.Fatalf("parsePayload() error = %v", err)
	}

	if !status.Dirty {
		t.Error("Dirty = false, want true")
	}
	if status.Version == nil {
		t.Fatal("Version = nil, want populated")
	}
	if status.Version.Protocol != 127 {
		t.Errorf("Version.Protocol = %d, want 127", status.Version.Protocol)
	}
	if status.Version.Server != "1.8" {
		t.Errorf("Version.Server = %q, want %q", status.Version.Server, "1.8")
	}
	if status.MOTD != "A Minecraft Server" {
		t.Errorf("MOTD = %q, want %q", status.MOTD, "A Minecraft Server")
	}
	if status.Online != (PlayerCount{Current: 5, Max: 20}) {
		t.Errorf("Online = %+v, want {5 20}", status.Online)
	}
}

func TestParsePayloadLegacy(t *testing.T) {
	payload := "A Minecraft Server§3§20"

	status, err := parsePayload(payload)
	if err != nil {
		t.Fatalf("parsePayload() error = %v", err)
	}

	if status.Version != nil {
		t.Errorf("Version = %+v, want nil", status.Version)
	}
	if status.MOTD != "A Minecraft Server" {
		t.Errorf("MOTD = %q, want %q", status.MOTD, "A Minecraft Server")
	}
	if status.Online != (PlayerCount{Current: 3, Max: 20}) {
		t.Errorf("Online = %+v, want {3 20}", status.Online)
	}
}

func TestParsePayloadErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"modern_non_numeric_count", "§1\x00127\x001.8\x00motd\x00abc\x0020"},
		{"modern_too_few_fields", "§1\x00127\x001.8"},
		{"modern_protocol_out_of_range", "§1\x0099999\x001.8\x00motd\x005\x0020"},
		{"legacy_non_numeric_count", "motd§x§20"},
		{"legacy_too_few_fields", "just a motd"},
		{"legacy_negative_count", "motd§-1§20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := parsePayload(tt.payload)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("parsePayload() error = %v, want *ParseError", err)
			}
			if status != nil {
				t.Errorf("parsePayload() = %+v, want nil on error", status)
			}
		})
	}
}

// serveOnce accepts a single connection, consumes the 2-byte probe and
// responds with the given raw bytes.
func serveOnce(t *testing.T, response []byte) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		probe := make([]byte, 2)
		if _, err := conn.Read(probe); err != nil {
			return
		}
		if response != nil {
			conn.Write(response)
		} else {
			// Timeout case: hold the connection open without answering.
			time.Sleep(2 * time.Second)
		}
	}()

	return ln.Addr().String()
}

func kickResponse(t *testing.T, payload string) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	buf.WriteByte(0xFF)
	if err := mcproto.WriteUTF16String(buf, payload); err != nil {
		t.Fatalf("build response: %v", err)
	}
	return buf.Bytes()
}

func TestGetStatus(t *testing.T) {
	addr := serveOnce(t, kickResponse(t, "§1\x00127\x001.8\x00A Minecraft Server\x005\x0020"))

	status, err := GetStatus(addr, time.Second)
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}

	if status.Version == nil || status.Version.Protocol != 127 {
		t.Errorf("Version = %+v, want protocol 127", status.Version)
	}
	if status.Online != (PlayerCount{Current: 5, Max: 20}) {
		t.Errorf("Online = %+v, want {5 20}", status.Online)
	}
}

func TestGetStatusSlowChunkedResponse(t *testing.T) {
	// The response arrives in chunks 200ms apart, totaling well over the
	// per-read budget. Each read completes inside it, so the query must
	// still succeed.
	response := kickResponse(t, "§1\x00127\x001.8\x00A Minecraft Server\x005\x0020")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		probe := make([]byte, 2)
		if _, err := conn.Read(probe); err != nil {
			return
		}

		chunk := len(response)/4 + 1
		for off := 0; off < len(response); off += chunk {
			end := off + chunk
			if end > len(response) {
				end = len(response)
			}
			conn.Write(response[off:end])
			time.Sleep(200 * time.Millisecond)
		}
	}()

	status, err := GetStatus(ln.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if status.Online != (PlayerCount{Current: 5, Max: 20}) {
		t.Errorf("Online = %+v, want {5 20}", status.Online)
	}
}

func TestGetStatusUnexpectedPacketID(t *testing.T) {
	addr := serveOnce(t, []byte{0x02, 0xDE, 0xAD})

	_, err := GetStatus(addr, time.Second)

	var pktErr *UnexpectedPacketIDError
	if !errors.As(err, &pktErr) {
		t.Fatalf("GetStatus() error = %v, want *UnexpectedPacketIDError", err)
	}
	if pktErr.ID != 2 {
		t.Errorf("ID = %d, want 2", pktErr.ID)
	}
}

func TestGetStatusReadTimeout(t *testing.T) {
	addr := serveOnce(t, nil)

	start := time.Now()
	_, err := GetStatus(addr, time.Second)
	elapsed := time.Since(start)

	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Fatalf("GetStatus() error = %v, want timeout", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("GetStatus() took %v, read deadline not applied", elapsed)
	}
}

func TestGetStatusDialFailure(t *testing.T) {
	// A listener that is immediately closed leaves a port nothing accepts on.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	if _, err := GetStatus(addr, 500*time.Millisecond); err == nil {
		t.Fatal("GetStatus() expected dial error")
	}
}
