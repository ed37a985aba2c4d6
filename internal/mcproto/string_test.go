package mcproto_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/squareland/pinger/internal/mcproto"
)

func TestUTF16StringRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		s    string
	}{
		{"empty", ""},
		{"ascii", "A Minecraft Server"},
		{"section_signs", "§1\x00127\x001.8"},
		{"bmp_unicode", "Mötd §c状態 서버 상태"},
		{"astral", "emoji \U0001F600 pair"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			if err := mcproto.WriteUTF16String(buf, tt.s); err != nil {
				t.Fatalf("WriteUTF16String() error = %v", err)
			}
			got, err := mcproto.ReadUTF16String(buf)
			if err != nil {
				t.Fatalf("ReadUTF16String() error = %v", err)
			}
			if got != tt.s {
				t.Errorf("round trip = %q, want %q", got, tt.s)
			}
		})
	}
}

func TestReadUTF16StringWireFormat(t *testing.T) {
	// "Hi" = length 0x0002, units 0x0048 0x0069, all big-endian.
	input := []byte{0x00, 0x02, 0x00, 0x48, 0x00, 0x69}
	got, err := mcproto.ReadUTF16String(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("ReadUTF16String() error = %v", err)
	}
	if got != "Hi" {
		t.Errorf("ReadUTF16String() = %q, want %q", got, "Hi")
	}
}

func TestReadUTF16StringUnpairedSurrogate(t *testing.T) {
	// A lone high surrogate must decode to the replacement character,
	// never fail.
	input := []byte{0x00, 0x01, 0xD8, 0x00}
	got, err := mcproto.ReadUTF16String(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("ReadUTF16String() error = %v", err)
	}
	if got != "�" {
		t.Errorf("ReadUTF16String() = %q, want replacement character", got)
	}
}

func TestReadUTF16StringTruncated(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"no_length", []byte{}},
		{"half_length", []byte{0x00}},
		{"missing_units", []byte{0x00, 0x03, 0x00, 0x41}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := mcproto.ReadUTF16String(bytes.NewReader(tt.input)); err == nil {
				t.Fatal("ReadUTF16String() expected error on short input")
			}
		})
	}
}

func TestWriteUTF16StringTooLong(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := mcproto.WriteUTF16String(buf, strings.Repeat("x", 65536)); err == nil {
		t.Fatal("WriteUTF16String() expected error for >65535 code units")
	}
}
