package mcproto_test

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/squareland/pinger/internal/mcproto"
)

func TestWriteVarInt(t *testing.T) {
	tests := []struct {
		name  string
		value int32
		want  []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"one", 1, []byte{0x01}},
		{"127", 127, []byte{0x7F}},
		{"128", 128, []byte{0x80, 0x01}},
		{"255", 255, []byte{0xFF, 0x01}},
		{"2097151", 2097151, []byte{0xFF, 0xFF, 0x7F}},
		{"max_int32", math.MaxInt32, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
		{"minus_one", -1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
		{"min_int32", math.MinInt32, []byte{0x80, 0x80, 0x80, 0x80, 0x08}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			if err := mcproto.WriteVarInt(buf, tt.value); err != nil {
				t.Fatalf("WriteVarInt() error = %v", err)
			}
			if !bytes.Equal(buf.Bytes(), tt.want) {
				t.Errorf("WriteVarInt() = %v, want %v", buf.Bytes(), tt.want)
			}
		})
	}
}

func TestReadVarInt(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  int32
	}{
		{"zero", []byte{0x00}, 0},
		{"one", []byte{0x01}, 1},
		{"128", []byte{0x80, 0x01}, 128},
		{"2097151", []byte{0xFF, 0xFF, 0x7F}, 2097151},
		{"max_int32", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}, math.MaxInt32},
		{"minus_one", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mcproto.ReadVarInt(bytes.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadVarInt() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadVarInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadVarIntTooBig(t *testing.T) {
	// Continuation bit still set on the 5th byte must fail, never wrap.
	input := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
	_, err := mcproto.ReadVarInt(bytes.NewReader(input))
	if !errors.Is(err, mcproto.ErrVarIntTooBig) {
		t.Fatalf("ReadVarInt() error = %v, want ErrVarIntTooBig", err)
	}
}

func TestReadVarIntShortInput(t *testing.T) {
	_, err := mcproto.ReadVarInt(bytes.NewReader([]byte{0x80}))
	if err == nil {
		t.Fatal("ReadVarInt() expected error on truncated input")
	}
}

func TestVarIntRoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 127, 128, 300, -300, 25565, math.MaxInt32, math.MinInt32}

	for _, v := range values {
		buf := new(bytes.Buffer)
		if err := mcproto.WriteVarInt(buf, v); err != nil {
			t.Fatalf("WriteVarInt(%d) error = %v", v, err)
		}
		got, err := mcproto.ReadVarInt(buf)
		if err != nil {
			t.Fatalf("ReadVarInt(%d) error = %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d = %d", v, got)
		}
	}
}

func TestWriteVarLong(t *testing.T) {
	tests := []struct {
		name  string
		value int64
		want  []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"max_int64", math.MaxInt64, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F}},
		{"minus_one", -1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}},
		{"min_int64", math.MinInt64, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			if err := mcproto.WriteVarLong(buf, tt.value); err != nil {
				t.Fatalf("WriteVarLong() error = %v", err)
			}
			if !bytes.Equal(buf.Bytes(), tt.want) {
				t.Errorf("WriteVarLong() = %v, want %v", buf.Bytes(), tt.want)
			}
		})
	}
}

func TestReadVarLongTooBig(t *testing.T) {
	// 10 continuation bytes and counting.
	input := bytes.Repeat([]byte{0xFF}, 11)
	_, err := mcproto.ReadVarLong(bytes.NewReader(input))
	if !errors.Is(err, mcproto.ErrVarLongTooBig) {
		t.Fatalf("ReadVarLong() error = %v, want ErrVarLongTooBig", err)
	}
}

func TestVarLongRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 127, 128, math.MaxInt32, math.MinInt32, math.MaxInt64, math.MinInt64}

	for _, v := range values {
		buf := new(bytes.Buffer)
		if err := mcproto.WriteVarLong(buf, v); err != nil {
			t.Fatalf("WriteVarLong(%d) error = %v", v, err)
		}
		got, err := mcproto.ReadVarLong(buf)
		if err != nil {
			t.Fatalf("ReadVarLong(%d) error = %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d = %d", v, got)
		}
	}
}
