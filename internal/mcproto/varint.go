// Package mcproto implements the low-level wire codecs shared by the
// Minecraft legacy ping handshake and protocol-adjacent tooling:
// variable-length integers (VarInt/VarLong) and length-prefixed UTF-16
// strings. All multi-byte fields use big-endian byte order except the
// VarInt chunk order, which is little-endian as defined by the protocol.
package mcproto

import (
	"errors"
	"io"
)

// Maximum encoded sizes. A VarInt carries at most 32 bits of payload in
// 7-bit chunks, a VarLong at most 64 bits.
const (
	MaxVarIntBytes  = 5
	MaxVarLongBytes = 10
)

var (
	// ErrVarIntTooBig is returned when a VarInt has its continuation bit
	// still set on the 5th byte.
	ErrVarIntTooBig = errors.New("mcproto: VarInt too big")

	// ErrVarLongTooBig is returned when a VarLong has its continuation bit
	// still set on the 10th byte.
	ErrVarLongTooBig = errors.New("mcproto: VarLong too big")
)

// ReadVarInt reads a VarInt from r. Each byte contributes its low 7 bits,
// chunk i shifted left by 7*i; a set MSB means more bytes follow. The
// accumulator is a plain int32, so oversized chunk values wrap exactly as
// a 32-bit shift would.
func ReadVarInt(r io.Reader) (int32, error) {
	var value int32

	for i := 0; i < MaxVarIntBytes; i++ {
		b, err := readByte(r)
		if err != nil {
			return 0, err
		}

		value |= int32(b&0x7F) << (7 * i)

		if b&0x80 == 0 {
			return value, nil
		}
	}

	return 0, ErrVarIntTooBig
}

// ReadVarLong reads a VarLong from r using the same scheme as ReadVarInt
// with a 64-bit accumulator.
func ReadVarLong(r io.Reader) (int64, error) {
	var value int64

	for i := 0; i < MaxVarLongBytes; i++ {
		b, err := readByte(r)
		if err != nil {
			return 0, err
		}

		value |= int64(b&0x7F) << (7 * i)

		if b&0x80 == 0 {
			return value, nil
		}
	}

	return 0, ErrVarLongTooBig
}

// WriteVarInt writes value to w as a VarInt. The value is shifted as its
// unsigned bit pattern, so negative values encode as two's-complement over
// the full 32 bits (-1 always takes 5 bytes).
func WriteVarInt(w io.Writer, value int32) error {
	buf := make([]byte, 0, MaxVarIntBytes)

	v := uint32(value)
	for v&^0x7F != 0 {
		buf = append(buf, byte(v&0x7F|0x80))
		v >>= 7
	}
	buf = append(buf, byte(v))

	_, err := w.Write(buf)
	return err
}

// WriteVarLong writes value to w as a VarLong.
func WriteVarLong(w io.Writer, value int64) error {
	buf := make([]byte, 0, MaxVarLongBytes)

	v := uint64(value)
	for v&^0x7F != 0 {
		buf = append(buf, byte(v&0x7F|0x80))
		v >>= 7
	}
	buf = append(buf, byte(v))

	_, err := w.Write(buf)
	return err
}

// readByte reads a single byte from r without allocating a buffer when r
// already supports byte-at-a-time reads.
func readByte(r io.Reader) (byte, error) {
	if br, ok := r.(io.ByteReader); ok {
		return br.ReadByte()
	}

	var one [1]byte
	if _, err := io.ReadFull(r, one[:]); err != nil {
		return 0, err
	}
	return one[0], nil
}
