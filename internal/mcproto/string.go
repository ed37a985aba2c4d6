package mcproto

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf16"
)

// ReadUTF16String reads a length-prefixed UTF-16 string: a big-endian
// uint16 code unit count followed by that many big-endian uint16 code
// units. Malformed text never fails; invalid or unpaired surrogates are
// replaced with U+FFFD. Short input surfaces as an I/O error.
func ReadUTF16String(r io.Reader) (string, error) {
	var length uint16
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", fmt.Errorf("failed to read string length: %w", err)
	}

	if length == 0 {
		return "", nil
	}

	units := make([]uint16, length)
	if err := binary.Read(r, binary.BigEndian, units); err != nil {
		return "", fmt.Errorf("failed to read %d string code units: %w", length, err)
	}

	return string(utf16.Decode(units)), nil
}

// WriteUTF16String writes s as a length-prefixed UTF-16 string. Strings
// longer than 65535 code units cannot be represented on the wire and are
// rejected as a caller error.
func WriteUTF16String(w io.Writer, s string) error {
	units := utf16.Encode([]rune(s))
	if len(units) > math.MaxUint16 {
		return fmt.Errorf("string too long for wire format: %d code units (max %d)", len(units), math.MaxUint16)
	}

	if err := binary.Write(w, binary.BigEndian, uint16(len(units))); err != nil {
		return fmt.Errorf("failed to write string length: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, units); err != nil {
		return fmt.Errorf("failed to write string code units: %w", err)
	}
	return nil
}
