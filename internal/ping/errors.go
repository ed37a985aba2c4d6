package ping

import "fmt"

// UnexpectedPacketIDError is returned when the server answers the status
// probe with a packet id other than the kick packet (0xFF). It carries the
// byte actually received so callers can tell "wrong protocol or server"
// apart from transport failures.
type UnexpectedPacketIDError struct {
	ID byte
}

func (e *UnexpectedPacketIDError) Error() string {
	return fmt.Sprintf("unexpected packet id: %d", e.ID)
}

// ParseError is returned when the status payload does not match either
// response grammar. It preserves the underlying failure (a strconv error
// for numeric fields) for inspection via errors.Unwrap.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse status field %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
