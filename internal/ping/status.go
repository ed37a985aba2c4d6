// Package ping implements the client side of the Minecraft legacy server
// list ping: a 2-byte probe over TCP answered by a single kick packet whose
// UTF-16 payload carries the server status as delimited text. The package
// performs exactly one attempt per call, owns its connection for the
// lifetime of the call, and never logs.
package ping

// Version identifies the server software as reported inside a
// modern-in-legacy response. Very old servers do not report it.
type Version struct {
	Protocol int16  `json:"protocol"`
	Server   string `json:"server"`
}

// PlayerCount holds the current and maximum player slots.
type PlayerCount struct {
	Current uint16 `json:"current"`
	Max     uint16 `json:"max"`
}

// Status is the result of a legacy status query. It is a pure value record
// constructed once per successful query and owned by the caller.
type Status struct {
	// Dirty marks the status as derived from the unstructured legacy text
	// parse rather than a structured protocol response. Always true on a
	// successful legacy query.
	Dirty bool `json:"dirty"`

	// Version is nil when the server predates the modern-in-legacy
	// response format.
	Version *Version `json:"version,omitempty"`

	MOTD   string      `json:"motd"`
	Online PlayerCount `json:"online"`
}
