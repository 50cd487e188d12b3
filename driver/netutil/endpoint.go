package netutil

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Address Families
// --------------------------------------------------------------------------

// Family discriminates the two endpoint address families.
type Family int

const (
	// FamilyINet is a networked host:port address (IPv4).
	FamilyINet Family = iota
	// FamilyUnix is a local-domain socket addressed by filesystem path.
	FamilyUnix
)

// String returns the string representation of a Family.
func (f Family) String() string {
	switch f {
	case FamilyINet:
		return "inet"
	case FamilyUnix:
		return "unix"
	default:
		return "unknown"
	}
}

// loopbackAddr is 127.0.0.1 as a 32 bit integer in network octet order.
const loopbackAddr uint32 = 0x7f000001

// --------------------------------------------------------------------------
// Endpoint
// --------------------------------------------------------------------------

// Endpoint is an immutable address value unifying the two families behind one
// equality/ordering/serialization contract. Construct via NewEndpoint or
// NewListenerEndpoint and pass by value.
type Endpoint struct {
	family Family
	addr   uint32 // resolved IPv4 address in network octet order, inet only
	port   uint16 // inet only
	path   string // unix only
}

// NewListenerEndpoint builds a wildcard-bind networked endpoint from a port
// number alone (the listener side).
func NewListenerEndpoint(port int) Endpoint {
	return Endpoint{family: FamilyINet, addr: 0, port: uint16(port)}
}

// NewEndpoint builds a remote-target endpoint. A port of 0 selects the
// local-domain family and treats hostOrPath as a socket path. Otherwise
// hostOrPath is resolved through r; resolution failure is not an error here,
// it yields an endpoint with an unspecified address which callers must treat
// as unusable (see IsUnspecified).
func NewEndpoint(hostOrPath string, port int, r IResolver) Endpoint {
	if port == 0 {
		return Endpoint{family: FamilyUnix, path: hostOrPath}
	}
	return Endpoint{
		family: FamilyINet,
		addr:   ipToUint32(r.Resolve(hostOrPath)),
		port:   uint16(port),
	}
}

// Family returns the endpoint's address family.
func (e Endpoint) Family() Family { return e.family }

// Path returns the socket path for local-domain endpoints, "" otherwise.
func (e Endpoint) Path() string { return e.path }

// Port returns the port, 0 for local-domain endpoints.
func (e Endpoint) Port() uint16 {
	if e.family == FamilyUnix {
		return 0
	}
	return e.port
}

// IsUnspecified reports whether a networked endpoint carries no resolved
// address, the marker for a failed hostname resolution.
func (e Endpoint) IsUnspecified() bool {
	return e.family == FamilyINet && e.addr == 0
}

// IsLoopback is true unconditionally for local-domain endpoints, and for
// networked endpoints exactly when the resolved address is 127.0.0.1.
func (e Endpoint) IsLoopback() bool {
	if e.family == FamilyUnix {
		return true
	}
	return e.addr == loopbackAddr
}

// Equals compares only within the same family; cross-family endpoints are
// never equal.
func (e Endpoint) Equals(r Endpoint) bool {
	if e.family != r.family {
		return false
	}
	if e.family == FamilyUnix {
		return e.path == r.path
	}
	return e.addr == r.addr && e.port == r.port
}

// Less is a strict total order: family first, then path for local-domain,
// then address-then-port for networked endpoints.
func (e Endpoint) Less(r Endpoint) bool {
	if e.family != r.family {
		return e.family < r.family
	}
	if e.family == FamilyUnix {
		return e.path < r.path
	}
	if e.addr != r.addr {
		return e.addr < r.addr
	}
	return e.port < r.port
}

// String renders "ip:port" for networked endpoints and
// "path (local socket)" for local-domain ones.
func (e Endpoint) String() string {
	if e.family == FamilyUnix {
		return fmt.Sprintf("%s (local socket)", e.path)
	}
	return fmt.Sprintf("%s:%d", uint32ToIP(e.addr), e.port)
}

// DialAddr returns the address string to pass to the matching transport
// ("host:port" for inet, the path for unix).
func (e Endpoint) DialAddr() string {
	if e.family == FamilyUnix {
		return e.path
	}
	return fmt.Sprintf("%s:%d", uint32ToIP(e.addr), e.port)
}

// Network returns the net package network name for this family.
func (e Endpoint) Network() string {
	if e.family == FamilyUnix {
		return "unix"
	}
	return "tcp"
}

// --------------------------------------------------------------------------
// IPv4 Helpers
// --------------------------------------------------------------------------

// ipToUint32 converts a dotted-quad string into network octet order.
// Returns 0 for anything that is not a well formed IPv4 address.
func ipToUint32(ip string) uint32 {
	var a, b, c, d uint32
	n, err := fmt.Sscanf(ip, "%d.%d.%d.%d", &a, &b, &c, &d)
	if err != nil || n != 4 || a > 255 || b > 255 || c > 255 || d > 255 {
		return 0
	}
	return a<<24 | b<<16 | c<<8 | d
}

// uint32ToIP is the inverse of ipToUint32.
func uint32ToIP(v uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", v>>24&0xff, v>>16&0xff, v>>8&0xff, v&0xff)
}
