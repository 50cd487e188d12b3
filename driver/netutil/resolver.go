package netutil

import (
	"net"
)

// --------------------------------------------------------------------------
// Hostname Resolver
// --------------------------------------------------------------------------

// IResolver maps a hostname to a dotted-quad IPv4 address.
// If an IP address is passed in, implementations just return it. Returns ""
// on failure; no error value, callers detect the empty string.
type IResolver interface {
	Resolve(name string) string
}

// NewSystemResolver creates a resolver backed by the OS resolver
func NewSystemResolver() IResolver {
	return &systemResolver{}
}

// systemResolver implements IResolver via net.LookupIP
type systemResolver struct{}

func (r *systemResolver) Resolve(name string) string {
	// Already an IP address, nothing to look up
	if ip := net.ParseIP(name); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4.String()
		}
		return ""
	}

	ips, err := net.LookupIP(name)
	if err != nil {
		return ""
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4.String()
		}
	}
	return ""
}
