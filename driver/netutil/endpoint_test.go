package netutil

import (
	"testing"
)

// staticResolver maps names to fixed addresses for tests
type staticResolver struct {
	entries map[string]string
}

func (r *staticResolver) Resolve(name string) string {
	return r.entries[name]
}

func testResolver() IResolver {
	return &staticResolver{entries: map[string]string{
		"db1.example.com": "10.0.0.1",
		"db2.example.com": "10.0.0.2",
		"localhost":       "127.0.0.1",
		"127.0.0.1":       "127.0.0.1",
	}}
}

func TestEndpointFamilies(t *testing.T) {
	r := testResolver()

	inet := NewEndpoint("db1.example.com", 27017, r)
	if inet.Family() != FamilyINet {
		t.Errorf("Expected inet family, got %s", inet.Family())
	}
	if inet.Port() != 27017 {
		t.Errorf("Expected port 27017, got %d", inet.Port())
	}

	// Port 0 selects the local-domain family
	local := NewEndpoint("/tmp/db.sock", 0, r)
	if local.Family() != FamilyUnix {
		t.Errorf("Expected unix family, got %s", local.Family())
	}
	if local.Port() != 0 {
		t.Errorf("Expected port 0 for unix endpoint, got %d", local.Port())
	}
	if local.Path() != "/tmp/db.sock" {
		t.Errorf("Unexpected path %q", local.Path())
	}
}

func TestEndpointResolutionFailure(t *testing.T) {
	r := testResolver()

	ep := NewEndpoint("unknown.example.com", 27017, r)
	if !ep.IsUnspecified() {
		t.Errorf("Expected unspecified endpoint on resolution failure")
	}

	ok := NewEndpoint("db1.example.com", 27017, r)
	if ok.IsUnspecified() {
		t.Errorf("Resolved endpoint should not be unspecified")
	}
}

func TestEndpointEquality(t *testing.T) {
	r := testResolver()

	a := NewEndpoint("db1.example.com", 27017, r)
	b := NewEndpoint("db1.example.com", 27017, r)
	c := NewEndpoint("db1.example.com", 27018, r)
	d := NewEndpoint("db2.example.com", 27017, r)
	u1 := NewEndpoint("/tmp/db.sock", 0, r)
	u2 := NewEndpoint("/tmp/db.sock", 0, r)
	u3 := NewEndpoint("/tmp/other.sock", 0, r)

	if !a.Equals(b) {
		t.Errorf("Equal networked endpoints should compare equal")
	}
	if a.Equals(c) || a.Equals(d) {
		t.Errorf("Endpoints differing in port or address should not be equal")
	}
	if !u1.Equals(u2) {
		t.Errorf("Unix endpoints with equal paths should be equal")
	}
	if u1.Equals(u3) {
		t.Errorf("Unix endpoints with different paths should not be equal")
	}

	// Cross-family endpoints are never equal
	if a.Equals(u1) || u1.Equals(a) {
		t.Errorf("Cross-family endpoints must never be equal")
	}
}

func TestEndpointOrdering(t *testing.T) {
	r := testResolver()

	endpoints := []Endpoint{
		NewEndpoint("db1.example.com", 27017, r),
		NewEndpoint("db1.example.com", 27018, r),
		NewEndpoint("db2.example.com", 27017, r),
		NewEndpoint("/tmp/a.sock", 0, r),
		NewEndpoint("/tmp/b.sock", 0, r),
	}

	// Strict total order: irreflexive, antisymmetric, transitive over the
	// sample set.
	for i, a := range endpoints {
		if a.Less(a) {
			t.Errorf("Less must be irreflexive, endpoint %d", i)
		}
		for j, b := range endpoints {
			if i == j {
				continue
			}
			if a.Less(b) && b.Less(a) {
				t.Errorf("Less must be antisymmetric, endpoints %d/%d", i, j)
			}
			if !a.Less(b) && !b.Less(a) && !a.Equals(b) {
				t.Errorf("Distinct endpoints %d/%d must be ordered", i, j)
			}
			for k, c := range endpoints {
				if a.Less(b) && b.Less(c) && !a.Less(c) {
					t.Errorf("Less must be transitive, endpoints %d/%d/%d", i, j, k)
				}
			}
		}
	}

	// Family-first ordering
	inet := NewEndpoint("db1.example.com", 27017, r)
	local := NewEndpoint("/tmp/a.sock", 0, r)
	if !inet.Less(local) || local.Less(inet) {
		t.Errorf("inet endpoints must order before unix endpoints")
	}
}

func TestEndpointLoopback(t *testing.T) {
	r := testResolver()

	testCases := []struct {
		name     string
		ep       Endpoint
		loopback bool
	}{
		{"localhost inet", NewEndpoint("localhost", 27017, r), true},
		{"remote inet", NewEndpoint("db1.example.com", 27017, r), false},
		{"unix socket", NewEndpoint("/tmp/db.sock", 0, r), true},
		{"wildcard listener", NewListenerEndpoint(27017), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.ep.IsLoopback(); got != tc.loopback {
				t.Errorf("IsLoopback() = %v, expected %v", got, tc.loopback)
			}
		})
	}
}

func TestEndpointString(t *testing.T) {
	r := testResolver()

	inet := NewEndpoint("127.0.0.1", 27017, r)
	if inet.String() != "127.0.0.1:27017" {
		t.Errorf("Unexpected string %q", inet.String())
	}

	local := NewEndpoint("/tmp/db.sock", 0, r)
	if local.String() != "/tmp/db.sock (local socket)" {
		t.Errorf("Unexpected string %q", local.String())
	}
}

func TestDatagramMTU(t *testing.T) {
	r := testResolver()
	s := NewUDPSocket()

	if mtu := s.MTU(NewEndpoint("localhost", 9999, r)); mtu != MaxMTU {
		t.Errorf("Loopback MTU = %d, expected %d", mtu, MaxMTU)
	}
	if mtu := s.MTU(NewEndpoint("db1.example.com", 9999, r)); mtu != 1480 {
		t.Errorf("Remote MTU = %d, expected 1480", mtu)
	}
}
