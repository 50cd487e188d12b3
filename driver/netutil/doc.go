// Package netutil provides the address layer consumed by connection
// establishment: the Endpoint value type unifying networked (host:port) and
// local-domain (socket path) addresses behind one equality/ordering contract,
// the hostname resolver interface, and a datagram socket utility for raw
// endpoint probing.
package netutil
