// Package base implements the transport-medium independent messaging port:
// framing over a net.Conn (16 byte header plus body), request id assignment,
// deadline handling and the blocking call (send then receive) primitive used
// by the client layer.
package base
