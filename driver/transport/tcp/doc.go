// Package tcp implements the TCP socket connector for the driver's
// messaging port, including the socket tuning (nodelay, keepalive, linger,
// buffer sizes) applied when a connection is established.
package tcp
