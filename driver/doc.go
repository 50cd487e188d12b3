// Package driver contains the dDoc client driver: a blocking,
// single-connection-per-socket client for the document database's binary
// wire protocol, with replica-pair failover.
//
// The package is organized into several subpackages:
//
//   - common: the wire message protocol (header, opcodes, query and get-more
//     bodies, the reply frame), error kinds, configuration and logging.
//
//   - document: the document codec boundary; encoded documents are opaque,
//     self-delimiting byte regions to the rest of the driver.
//
//   - transport: the messaging port abstraction with TCP and unix socket
//     implementations.
//
//   - netutil: the endpoint address layer (two address families behind one
//     value type), hostname resolution and datagram probing.
//
//   - client: Conn, Cursor and PairedConn, the driver's public surface.
package driver
