// Package common contains the core data structures shared across the driver:
// the wire message protocol (header, opcodes, query/get-more/kill-cursors
// factories and the reply frame), the error kinds raised by the client layer,
// the client configuration structs and the logging setup.
//
// The wire format uses little endian integers throughout. Every message
// starts with a 16 byte generic header (length, request id, response-to id,
// opcode); the messaging port in the transport package is responsible for
// header bookkeeping, while this package defines the bodies.
package common
