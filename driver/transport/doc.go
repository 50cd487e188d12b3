// Package transport defines the interfaces and abstractions for the driver's
// wire communication. It provides a common contract that all transport
// implementations must fulfill, keeping the client layer protocol-agnostic.
//
// The package focuses on:
//   - Defining the messaging port contract (send/receive of whole framed
//     messages, strictly blocking)
//   - Enabling multiple transport implementations (TCP, Unix sockets)
//
// Key Components:
//
//   - IMessagingPort: one logical link carrying framed messages; one port
//     equals one socket.
//
//   - IConnector: transport-specific dialing and socket tuning, implemented
//     by the tcp and unix subpackages.
package transport
