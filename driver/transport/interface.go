package transport

import (
	"net"

	"github.com/ValentinKolb/dDoc/driver/common"
)

// --------------------------------------------------------------------------
// Messaging Port
// --------------------------------------------------------------------------

// IMessagingPort is the interface for one logical link carrying whole framed
// messages. All operations block the calling goroutine until completion or
// failure; there is no internal concurrency and no retry. One port equals one
// socket.
type IMessagingPort interface {
	// Send writes one framed message, assigning its request id
	Send(msg *common.Message) error
	// Receive blocks for the next framed message from the peer
	Receive() (*common.Message, error)
	// Call sends a request and blocks for its paired response
	Call(msg *common.Message) (*common.Message, error)
	// Close releases the underlying socket
	Close() error
}

// --------------------------------------------------------------------------
// Connector
// --------------------------------------------------------------------------

// IConnector defines the interface for transport-specific connection
// operations
type IConnector interface {
	// Dial establishes a single connection to the given address
	Dial(addr string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established
	// connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}
