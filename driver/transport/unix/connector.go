package unix

import (
	"net"

	"github.com/ValentinKolb/dDoc/driver/common"
	"github.com/ValentinKolb/dDoc/driver/transport"
)

// connector implements the IConnector interface for Unix sockets
type connector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IConnector)
// --------------------------------------------------------------------------

func (c *connector) GetName() string {
	return "unix"
}

func (c *connector) Dial(addr string) (net.Conn, error) {
	return net.Dial("unix", addr)
}

// UpgradeConnection applies socket buffer settings from SocketConf.
// TCP specific options do not apply to unix sockets.
func (c *connector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil // Not a unix socket, nothing to upgrade
	}

	if config.Socket.WriteBufferSize > 0 {
		if err := unixConn.SetWriteBuffer(config.Socket.WriteBufferSize); err != nil {
			return err
		}
	}

	if config.Socket.ReadBufferSize > 0 {
		if err := unixConn.SetReadBuffer(config.Socket.ReadBufferSize); err != nil {
			return err
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Connector Factory Method
// --------------------------------------------------------------------------

// NewUnixConnector creates a new Unix socket connector
func NewUnixConnector() transport.IConnector {
	return &connector{}
}
