package tcp

import (
	"net"
	"time"

	"github.com/ValentinKolb/dDoc/driver/common"
	"github.com/ValentinKolb/dDoc/driver/transport"
)

// connector implements the IConnector interface for TCP sockets
type connector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IConnector)
// --------------------------------------------------------------------------

func (c *connector) GetName() string {
	return "tcp"
}

func (c *connector) Dial(addr string) (net.Conn, error) {
	return net.Dial("tcp", addr)
}

// UpgradeConnection applies performance optimizations to a TCP connection
// using configuration values from TCPConf and SocketConf
func (c *connector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil // Not a TCP connection, nothing to upgrade
	}

	// Disable Nagle's algorithm (TCPNoDelay) if configured
	if err := tcpConn.SetNoDelay(config.TCP.TCPNoDelay); err != nil {
		return err
	}

	// Set socket write buffer size if configured
	if config.Socket.WriteBufferSize > 0 {
		if err := tcpConn.SetWriteBuffer(config.Socket.WriteBufferSize); err != nil {
			return err
		}
	}

	// Set socket read buffer size if configured
	if config.Socket.ReadBufferSize > 0 {
		if err := tcpConn.SetReadBuffer(config.Socket.ReadBufferSize); err != nil {
			return err
		}
	}

	// Enable TCP keep-alive if configured
	if config.TCP.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}

		keepAlivePeriod := time.Duration(config.TCP.TCPKeepAliveSec) * time.Second
		if err := tcpConn.SetKeepAlivePeriod(keepAlivePeriod); err != nil {
			return err
		}
	}

	// Set TCP linger option if configured
	if config.TCP.TCPLingerSec >= 0 {
		if err := tcpConn.SetLinger(config.TCP.TCPLingerSec); err != nil {
			return err
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Connector Factory Method
// --------------------------------------------------------------------------

// NewTCPConnector creates a new TCP connector
func NewTCPConnector() transport.IConnector {
	return &connector{}
}
