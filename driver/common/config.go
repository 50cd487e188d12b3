package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Client configuration structs
// --------------------------------------------------------------------------

// SocketConf holds socket buffer settings shared by all stream transports.
type SocketConf struct {
	WriteBufferSize int // in bytes, 0 = system default
	ReadBufferSize  int // in bytes, 0 = system default
}

// TCPConf holds TCP specific socket settings (ignored for unix sockets).
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// ClientConfig holds all configuration parameters for a driver connection.
type ClientConfig struct {
	// Socket level receive/send deadline. 0 disables deadlines; a stalled
	// remote then blocks the calling goroutine indefinitely.
	TimeoutSecond int

	// AutoReconnect makes a failed connection retry lazily on next use.
	// Without it the failed flag is final.
	AutoReconnect bool

	// ReconnectIntervalSec rate-limits reconnect attempts against a down
	// node. Defaults to 2 seconds when 0.
	ReconnectIntervalSec int

	Socket SocketConf
	TCP    TCPConf
}

// DefaultReconnectIntervalSec is used when ReconnectIntervalSec is unset.
const DefaultReconnectIntervalSec = 2

// ReconnectInterval returns the effective reconnect rate-limit in seconds.
func (c *ClientConfig) ReconnectInterval() int {
	if c.ReconnectIntervalSec > 0 {
		return c.ReconnectIntervalSec
	}
	return DefaultReconnectIntervalSec
}

// String returns a formatted string representation of the configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Auto Reconnect", strconv.FormatBool(c.AutoReconnect))
	addField("Reconnect Interval", fmt.Sprintf("%d sec", c.ReconnectInterval()))

	addSection("Socket")
	addField("Write Buffer", fmt.Sprintf("%d bytes", c.Socket.WriteBufferSize))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.Socket.ReadBufferSize))

	addSection("TCP")
	addField("No Delay", strconv.FormatBool(c.TCP.TCPNoDelay))
	addField("Keep Alive", fmt.Sprintf("%d sec", c.TCP.TCPKeepAliveSec))
	addField("Linger", fmt.Sprintf("%d sec", c.TCP.TCPLingerSec))

	return sb.String()
}
