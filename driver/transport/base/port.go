package base

import (
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dDoc/driver/common"
	"github.com/ValentinKolb/dDoc/driver/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/port")

// nextRequestID is shared across all ports so request ids stay unique within
// the process.
var nextRequestID uint32

// port implements the core messaging port functionality independent of the
// specific transport medium (unix, tcp, etc.)
type port struct {
	conn   net.Conn
	config common.ClientConfig
}

// --------------------------------------------------------------------------
// Port Factory Methods
// --------------------------------------------------------------------------

// NewPort wraps an established connection into a messaging port
func NewPort(conn net.Conn, config common.ClientConfig) transport.IMessagingPort {
	return &port{conn: conn, config: config}
}

// Dial establishes a connection through the given connector, applies the
// connector's protocol-specific settings and wraps it into a messaging port
func Dial(connector transport.IConnector, addr string, config common.ClientConfig) (transport.IMessagingPort, error) {
	conn, err := connector.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %v", addr, err)
	}

	if err := connector.UpgradeConnection(conn, config); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to upgrade connection to %s: %v", addr, err)
	}

	Logger.Infof("Connected to %s using %s transport", addr, connector.GetName())
	return NewPort(conn, config), nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IMessagingPort)
// --------------------------------------------------------------------------

func (p *port) Send(msg *common.Message) error {
	if msg.Header.RequestID == 0 {
		msg.Header.RequestID = int32(atomic.AddUint32(&nextRequestID, 1))
	}

	if p.config.TimeoutSecond > 0 {
		timeout := time.Duration(p.config.TimeoutSecond) * time.Second
		p.conn.SetWriteDeadline(time.Now().Add(timeout))
	}

	buf := msg.Marshal()
	if _, err := p.conn.Write(buf); err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	return nil
}

func (p *port) Receive() (*common.Message, error) {
	if p.config.TimeoutSecond > 0 {
		timeout := time.Duration(p.config.TimeoutSecond) * time.Second
		p.conn.SetReadDeadline(time.Now().Add(timeout))
	}

	var hdrBuf [common.HeaderSize]byte
	if _, err := io.ReadFull(p.conn, hdrBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransport, err)
	}

	hdr, err := common.ParseHeader(hdrBuf[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransport, err)
	}
	if hdr.MessageLength < common.HeaderSize {
		return nil, fmt.Errorf("%w: invalid message length %d", common.ErrTransport, hdr.MessageLength)
	}

	body := make([]byte, hdr.MessageLength-common.HeaderSize)
	if _, err := io.ReadFull(p.conn, body); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTransport, err)
	}

	return &common.Message{Header: hdr, Body: body}, nil
}

func (p *port) Call(msg *common.Message) (*common.Message, error) {
	if err := p.Send(msg); err != nil {
		return nil, err
	}

	resp, err := p.Receive()
	if err != nil {
		return nil, err
	}

	// Strict blocking request-then-response sequencing: the next message on
	// the socket must answer the request just sent.
	if resp.Header.ResponseTo != msg.Header.RequestID {
		return nil, fmt.Errorf("%w: response pairing mismatch: got responseTo %d, expected %d",
			common.ErrTransport, resp.Header.ResponseTo, msg.Header.RequestID)
	}
	return resp, nil
}

func (p *port) Close() error {
	return p.conn.Close()
}
