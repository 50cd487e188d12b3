package netutil

import (
	"fmt"
	"net"
)

// --------------------------------------------------------------------------
// Datagram Socket
// --------------------------------------------------------------------------

// MaxMTU is the largest datagram the driver ever sends.
const MaxMTU = 16384

// IDatagramSocket is the interface for raw datagram probing of an endpoint.
type IDatagramSocket interface {
	// Init binds the socket to the given local endpoint
	Init(local Endpoint) error
	// SendTo sends one datagram to the given endpoint
	SendTo(buf []byte, to Endpoint) (int, error)
	// RecvFrom receives one datagram, reporting the sender endpoint
	RecvFrom(buf []byte) (int, Endpoint, error)
	// MTU returns the usable datagram size towards an endpoint
	MTU(to Endpoint) int
	// Close releases the socket
	Close() error
}

// NewUDPSocket creates a datagram socket for networked endpoints
func NewUDPSocket() IDatagramSocket {
	return &udpSocket{}
}

// udpSocket implements IDatagramSocket over UDP
type udpSocket struct {
	conn *net.UDPConn
}

// --------------------------------------------------------------------------
// Interface Methods (docu see netutil.IDatagramSocket)
// --------------------------------------------------------------------------

func (s *udpSocket) Init(local Endpoint) error {
	if local.Family() != FamilyINet {
		return fmt.Errorf("udp socket requires a networked endpoint, got %s", local.Family())
	}
	addr, err := net.ResolveUDPAddr("udp4", local.DialAddr())
	if err != nil {
		return fmt.Errorf("failed to resolve bind address %s: %v", local, err)
	}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return fmt.Errorf("udp init failed: %v", err)
	}
	s.conn = conn
	return nil
}

func (s *udpSocket) SendTo(buf []byte, to Endpoint) (int, error) {
	if s.conn == nil {
		return 0, fmt.Errorf("udp socket not initialized")
	}
	addr, err := net.ResolveUDPAddr("udp4", to.DialAddr())
	if err != nil {
		return 0, err
	}
	return s.conn.WriteToUDP(buf, addr)
}

func (s *udpSocket) RecvFrom(buf []byte) (int, Endpoint, error) {
	if s.conn == nil {
		return 0, Endpoint{}, fmt.Errorf("udp socket not initialized")
	}
	n, addr, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		return 0, Endpoint{}, err
	}
	sender := Endpoint{
		family: FamilyINet,
		addr:   ipToUint32(addr.IP.To4().String()),
		port:   uint16(addr.Port),
	}
	return n, sender, nil
}

func (s *udpSocket) MTU(to Endpoint) int {
	if to.IsLoopback() {
		return MaxMTU
	}
	return 1480
}

func (s *udpSocket) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
