package client

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/ValentinKolb/dDoc/driver/common"
	"github.com/ValentinKolb/dDoc/driver/document"
	"github.com/ValentinKolb/dDoc/driver/transport"
)

// scriptedPort is an in-memory messaging port answering each Call from a
// queue of handlers. It records all outgoing traffic so tests can assert on
// round-trip counts and message layout.
type scriptedPort struct {
	t        *testing.T
	handlers []func(req *common.Message) (*common.Message, error)
	sent     []*common.Message
	closed   bool
}

func (p *scriptedPort) Send(msg *common.Message) error {
	p.sent = append(p.sent, msg)
	return nil
}

func (p *scriptedPort) Receive() (*common.Message, error) {
	return nil, fmt.Errorf("%w: receive not scripted", common.ErrTransport)
}

func (p *scriptedPort) Call(msg *common.Message) (*common.Message, error) {
	p.sent = append(p.sent, msg)
	if len(p.handlers) == 0 {
		p.t.Fatalf("Unexpected call: %s", msg.Header.OpCode)
	}
	h := p.handlers[0]
	p.handlers = p.handlers[1:]
	return h(msg)
}

func (p *scriptedPort) Close() error {
	p.closed = true
	return nil
}

// script appends a canned response for the next Call
func (p *scriptedPort) script(h func(req *common.Message) (*common.Message, error)) {
	p.handlers = append(p.handlers, h)
}

// scriptReply appends a canned reply frame for the next Call
func (p *scriptedPort) scriptReply(cursorID int64, flags int32, docs ...document.Document) {
	p.script(func(req *common.Message) (*common.Message, error) {
		return replyMsg(p.t, req, cursorID, flags, docs...), nil
	})
}

// scriptError fails the next Call with a transport error
func (p *scriptedPort) scriptError() {
	p.script(func(req *common.Message) (*common.Message, error) {
		return nil, fmt.Errorf("%w: scripted failure", common.ErrTransport)
	})
}

// calls returns how many request/response round trips went through the port
func (p *scriptedPort) calls() int {
	n := 0
	for _, m := range p.sent {
		if m.Header.OpCode != common.OpKillCursors {
			n++
		}
	}
	return n
}

// replyMsg builds a reply message carrying the given documents
func replyMsg(t *testing.T, req *common.Message, cursorID int64, flags int32, docs ...document.Document) *common.Message {
	t.Helper()
	codec := document.NewJSONCodec()

	var region []byte
	for _, doc := range docs {
		data, err := codec.Encode(doc)
		if err != nil {
			t.Fatalf("Failed to encode reply document: %v", err)
		}
		region = append(region, data...)
	}

	body := make([]byte, 0, common.ReplyHeaderSize+len(region))
	body = binary.LittleEndian.AppendUint64(body, uint64(cursorID))
	body = binary.LittleEndian.AppendUint32(body, 0) // startingFrom
	body = binary.LittleEndian.AppendUint32(body, uint32(len(docs)))
	body = binary.LittleEndian.AppendUint32(body, uint32(flags))
	body = append(body, region...)

	return &common.Message{
		Header: common.Header{
			ResponseTo: req.Header.RequestID,
			OpCode:     common.OpReply,
		},
		Body: body,
	}
}

// newTestConn creates a connected Conn backed by a scripted port
func newTestConn(t *testing.T, config common.ClientConfig) (*Conn, *scriptedPort) {
	t.Helper()
	port := &scriptedPort{t: t}
	conn := NewConnWithDialer(config, document.NewJSONCodec(), func(addr string) (transport.IMessagingPort, error) {
		return port, nil
	})
	if err := conn.Connect("scripted:27017"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	return conn, port
}

// queryNamespace extracts the namespace of a query or get-more message
func queryNamespace(t *testing.T, m *common.Message) string {
	t.Helper()
	end := bytes.IndexByte(m.Body[4:], 0)
	if end < 0 {
		t.Fatalf("Message namespace not NUL terminated")
	}
	return string(m.Body[4 : 4+end])
}
