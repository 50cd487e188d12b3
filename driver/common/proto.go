package common

import (
	"encoding/binary"
	"fmt"
)

// --------------------------------------------------------------------------
// Wire Constants
// --------------------------------------------------------------------------

// OpCode identifies the kind of a wire message.
type OpCode int32

const (
	OpReply       OpCode = 1
	OpMsg         OpCode = 1000
	OpUpdate      OpCode = 2001
	OpInsert      OpCode = 2002
	OpQuery       OpCode = 2004
	OpGetMore     OpCode = 2005
	OpDelete      OpCode = 2006
	OpKillCursors OpCode = 2007
)

// String returns the string representation of an OpCode.
func (o OpCode) String() string {
	switch o {
	case OpReply:
		return "reply"
	case OpMsg:
		return "msg"
	case OpUpdate:
		return "update"
	case OpInsert:
		return "insert"
	case OpQuery:
		return "query"
	case OpGetMore:
		return "getMore"
	case OpDelete:
		return "delete"
	case OpKillCursors:
		return "killCursors"
	default:
		return "unknown"
	}
}

// Query option bits. Combinable, set on query and get-more requests.
const (
	// OptionTailable keeps the cursor open after the last data is retrieved.
	// The cursor marks the final document's position and can be resumed later
	// if more data arrives. A latent cursor may still become invalid (for
	// example if the final document it references is deleted), in which case
	// a get-more comes back with ResultFlagCursorNotFound and the caller must
	// requery.
	OptionTailable int32 = 2

	// OptionSlaveOk allows the query to be served by a non-master node.
	// Without it such nodes reject queries except for the "local" database.
	OptionSlaveOk int32 = 4

	OptionALLMASK int32 = 6
)

// Result flag bits of a reply frame.
const (
	// ResultFlagCursorNotFound is set on a get-more against a cursor handle
	// the server has already discarded.
	ResultFlagCursorNotFound int32 = 1
)

// ErrFieldName is the single field of a server-side error document.
const ErrFieldName = "$err"

// HeaderSize is the fixed size of the generic message header:
// messageLength, requestID, responseTo, opCode (four int32).
const HeaderSize = 16

// ReplyHeaderSize is the fixed part of a reply body that precedes the
// document region: cursorID (int64), startingFrom, nReturned, resultFlags
// (three int32).
const ReplyHeaderSize = 20

// All integers on the wire are little endian.
var order = binary.LittleEndian

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Header is the generic message header shared by all wire messages.
type Header struct {
	MessageLength int32 // total message length, header included
	RequestID     int32
	ResponseTo    int32
	OpCode        OpCode
}

// Message is a single framed wire message: header plus body. The messaging
// port owns header bookkeeping (length, request ids); builders below fill in
// the body and opcode.
type Message struct {
	Header Header
	Body   []byte
}

// Marshal renders the message into a single byte slice, fixing up the
// declared length to match the actual size.
func (m *Message) Marshal() []byte {
	total := HeaderSize + len(m.Body)
	m.Header.MessageLength = int32(total)

	buf := make([]byte, total)
	order.PutUint32(buf[0:4], uint32(m.Header.MessageLength))
	order.PutUint32(buf[4:8], uint32(m.Header.RequestID))
	order.PutUint32(buf[8:12], uint32(m.Header.ResponseTo))
	order.PutUint32(buf[12:16], uint32(m.Header.OpCode))
	copy(buf[HeaderSize:], m.Body)
	return buf
}

// ParseHeader decodes a generic message header from a 16 byte slice.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("header too short: %d bytes", len(buf))
	}
	return Header{
		MessageLength: int32(order.Uint32(buf[0:4])),
		RequestID:     int32(order.Uint32(buf[4:8])),
		ResponseTo:    int32(order.Uint32(buf[8:12])),
		OpCode:        OpCode(order.Uint32(buf[12:16])),
	}, nil
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewQueryMessage creates a query request.
// ns is the namespace ("<db>.<collection>"), queryDoc the encoded filter
// document, fieldsDoc an optional encoded projection document (nil for all
// fields). nToReturn of 0 means unlimited.
func NewQueryMessage(ns string, queryDoc []byte, nToReturn, nToSkip int32, fieldsDoc []byte, options int32) *Message {
	body := make([]byte, 0, 4+len(ns)+1+8+len(queryDoc)+len(fieldsDoc))
	body = appendInt32(body, options)
	body = appendCString(body, ns)
	body = appendInt32(body, nToSkip)
	body = appendInt32(body, nToReturn)
	body = append(body, queryDoc...)
	if fieldsDoc != nil {
		body = append(body, fieldsDoc...)
	}
	return &Message{Header: Header{OpCode: OpQuery}, Body: body}
}

// NewGetMoreMessage creates a get-more request for an existing cursor handle.
func NewGetMoreMessage(ns string, cursorID int64, nToReturn int32) *Message {
	body := make([]byte, 0, 4+len(ns)+1+4+8)
	body = appendInt32(body, 0) // reserved
	body = appendCString(body, ns)
	body = appendInt32(body, nToReturn)
	body = appendInt64(body, cursorID)
	return &Message{Header: Header{OpCode: OpGetMore}, Body: body}
}

// NewKillCursorsMessage creates a request asking the server to release the
// given cursor handles.
func NewKillCursorsMessage(cursorIDs ...int64) *Message {
	body := make([]byte, 0, 8+8*len(cursorIDs))
	body = appendInt32(body, 0) // reserved
	body = appendInt32(body, int32(len(cursorIDs)))
	for _, id := range cursorIDs {
		body = appendInt64(body, id)
	}
	return &Message{Header: Header{OpCode: OpKillCursors}, Body: body}
}

// --------------------------------------------------------------------------
// Reply Frame
// --------------------------------------------------------------------------

// ReplyFrame is the decoded fixed layout of a query or get-more response.
// The Docs region holds NReturned encoded documents back-to-back; decoding
// them is the document codec's job.
type ReplyFrame struct {
	CursorID     int64 // 0 = exhausted / none
	StartingFrom int32 // offset of the first document in this batch
	NReturned    int32 // document count in this batch
	ResultFlags  int32
	Docs         []byte
}

// CursorNotFound reports whether the server discarded the cursor handle this
// frame was requested with.
func (f *ReplyFrame) CursorNotFound() bool {
	return f.ResultFlags&ResultFlagCursorNotFound != 0
}

// ParseReply decodes a reply frame from a message body. The trailing document
// region is whatever follows the fixed part; its length must account for the
// whole body.
func ParseReply(m *Message) (*ReplyFrame, error) {
	if m.Header.OpCode != OpReply {
		return nil, fmt.Errorf("unexpected opcode %s, expected %s", m.Header.OpCode, OpReply)
	}
	if len(m.Body) < ReplyHeaderSize {
		return nil, fmt.Errorf("reply body too short: %d bytes", len(m.Body))
	}
	f := &ReplyFrame{
		CursorID:     int64(order.Uint64(m.Body[0:8])),
		StartingFrom: int32(order.Uint32(m.Body[8:12])),
		NReturned:    int32(order.Uint32(m.Body[12:16])),
		ResultFlags:  int32(order.Uint32(m.Body[16:20])),
		Docs:         m.Body[ReplyHeaderSize:],
	}
	if f.NReturned < 0 {
		return nil, fmt.Errorf("negative document count %d in reply", f.NReturned)
	}

	// Every document starts with its int32 total length, so the declared
	// count can be checked against the region here instead of failing
	// mid-iteration. The region must account for exactly NReturned
	// documents with no byte left over.
	off := 0
	for i := int32(0); i < f.NReturned; i++ {
		if off+4 > len(f.Docs) {
			return nil, fmt.Errorf("reply document %d of %d truncated at offset %d", i, f.NReturned, off)
		}
		l := int(order.Uint32(f.Docs[off : off+4]))
		if l < 4 || off+l > len(f.Docs) {
			return nil, fmt.Errorf("reply document %d declares %d bytes, %d available", i, l, len(f.Docs)-off)
		}
		off += l
	}
	if off != len(f.Docs) {
		return nil, fmt.Errorf("reply carries %d unaccounted trailing bytes after %d documents", len(f.Docs)-off, f.NReturned)
	}
	return f, nil
}

// --------------------------------------------------------------------------
// Body Encoding Helpers
// --------------------------------------------------------------------------

func appendInt32(b []byte, v int32) []byte {
	return order.AppendUint32(b, uint32(v))
}

func appendInt64(b []byte, v int64) []byte {
	return order.AppendUint64(b, uint64(v))
}

// appendCString appends a NUL-terminated string.
func appendCString(b []byte, s string) []byte {
	b = append(b, s...)
	return append(b, 0)
}
