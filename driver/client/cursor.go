package client

import (
	"fmt"

	"github.com/ValentinKolb/dDoc/driver/common"
	"github.com/ValentinKolb/dDoc/driver/document"
)

// --------------------------------------------------------------------------
// Cursor
// --------------------------------------------------------------------------

// Cursor is a stateful, lazily filled iterator over a query's result set. It
// owns its current batch frame outright and holds a non-owning reference to
// the connection it came from; before a get-more it checks the connection is
// still usable instead of assuming it. Not safe for concurrent use.
type Cursor struct {
	conn      *Conn
	ns        string
	nToReturn int32
	opts      int32

	cursorID int64 // server-side handle, 0 = exhausted / none

	// Current batch: the owned reply frame, the count of documents consumed
	// from it and the byte offset of the next document in its Docs region.
	frame *common.ReplyFrame
	pos   int32
	off   int
}

// newCursor builds a cursor around the reply to a query message, taking
// ownership of the frame.
func newCursor(conn *Conn, m *common.Message, ns string, nToReturn, opts int32) (*Cursor, error) {
	c := &Cursor{conn: conn, ns: ns, nToReturn: nToReturn, opts: opts}
	if err := c.dataReceived(m); err != nil {
		return nil, err
	}
	return c, nil
}

// IsDead reports whether the server-side cursor is gone. Only rely on this
// once More has returned false: the handle may already be 0 while documents
// are still queued locally.
func (c *Cursor) IsDead() bool { return c.cursorID == 0 }

// IsTailable reports whether the cursor was opened tailable.
func (c *Cursor) IsTailable() bool { return c.opts&common.OptionTailable != 0 }

// More reports whether Next can be called. When the local batch is consumed
// but the server-side cursor is still open, it fetches the next batch first.
// A tailable cursor may report false here and still yield more documents on
// a later call.
func (c *Cursor) More() (bool, error) {
	if c.pos < c.frame.NReturned {
		return true, nil
	}
	if c.cursorID == 0 {
		return false, nil
	}
	if err := c.requestMore(); err != nil {
		return false, err
	}
	return c.pos < c.frame.NReturned, nil
}

// Next returns the next document in the result set, fetching more batches
// from the connection as needed. Fails with ErrExhausted when More is false.
// On a remote server error the returned document is the raw error marker,
// e.g. {"$err": "..."}; use NextSafe to surface that as an error instead.
func (c *Cursor) Next() (document.Document, error) {
	more, err := c.More()
	if err != nil {
		return nil, err
	}
	if !more {
		return nil, fmt.Errorf("%w: %s", common.ErrExhausted, c.ns)
	}

	doc, n, err := c.conn.codec.Decode(c.frame.Docs, c.off)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document %d of batch: %v", c.pos, err)
	}
	c.pos++
	c.off += n
	return doc, nil
}

// NextSafe is Next plus inspection for a server-reported error document. A
// "not master" rejection additionally demotes the owning pair's cached
// master state before the error is raised.
func (c *Cursor) NextSafe() (document.Document, error) {
	doc, err := c.Next()
	if err != nil {
		return nil, err
	}
	if msg, ok := doc[common.ErrFieldName].(string); ok {
		rerr := common.NewRemoteQueryError(msg)
		if common.IsNotMasterErr(rerr) {
			c.conn.notifyNotMaster()
		}
		return nil, rerr
	}
	return doc, nil
}

// Close releases the server-side cursor explicitly. Safe to call on a dead
// or already closed cursor.
func (c *Cursor) Close() error {
	if c.cursorID == 0 {
		return nil
	}
	id := c.cursorID
	c.cursorID = 0
	c.conn.unregisterCursor(id)
	return c.conn.killCursor(id)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// requestMore fetches the next batch for the current handle, replacing the
// owned frame.
func (c *Cursor) requestMore() error {
	if c.conn == nil || c.conn.IsFailed() {
		return fmt.Errorf("%w: cursor connection unusable", common.ErrConnectionFailure)
	}

	msg := common.NewGetMoreMessage(c.ns, c.cursorID, c.nToReturn)
	resp, err := c.conn.call(msg)
	if err != nil {
		return err
	}
	getMoresTotal.Inc()
	return c.dataReceived(resp)
}

// dataReceived installs a reply frame as the current batch and tracks the
// handle's lifecycle on the owning connection.
func (c *Cursor) dataReceived(m *common.Message) error {
	frame, err := common.ParseReply(m)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrTransport, err)
	}

	if frame.CursorNotFound() {
		// The server discarded the handle (stale get-more). Callers of
		// tailable cursors must requery from scratch.
		c.conn.unregisterCursor(c.cursorID)
		c.cursorID = 0
		c.frame = frame
		c.pos, c.off = 0, 0
		return fmt.Errorf("%w: %s", common.ErrCursorNotFound, c.ns)
	}

	if c.cursorID != frame.CursorID {
		c.conn.unregisterCursor(c.cursorID)
		c.conn.registerCursor(frame.CursorID, c.ns)
	}
	c.cursorID = frame.CursorID
	c.frame = frame
	c.pos, c.off = 0, 0
	return nil
}
