package client

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ValentinKolb/dDoc/driver/common"
	"github.com/ValentinKolb/dDoc/driver/document"
	"github.com/ValentinKolb/dDoc/driver/netutil"
	"github.com/ValentinKolb/dDoc/driver/transport"
	"github.com/ValentinKolb/dDoc/driver/transport/base"
	"github.com/ValentinKolb/dDoc/driver/transport/tcp"
	"github.com/ValentinKolb/dDoc/driver/transport/unix"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("client")

// DefaultPort is assumed for networked server addresses without an explicit
// port.
const DefaultPort = 27017

// DialFunc opens a messaging port to a server address. Injected in tests;
// production connections use the transport connectors.
type DialFunc func(addr string) (transport.IMessagingPort, error)

// --------------------------------------------------------------------------
// Connection
// --------------------------------------------------------------------------

// Conn is a single logical link to one database node. It is not safe for
// concurrent use; callers must serialize access (one Conn per worker, or an
// external mutex). A Conn must not be copied after first use.
type Conn struct {
	config common.ClientConfig
	codec  document.ICodec
	dial   DialFunc

	port             transport.IMessagingPort
	serverAddress    string // remembered for reconnects
	failed           bool   // sticky, set on fatal I/O failure
	lastReconnectTry time.Time

	// Optional back-reference to the owning pair, nil for standalone
	// connections. Used to report "not master" rejections.
	pair *PairedConn

	// Live server-side cursor handles opened through this connection,
	// keyed by handle with the originating namespace as value. Swept by
	// Close so handles are not leaked server-side.
	openCursors *xsync.MapOf[int64, string]
}

// NewConn creates an unconnected Conn using the tcp/unix transports.
func NewConn(config common.ClientConfig, codec document.ICodec) *Conn {
	c := &Conn{
		config:      config,
		codec:       codec,
		openCursors: xsync.NewMapOf[int64, string](),
	}
	c.dial = func(addr string) (transport.IMessagingPort, error) {
		return dialServer(addr, config)
	}
	return c
}

// NewConnWithDialer creates an unconnected Conn with a custom dialer.
func NewConnWithDialer(config common.ClientConfig, codec document.ICodec, dial DialFunc) *Conn {
	return &Conn{
		config:      config,
		codec:       codec,
		dial:        dial,
		openCursors: xsync.NewMapOf[int64, string](),
	}
}

// String returns the remembered server address.
func (c *Conn) String() string { return c.serverAddress }

// IsFailed reports whether a fatal error has ever happened on this
// connection. With AutoReconnect set the connection may still recover on
// next use.
func (c *Conn) IsFailed() bool { return c.failed }

// Connect resolves and opens the transport to the given server address
// ("host[:port]" or a unix socket path) and remembers it for reconnects.
// When AutoReconnect is set the Conn stays usable even after an error
// return; the next operation retries the connection.
func (c *Conn) Connect(serverAddress string) error {
	c.serverAddress = serverAddress

	port, err := c.dial(serverAddress)
	if err != nil {
		c.failed = true
		return fmt.Errorf("%w: %v", common.ErrConnectionFailure, err)
	}
	c.port = port
	c.failed = false
	return nil
}

// Close kills any server-side cursors still open through this connection and
// releases the socket.
func (c *Conn) Close() error {
	if c.port == nil {
		return nil
	}

	var ids []int64
	c.openCursors.Range(func(id int64, _ string) bool {
		ids = append(ids, id)
		return true
	})
	if len(ids) > 0 && !c.failed {
		if err := c.port.Send(common.NewKillCursorsMessage(ids...)); err != nil {
			Logger.Warningf("Failed to kill %d cursors on %s: %v", len(ids), c.serverAddress, err)
		} else {
			killCursorsTotal.Add(len(ids))
		}
	}
	c.openCursors.Clear()

	err := c.port.Close()
	c.port = nil
	return err
}

// --------------------------------------------------------------------------
// Interface Methods (docu see client.IDBClient)
// --------------------------------------------------------------------------

func (c *Conn) Query(ns string, query document.Document, nToReturn, nToSkip int32, fields document.Document, options int32) (*Cursor, error) {
	if err := c.checkConnection(); err != nil {
		return nil, err
	}

	queryDoc, err := c.codec.Encode(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %v", err)
	}
	var fieldsDoc []byte
	if fields != nil {
		if fieldsDoc, err = c.codec.Encode(fields); err != nil {
			return nil, fmt.Errorf("failed to encode projection: %v", err)
		}
	}

	msg := common.NewQueryMessage(ns, queryDoc, nToReturn, nToSkip, fieldsDoc, options)
	resp, err := c.call(msg)
	if err != nil {
		return nil, err
	}
	queriesTotal.Inc()

	return newCursor(c, resp, ns, nToReturn, options)
}

func (c *Conn) FindOne(ns string, query document.Document, fields document.Document, options int32) (document.Document, error) {
	cur, err := c.Query(ns, query, 1, 0, fields, options)
	if err != nil {
		return nil, err
	}

	more, err := cur.More()
	if err != nil {
		return nil, err
	}
	if !more {
		return nil, fmt.Errorf("%w: %s", common.ErrEmptyResult, ns)
	}
	return cur.NextSafe()
}

// --------------------------------------------------------------------------
// Commands
// --------------------------------------------------------------------------

// RunCommand invokes a database command: a findOne on the reserved "$cmd"
// collection of the given database.
func (c *Conn) RunCommand(db string, cmd document.Document) (document.Document, error) {
	return c.FindOne(db+".$cmd", cmd, nil, common.OptionSlaveOk)
}

// IsMaster asks the node whether it is currently master. The full response
// document is returned for diagnostics, e.g.
// {"ismaster": 1, "msg": "not paired", "ok": 1}.
func (c *Conn) IsMaster() (bool, document.Document, error) {
	info, err := c.RunCommand("admin", document.Document{"ismaster": 1})
	if err != nil {
		return false, nil, err
	}
	return isTruthy(info["ismaster"]), info, nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// checkConnection is the pre-flight for every operation: fail fast on a dead
// connection, or lazily reconnect when AutoReconnect is set and the
// rate-limit window has elapsed.
func (c *Conn) checkConnection() error {
	if c.port != nil && !c.failed {
		return nil
	}
	if !c.config.AutoReconnect {
		return fmt.Errorf("%w: %s", common.ErrConnectionFailure, c.serverAddress)
	}
	if c.serverAddress == "" {
		return fmt.Errorf("%w: no server address", common.ErrConnectionFailure)
	}

	interval := time.Duration(c.config.ReconnectInterval()) * time.Second
	if time.Since(c.lastReconnectTry) < interval {
		return fmt.Errorf("%w: %s (reconnect rate-limited)", common.ErrConnectionFailure, c.serverAddress)
	}
	c.lastReconnectTry = time.Now()

	Logger.Infof("Trying to reconnect to %s", c.serverAddress)
	if c.port != nil {
		c.port.Close()
		c.port = nil
	}
	port, err := c.dial(c.serverAddress)
	if err != nil {
		return fmt.Errorf("%w: reconnect to %s: %v", common.ErrConnectionFailure, c.serverAddress, err)
	}
	c.port = port
	c.failed = false
	reconnectsTotal.Inc()
	return nil
}

// call sends a request and blocks for its response, marking the connection
// failed on any transport error.
func (c *Conn) call(msg *common.Message) (*common.Message, error) {
	resp, err := c.port.Call(msg)
	if err != nil {
		c.failed = true
		return nil, err
	}
	return resp, nil
}

// killCursor asks the server to release one cursor handle. Fire and forget,
// the server sends no reply.
func (c *Conn) killCursor(cursorID int64) error {
	if c.port == nil || c.failed {
		return fmt.Errorf("%w: %s", common.ErrConnectionFailure, c.serverAddress)
	}
	if err := c.port.Send(common.NewKillCursorsMessage(cursorID)); err != nil {
		c.failed = true
		return err
	}
	killCursorsTotal.Inc()
	return nil
}

func (c *Conn) registerCursor(cursorID int64, ns string) {
	if cursorID != 0 {
		c.openCursors.Store(cursorID, ns)
	}
}

func (c *Conn) unregisterCursor(cursorID int64) {
	if cursorID != 0 {
		c.openCursors.Delete(cursorID)
	}
}

// notifyNotMaster reports a server "not master" rejection to the owning
// pair, if any.
func (c *Conn) notifyNotMaster() {
	if c.pair != nil {
		c.pair.isntMaster()
	}
}

// isTruthy interprets the loosely typed boolean fields of command responses.
func isTruthy(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	default:
		return false
	}
}

// --------------------------------------------------------------------------
// Server Address Handling
// --------------------------------------------------------------------------

// dialServer resolves a server address string and opens a messaging port
// through the transport matching its family.
func dialServer(addr string, config common.ClientConfig) (transport.IMessagingPort, error) {
	ep, err := ParseServerAddress(addr, netutil.NewSystemResolver())
	if err != nil {
		return nil, err
	}

	var connector transport.IConnector
	if ep.Family() == netutil.FamilyUnix {
		connector = unix.NewUnixConnector()
	} else {
		connector = tcp.NewTCPConnector()
	}
	return base.Dial(connector, ep.DialAddr(), config)
}

// ParseServerAddress turns a server address string into an Endpoint. A
// string starting with '/' names a unix socket path; otherwise it is
// "host[:port]" with DefaultPort assumed. Resolution failure surfaces as
// ErrConnectionFailure.
func ParseServerAddress(addr string, r netutil.IResolver) (netutil.Endpoint, error) {
	if strings.HasPrefix(addr, "/") {
		return netutil.NewEndpoint(addr, 0, r), nil
	}

	host := addr
	port := DefaultPort
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		p, err := strconv.Atoi(addr[i+1:])
		if err != nil || p <= 0 || p > 65535 {
			return netutil.Endpoint{}, fmt.Errorf("%w: invalid port in address %q", common.ErrConnectionFailure, addr)
		}
		host, port = addr[:i], p
	}

	ep := netutil.NewEndpoint(host, port, r)
	if ep.IsUnspecified() {
		return netutil.Endpoint{}, fmt.Errorf("%w: couldn't resolve host %q", common.ErrConnectionFailure, host)
	}
	return ep, nil
}
