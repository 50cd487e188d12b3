package client

import (
	"fmt"
	"sync"

	"github.com/ValentinKolb/dDoc/driver/common"
	"github.com/ValentinKolb/dDoc/driver/document"
)

// --------------------------------------------------------------------------
// Master State
// --------------------------------------------------------------------------

// masterState caches which side of the pair is currently master. The two
// "not set" values remember which side to probe first.
type masterState int

const (
	stateNotSetLeft masterState = iota // unknown, probe left first
	stateNotSetRight
	stateLeft  // confirmed left
	stateRight // confirmed right
)

// String returns the string representation of a masterState.
func (s masterState) String() string {
	switch s {
	case stateNotSetLeft:
		return "unknown (suspect left)"
	case stateNotSetRight:
		return "unknown (suspect right)"
	case stateLeft:
		return "left"
	case stateRight:
		return "right"
	default:
		return "invalid"
	}
}

// --------------------------------------------------------------------------
// Paired Connection
// --------------------------------------------------------------------------

// PairedConn connects to a replica pair of servers, tracks which one is
// master and fails over automatically. It exposes the same query contract as
// a single Conn.
//
// The master cache follows cache-then-verify: a confirmed side is used
// without any probe round trip until an operation comes back with a "not
// master" rejection, which demotes the cache so the next call re-probes.
// The state transitions are guarded by a mutex; the underlying Conns are
// still single-caller.
type PairedConn struct {
	mu          sync.Mutex
	left, right *Conn
	master      masterState
}

// NewPairedConn creates a paired connection. Both sides are forced to
// auto-reconnect: failover only works if a formerly dead node can come back.
func NewPairedConn(config common.ClientConfig, codec document.ICodec) *PairedConn {
	config.AutoReconnect = true
	p := &PairedConn{master: stateNotSetLeft}
	p.left = NewConn(config, codec)
	p.right = NewConn(config, codec)
	p.left.pair = p
	p.right.pair = p
	return p
}

// NewPairedConnWithDialer creates a paired connection with a custom dialer
// per side.
func NewPairedConnWithDialer(config common.ClientConfig, codec document.ICodec, dialLeft, dialRight DialFunc) *PairedConn {
	config.AutoReconnect = true
	p := &PairedConn{master: stateNotSetLeft}
	p.left = NewConnWithDialer(config, codec, dialLeft)
	p.right = NewConnWithDialer(config, codec, dialRight)
	p.left.pair = p
	p.right.pair = p
	return p
}

// Connect attempts both sides independently. It returns an error only if
// neither member of the pair was reachable; even then the pair stays usable
// and will retry connects on next use. Which side is master is not decided
// here but lazily on first use.
func (p *PairedConn) Connect(serverAddress1, serverAddress2 string) error {
	err1 := p.left.Connect(serverAddress1)
	err2 := p.right.Connect(serverAddress2)
	if err1 != nil && err2 != nil {
		return fmt.Errorf("%w: neither pair member reachable (%v; %v)", common.ErrConnectionFailure, err1, err2)
	}
	return nil
}

// Close closes both sides.
func (p *PairedConn) Close() error {
	err1 := p.left.Close()
	err2 := p.right.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// --------------------------------------------------------------------------
// Interface Methods (docu see client.IDBClient)
// --------------------------------------------------------------------------

func (p *PairedConn) Query(ns string, query document.Document, nToReturn, nToSkip int32, fields document.Document, options int32) (*Cursor, error) {
	master, err := p.checkMaster()
	if err != nil {
		return nil, err
	}
	return master.Query(ns, query, nToReturn, nToSkip, fields, options)
}

func (p *PairedConn) FindOne(ns string, query document.Document, fields document.Document, options int32) (document.Document, error) {
	master, err := p.checkMaster()
	if err != nil {
		return nil, err
	}

	doc, err := master.FindOne(ns, query, fields, options)
	if common.IsNotMasterErr(err) {
		// Demote so the next call re-probes; the current call still fails.
		// Usually already done through the cursor's pair notification, in
		// which case this is a no-op.
		p.isntMaster()
	}
	return doc, err
}

// --------------------------------------------------------------------------
// Master Election
// --------------------------------------------------------------------------

// checkMaster returns the connection to use for master operations. A
// confirmed state answers without any network round trip; otherwise the
// suspected side is probed first, then the other. Fails with ErrNoMaster if
// neither side reports master, leaving the state unconfirmed.
func (p *PairedConn) checkMaster() (*Conn, error) {
	p.mu.Lock()
	switch p.master {
	case stateLeft:
		p.mu.Unlock()
		return p.left, nil
	case stateRight:
		p.mu.Unlock()
		return p.right, nil
	}

	suspect, other := p.left, p.right
	suspectState, otherState := stateLeft, stateRight
	if p.master == stateNotSetRight {
		suspect, other = p.right, p.left
		suspectState, otherState = stateRight, stateLeft
	}

	// The probes must run unlocked: a node answering the ismaster command
	// with a "not master" rejection reports back through isntMaster, which
	// takes the same mutex. With the state already unknown here that report
	// is a no-op.
	p.mu.Unlock()

	var confirmed *Conn
	var confirmedState masterState
	if isMaster, _, err := suspect.IsMaster(); err == nil && isMaster {
		confirmed, confirmedState = suspect, suspectState
	} else if isMaster, _, err := other.IsMaster(); err == nil && isMaster {
		confirmed, confirmedState = other, otherState
	}
	if confirmed == nil {
		return nil, fmt.Errorf("%w: %s / %s", common.ErrNoMaster, p.left, p.right)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.master = confirmedState
	Logger.Infof("Master confirmed: %s (%s)", confirmedState, confirmed)
	return confirmed, nil
}

// isntMaster handles the notification that an operation got a "not master"
// rejection: a confirmed side is demoted to unknown, suspecting the other
// side for the next probe. A no-op while already unknown.
func (p *PairedConn) isntMaster() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.master {
	case stateLeft:
		p.master = stateNotSetRight
	case stateRight:
		p.master = stateNotSetLeft
	default:
		return
	}
	failoversTotal.Inc()
	Logger.Warningf("Master demoted, state now %s", p.master)
}
