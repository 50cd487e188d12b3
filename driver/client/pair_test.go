package client

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ValentinKolb/dDoc/driver/common"
	"github.com/ValentinKolb/dDoc/driver/document"
	"github.com/ValentinKolb/dDoc/driver/transport"
)

// newTestPair creates a connected pair backed by one scripted port per side
func newTestPair(t *testing.T) (*PairedConn, *scriptedPort, *scriptedPort) {
	t.Helper()
	left := &scriptedPort{t: t}
	right := &scriptedPort{t: t}

	p := NewPairedConnWithDialer(
		common.ClientConfig{},
		document.NewJSONCodec(),
		func(addr string) (transport.IMessagingPort, error) { return left, nil },
		func(addr string) (transport.IMessagingPort, error) { return right, nil },
	)
	if err := p.Connect("left:27017", "right:27017"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	return p, left, right
}

// scriptIsMaster arranges the next probe answer on a side
func (p *scriptedPort) scriptIsMaster(isMaster bool) {
	v := float64(0)
	if isMaster {
		v = 1
	}
	p.scriptReply(0, 0, document.Document{"ismaster": v, "ok": float64(1)})
}

func TestPairElectsOtherSide(t *testing.T) {
	p, left, right := newTestPair(t)

	// Initial state suspects left; left denies, right confirms
	left.scriptIsMaster(false)
	right.scriptIsMaster(true)

	master, err := p.checkMaster()
	if err != nil {
		t.Fatalf("checkMaster failed: %v", err)
	}
	if master != p.right {
		t.Fatalf("Expected right side confirmed as master")
	}
	if p.master != stateRight {
		t.Errorf("State %s, expected right", p.master)
	}

	// Steady state: operations go straight to the confirmed side with zero
	// additional probe round trips.
	probes := left.calls() + right.calls()
	right.scriptReply(0, 0, document.Document{"name": "alice"})
	if _, err := p.FindOne("test.people", document.Document{}, nil, 0); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if left.calls()+right.calls() != probes+1 {
		t.Errorf("Expected exactly one data round trip after confirmation, got %d",
			left.calls()+right.calls()-probes)
	}
}

func TestPairSuspectedSideConfirmedFirst(t *testing.T) {
	p, left, right := newTestPair(t)

	left.scriptIsMaster(true)
	master, err := p.checkMaster()
	if err != nil {
		t.Fatalf("checkMaster failed: %v", err)
	}
	if master != p.left {
		t.Fatalf("Expected left side confirmed as master")
	}
	// The other side was never probed
	if right.calls() != 0 {
		t.Errorf("Right side probed unnecessarily: %d calls", right.calls())
	}
}

func TestPairNoMasterFound(t *testing.T) {
	p, left, right := newTestPair(t)

	left.scriptIsMaster(false)
	right.scriptIsMaster(false)

	if _, err := p.Query("test.people", document.Document{}, 0, 0, nil, 0); !errors.Is(err, common.ErrNoMaster) {
		t.Fatalf("Expected ErrNoMaster, got %v", err)
	}

	// No partial state may be left confirmed
	if p.master == stateLeft || p.master == stateRight {
		t.Errorf("State %s confirmed although neither side is master", p.master)
	}
}

// TestPairDemotionOnNotMaster checks that a "not master" rejection from the
// confirmed side actually demotes the cached state (suspecting the other
// side) and re-raises the error to the caller.
func TestPairDemotionOnNotMaster(t *testing.T) {
	p, left, right := newTestPair(t)

	left.scriptIsMaster(true)
	if _, err := p.checkMaster(); err != nil {
		t.Fatalf("checkMaster failed: %v", err)
	}
	if p.master != stateLeft {
		t.Fatalf("Expected left confirmed, got %s", p.master)
	}

	// Mid-session failover: the formerly confirmed side now rejects
	left.scriptReply(0, 0, document.Document{common.ErrFieldName: "not master"})
	_, err := p.FindOne("test.people", document.Document{}, nil, 0)
	if !common.IsNotMasterErr(err) {
		t.Fatalf("Expected the not-master error re-raised, got %v", err)
	}
	if p.master != stateNotSetRight {
		t.Fatalf("Expected demotion to unknown-suspect-right, got %s", p.master)
	}

	// The next call re-probes, starting with the suspected side
	right.scriptIsMaster(true)
	right.scriptReply(0, 0, document.Document{"name": "alice"})
	doc, err := p.FindOne("test.people", document.Document{}, nil, 0)
	if err != nil {
		t.Fatalf("FindOne after failover failed: %v", err)
	}
	if doc["name"] != "alice" {
		t.Errorf("Unexpected document: %+v", doc)
	}
	if p.master != stateRight {
		t.Errorf("Expected right confirmed after failover, got %s", p.master)
	}
}

// TestPairProbeAnsweredNotMaster covers the mid-failover race where the
// suspected side answers the ismaster probe itself with a "not master"
// rejection document. The rejection reports back into the pair while the
// election is running; checkMaster must still return with the other side
// confirmed instead of hanging on its own state lock.
func TestPairProbeAnsweredNotMaster(t *testing.T) {
	p, left, right := newTestPair(t)

	left.scriptReply(0, 0, document.Document{common.ErrFieldName: "not master"})
	right.scriptIsMaster(true)

	type result struct {
		master *Conn
		err    error
	}
	done := make(chan result, 1)
	go func() {
		m, err := p.checkMaster()
		done <- result{m, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			t.Fatalf("checkMaster failed: %v", res.err)
		}
		if res.master != p.right {
			t.Fatalf("Expected right side confirmed as master")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("checkMaster did not return")
	}

	if p.master != stateRight {
		t.Errorf("State %s, expected right", p.master)
	}
}

func TestPairIsntMasterWhileUnknownIsNoOp(t *testing.T) {
	p, _, _ := newTestPair(t)

	p.isntMaster()
	if p.master != stateNotSetLeft {
		t.Errorf("isntMaster while unknown must not change state, got %s", p.master)
	}
}

func TestPairConnectOneSideDown(t *testing.T) {
	right := &scriptedPort{t: t}
	p := NewPairedConnWithDialer(
		common.ClientConfig{},
		document.NewJSONCodec(),
		func(addr string) (transport.IMessagingPort, error) { return nil, fmt.Errorf("node down") },
		func(addr string) (transport.IMessagingPort, error) { return right, nil },
	)

	// One reachable member is enough
	if err := p.Connect("left:27017", "right:27017"); err != nil {
		t.Fatalf("Connect with one side down failed: %v", err)
	}

	down := NewPairedConnWithDialer(
		common.ClientConfig{},
		document.NewJSONCodec(),
		func(addr string) (transport.IMessagingPort, error) { return nil, fmt.Errorf("node down") },
		func(addr string) (transport.IMessagingPort, error) { return nil, fmt.Errorf("node down") },
	)
	if err := down.Connect("left:27017", "right:27017"); !errors.Is(err, common.ErrConnectionFailure) {
		t.Fatalf("Expected connection failure with both sides down, got %v", err)
	}
}
