package common

import (
	"errors"
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Error Kinds
// --------------------------------------------------------------------------

var (
	// ErrConnectionFailure means a connection could not be established, or
	// has permanently failed and cannot auto-reconnect.
	ErrConnectionFailure = errors.New("connection failure")

	// ErrTransport means a mid-operation I/O failure on an otherwise
	// established connection. It marks the connection's sticky failed flag.
	ErrTransport = errors.New("transport error")

	// ErrRemoteQuery means the server returned a well-formed error document
	// instead of results.
	ErrRemoteQuery = errors.New("remote query error")

	// ErrExhausted means the caller advanced a cursor past its available
	// data.
	ErrExhausted = errors.New("cursor exhausted")

	// ErrNoMaster means a paired connection could not confirm a master on
	// either side.
	ErrNoMaster = errors.New("no master found")

	// ErrCursorNotFound means a get-more was issued against a cursor handle
	// the server has already discarded. Callers of tailable cursors must
	// detect this and re-issue a fresh query.
	ErrCursorNotFound = errors.New("cursor not found")

	// ErrEmptyResult means a findOne received zero documents.
	ErrEmptyResult = errors.New("empty result")
)

// NewRemoteQueryError wraps a server-reported error string ($err document)
// as an ErrRemoteQuery.
func NewRemoteQueryError(serverMsg string) error {
	return fmt.Errorf("%w: %s", ErrRemoteQuery, serverMsg)
}

// IsNotMasterErr reports whether an error carries the server's "not master"
// rejection, the signal that triggers paired-connection demotion.
func IsNotMasterErr(err error) bool {
	return err != nil && errors.Is(err, ErrRemoteQuery) &&
		strings.Contains(err.Error(), "not master")
}
