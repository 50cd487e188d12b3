package client

import (
	"github.com/ValentinKolb/dDoc/driver/document"
)

// --------------------------------------------------------------------------
// Client Interface
// --------------------------------------------------------------------------

// IDBClient is the query contract shared by a single connection and a
// replica pair.
type IDBClient interface {
	// Query sends a query and returns a cursor over the result set.
	// ns is the namespace ("<db>.<collection>"), nToReturn limits the result
	// count (0 = unlimited), nToSkip skips the first n matches, fields is an
	// optional projection document (nil = all fields) and options is the
	// query option bitmask (see the common package).
	Query(ns string, query document.Document, nToReturn, nToSkip int32, fields document.Document, options int32) (*Cursor, error)

	// FindOne returns the first matching document, or ErrEmptyResult if the
	// server returns none.
	FindOne(ns string, query document.Document, fields document.Document, options int32) (document.Document, error)
}
