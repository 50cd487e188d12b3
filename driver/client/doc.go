// Package client implements the driver core: connections to database nodes
// and cursors over query results.
//
// Key Components:
//
//   - Conn: a single logical link to one node. Blocking query/findOne
//     primitives built on the messaging port, with sticky failure tracking
//     and optional lazy, rate-limited reconnects.
//
//   - Cursor: a lazily batched iterator over a query's result set, issuing
//     get-more requests through its originating connection and owning its
//     current batch frame.
//
//   - PairedConn: two Conns against a replica pair, caching which side is
//     master and recovering from failover within one extra round trip. No
//     consensus protocol, just best-effort primary discovery: ask each node
//     "are you master", cache the answer, re-ask when an operation reports
//     otherwise.
//
// Concurrency model: strictly blocking, no background goroutines. A Conn or
// Cursor must not be used from multiple goroutines at once; only PairedConn's
// master-state transitions are internally locked.
package client
