// Package cmd implements the command-line interface for the dDoc document
// database client. It provides a hierarchical command structure for querying
// a server or replica pair over the binary wire protocol.
//
// The package is organized into several subpackages:
//
//   - db: Commands for database operations (query, findone, ismaster)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See ddoc -help for a list of all commands.
package cmd
