// Package migrations holds the schema for the run history database.
package migrations

import "embed"

// FS holds the numbered up/down scripts applied by the sqlite store.
//
//go:embed *.sql
var FS embed.FS
