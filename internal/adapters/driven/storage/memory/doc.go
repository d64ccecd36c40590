// Package memory provides in-memory implementations of driven port interfaces.
// Data does not survive the process; used when no data directory is
// available and in tests.
package memory
