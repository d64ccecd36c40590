// Package driving defines the interfaces that the outside world calls INTO core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The CLI and MCP adapters depend on these interfaces; core services
// implement them.
package driving
