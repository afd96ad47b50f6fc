// Package driving defines the interfaces that adapters call INTO core.
//
// HTTP handlers, the MCP server and CLI commands depend only on these
// interfaces; the services package implements them.
package driving
