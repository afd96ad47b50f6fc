// Package domain defines the core business entities for habitsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: The persisted per-user OAuth tokens and spreadsheet handle
//   - Tokens: Access/refresh token pair with its expiry
//   - Credential: A ready-to-use bearer credential handed to API clients
//   - LogEntry: A single habit log row mirrored into the user's sheet
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
