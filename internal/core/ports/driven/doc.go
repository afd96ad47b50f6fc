// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - RecordStore: Per-user credential record persistence
//   - StateStore: Per-user app-state snapshot persistence
//   - AuthProvider: OAuth2 consent URL, code exchange and token refresh
//   - SpreadsheetGateway: Habit log spreadsheet operations
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
