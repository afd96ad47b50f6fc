// Package services implements the driving port interfaces.
// Services contain the core logic and orchestrate calls to driven ports
// (the credential store, the OAuth provider and the spreadsheet gateway).
//
// The Resolver is the centre: every other service that touches a user's
// spreadsheet goes through it to get a valid credential.
package services
