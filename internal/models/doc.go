// Package models defines the core domain types for Splitbook.
//
// The central type is Record, a unified ledger entry covering both shared
// expenses and settle-up payments inside a group. A Record carries an
// immutable split breakdown; each Split references either a registered user
// or a pending (invited but unregistered) participant keyed by email.
//
// Groups track confirmed members alongside pending members. The global
// PendingIdentity record accumulates every group an email has been invited
// into, so that registration can convert all of them in one pass.
package models
