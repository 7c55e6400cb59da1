// Package adjust applies a fully resolved inventory back onto the asset
// registry in one transaction, writes the audit trail and closes the
// inventory.
package adjust
