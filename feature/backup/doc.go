// Package backup exports the whole registry as a JSON envelope to object
// storage and restores it back.
package backup
