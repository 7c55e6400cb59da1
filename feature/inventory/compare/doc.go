// Package compare rebuilds and queries the reconciliation diffs of an
// inventory and carries the operator's second counts and resolutions.
package compare
