// Package inventory implements the inventory lifecycle: creation with an
// atomic baseline snapshot, the counting-phase read-item operations, and the
// HTTP surface that also fronts the compare and adjust subpackages.
package inventory
