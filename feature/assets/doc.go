// Package assets implements the asset registry: areas, registered assets
// and the sequence-backed asset number generator.
//
// The reconciliation core treats this package as the store it adjusts:
// the adjustment pass updates asset quantities, creates assets for counted
// items the registry never knew about, and mints numbers for them through
// the Generator.
package assets
