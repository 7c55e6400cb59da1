// Package reconcile implements the pure core of inventory reconciliation:
// the diff builder and the rule evaluator.
//
// BuildDiffs compares a frozen baseline snapshot (L0) against freshly counted
// readings (L1) and classifies every item as OK, DIVERGENT, MISSING or NEW.
// Matching is by uppercased asset number; rows without a number are
// unmatchable and always classify as NEW. The MatchKey type makes that
// branch explicit instead of hiding it behind a nullable string.
//
// DeriveFinalQuantity maps a diff record plus the active Policy to the
// quantity the adjustment pass will commit.
//
// Neither function performs I/O or holds state; both are deterministic and
// order-independent, which is what makes the orchestrators on top of them
// testable without a database.
package reconcile
