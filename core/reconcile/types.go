package reconcile

import "strings"

// Status classifies a single diff record.
type Status string

const (
	// StatusOK means baseline and first count agree.
	StatusOK Status = "OK"
	// StatusDivergent means the item was counted with a different quantity.
	StatusDivergent Status = "DIVERGENT"
	// StatusMissing means the item is in the baseline but was never counted.
	StatusMissing Status = "MISSING"
	// StatusNew means the item was counted but is absent from the baseline.
	StatusNew Status = "NEW"
)

// Choice is the operator's chosen source of truth for a diff record.
type Choice string

const (
	// ChoiceL1 trusts the first physical count.
	ChoiceL1 Choice = "L1"
	// ChoiceL2 trusts the second physical count.
	ChoiceL2 Choice = "L2"
	// ChoiceIgnore keeps the baseline quantity.
	ChoiceIgnore Choice = "IGNORE"
)

// IsValid reports whether the choice is one of the three known values.
func (c Choice) IsValid() bool {
	switch c {
	case ChoiceL1, ChoiceL2, ChoiceIgnore:
		return true
	default:
		return false
	}
}

// DecisionCreated is recorded in the audit log when an adjustment creates a
// new asset instead of updating an existing one.
const DecisionCreated = "CREATED"

// SnapshotRow is the frozen baseline copy of an asset at inventory creation.
type SnapshotRow struct {
	AssetID     uint
	AssetNumber string
	AssetName   string
	AreaID      *uint
	Quantity    int
}

// ReadRow is one operator-recorded count from the counting phase.
type ReadRow struct {
	AssetID     *uint
	AssetNumber *string
	AssetName   string
	AreaID      *uint
	IsNewItem   bool
	Quantity    int
}

// Diff is the reconciliation unit produced by BuildDiffs.
//
// L2Quantity, FinalQuantity, ResolutionChoice and ResolutionNote are pointers
// because zero is a legitimate quantity distinct from "not yet recorded".
type Diff struct {
	AssetID          *uint
	AssetNumber      *string
	AssetName        string
	AreaID           *uint
	L0Quantity       int
	L1Quantity       int
	L2Quantity       *int
	FinalQuantity    *int
	ResolutionChoice *Choice
	ResolutionNote   *string
	Status           Status
}

// MatchKey identifies how a counted row matches against the baseline.
// It is either ByNumber (the uppercased asset number) or unmatchable;
// unmatchable rows can never match a snapshot entry and always classify
// as NEW.
type MatchKey struct {
	number    string
	matchable bool
}

// ByNumber builds a matchable key from an asset number. An empty or
// blank number yields the unmatchable key.
func ByNumber(assetNumber string) MatchKey {
	trimmed := strings.TrimSpace(assetNumber)
	if trimmed == "" {
		return Unmatchable()
	}
	return MatchKey{number: strings.ToUpper(trimmed), matchable: true}
}

// Unmatchable returns the key for rows that carry no asset number.
func Unmatchable() MatchKey {
	return MatchKey{}
}

// Matchable reports whether the key can be looked up in the baseline index.
func (k MatchKey) Matchable() bool {
	return k.matchable
}

// Number returns the normalized asset number. Only meaningful when
// Matchable is true.
func (k MatchKey) Number() string {
	return k.number
}
