package reconcile

import (
	"sort"
	"strings"
)

// BuildDiffs compares the frozen baseline against the counted readings and
// returns one classified diff record per item in either set.
//
// The algorithm indexes snapshot rows by their match key, walks every read
// row to emit OK/DIVERGENT/NEW records, then emits MISSING for each snapshot
// entry no read ever touched. Identity fields of matched records come from
// the snapshot, not the read. It is a pure transformation: the same two input
// sets always produce the same records regardless of input ordering.
func BuildDiffs(snapshots []SnapshotRow, reads []ReadRow) []Diff {
	type snapEntry struct {
		row SnapshotRow
		key MatchKey
	}

	// Index baseline rows by uppercased asset number. Rows without a
	// number cannot be matched and are left out of the index entirely.
	index := make(map[string]snapEntry, len(snapshots))
	for _, row := range snapshots {
		key := ByNumber(row.AssetNumber)
		if !key.Matchable() {
			continue
		}
		index[key.Number()] = snapEntry{row: row, key: key}
	}

	diffs := make([]Diff, 0, len(reads)+len(index))
	processed := make(map[string]struct{}, len(index))

	for _, read := range reads {
		key := readKey(read)

		var entry snapEntry
		var matched bool
		if key.Matchable() {
			entry, matched = index[key.Number()]
		}

		if !matched {
			diffs = append(diffs, newDiff(read))
			continue
		}

		processed[key.Number()] = struct{}{}
		diffs = append(diffs, matchedDiff(entry.row, read))
	}

	for number, entry := range index {
		if _, ok := processed[number]; ok {
			continue
		}
		diffs = append(diffs, missingDiff(entry.row))
	}

	// Sort for deterministic output; the map pass above iterates in
	// random order.
	sort.Slice(diffs, func(i, j int) bool {
		ni, nj := strings.ToLower(diffs[i].AssetName), strings.ToLower(diffs[j].AssetName)
		if ni != nj {
			return ni < nj
		}
		return derefNumber(diffs[i].AssetNumber) < derefNumber(diffs[j].AssetNumber)
	})

	return diffs
}

// readKey derives the match key for a counted row.
func readKey(read ReadRow) MatchKey {
	if read.AssetNumber == nil {
		return Unmatchable()
	}
	return ByNumber(*read.AssetNumber)
}

// newDiff classifies an unmatched read as NEW with a zero baseline.
func newDiff(read ReadRow) Diff {
	return Diff{
		AssetID:     read.AssetID,
		AssetNumber: read.AssetNumber,
		AssetName:   read.AssetName,
		AreaID:      read.AreaID,
		L0Quantity:  0,
		L1Quantity:  read.Quantity,
		L2Quantity:  intPtr(0),
		Status:      StatusNew,
	}
}

// matchedDiff compares a baseline entry with its counted row. Identity
// fields carry over from the snapshot record.
func matchedDiff(snap SnapshotRow, read ReadRow) Diff {
	status := StatusOK
	if snap.Quantity != read.Quantity {
		status = StatusDivergent
	}

	assetID := snap.AssetID
	return Diff{
		AssetID:     &assetID,
		AssetNumber: strPtr(snap.AssetNumber),
		AssetName:   snap.AssetName,
		AreaID:      snap.AreaID,
		L0Quantity:  snap.Quantity,
		L1Quantity:  read.Quantity,
		L2Quantity:  intPtr(0),
		Status:      status,
	}
}

// missingDiff marks a baseline entry no read ever matched.
func missingDiff(snap SnapshotRow) Diff {
	assetID := snap.AssetID
	return Diff{
		AssetID:     &assetID,
		AssetNumber: strPtr(snap.AssetNumber),
		AssetName:   snap.AssetName,
		AreaID:      snap.AreaID,
		L0Quantity:  snap.Quantity,
		L1Quantity:  0,
		L2Quantity:  intPtr(0),
		Status:      StatusMissing,
	}
}

func intPtr(v int) *int {
	return &v
}

func strPtr(s string) *string {
	return &s
}

func derefNumber(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
