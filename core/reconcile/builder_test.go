package reconcile

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(id uint, number, name string, qty int) SnapshotRow {
	return SnapshotRow{AssetID: id, AssetNumber: number, AssetName: name, Quantity: qty}
}

func read(number *string, name string, qty int, isNew bool) ReadRow {
	return ReadRow{AssetNumber: number, AssetName: name, Quantity: qty, IsNewItem: isNew}
}

func TestBuildDiffs_DivergentMatch(t *testing.T) {
	// Snapshot PAT-1 qty 5, read PAT-1 qty 3.
	diffs := BuildDiffs(
		[]SnapshotRow{snapshot(1, "PAT-1", "Chair", 5)},
		[]ReadRow{read(strPtr("PAT-1"), "Chair", 3, false)},
	)

	require.Len(t, diffs, 1)
	d := diffs[0]
	assert.Equal(t, StatusDivergent, d.Status)
	assert.Equal(t, 5, d.L0Quantity)
	assert.Equal(t, 3, d.L1Quantity)
	require.NotNil(t, d.AssetID)
	assert.Equal(t, uint(1), *d.AssetID)
	assert.Nil(t, d.FinalQuantity)
	assert.Nil(t, d.ResolutionChoice)
}

func TestBuildDiffs_MissingSnapshot(t *testing.T) {
	// Snapshot PAT-2 qty 2 with no matching read.
	diffs := BuildDiffs(
		[]SnapshotRow{snapshot(2, "PAT-2", "Desk", 2)},
		nil,
	)

	require.Len(t, diffs, 1)
	assert.Equal(t, StatusMissing, diffs[0].Status)
	assert.Equal(t, 2, diffs[0].L0Quantity)
	assert.Equal(t, 0, diffs[0].L1Quantity)
}

func TestBuildDiffs_NewWithoutNumber(t *testing.T) {
	// A read with no asset number can never match and must come out NEW.
	diffs := BuildDiffs(
		[]SnapshotRow{snapshot(1, "PAT-1", "Chair", 5)},
		[]ReadRow{read(nil, "Unlabeled lamp", 1, true)},
	)

	require.Len(t, diffs, 2)
	var newDiff *Diff
	for i := range diffs {
		if diffs[i].Status == StatusNew {
			newDiff = &diffs[i]
		}
	}
	require.NotNil(t, newDiff)
	assert.Equal(t, 0, newDiff.L0Quantity)
	assert.Equal(t, 1, newDiff.L1Quantity)
	assert.Nil(t, newDiff.AssetNumber)
}

func TestBuildDiffs_MatchIsCaseInsensitive(t *testing.T) {
	diffs := BuildDiffs(
		[]SnapshotRow{snapshot(1, "pat-9", "Printer", 4)},
		[]ReadRow{read(strPtr("PAT-9"), "Printer (label worn)", 4, false)},
	)

	require.Len(t, diffs, 1)
	assert.Equal(t, StatusOK, diffs[0].Status)
	// Identity fields come from the snapshot, not the read.
	assert.Equal(t, "Printer", diffs[0].AssetName)
	assert.Equal(t, "pat-9", *diffs[0].AssetNumber)
}

func TestBuildDiffs_SnapshotWithoutNumberIsNeverMatched(t *testing.T) {
	// A baseline row without a number is not indexed; the read with the
	// same name still classifies as NEW and the baseline row as MISSING
	// is not emitted either, because it never entered the index.
	diffs := BuildDiffs(
		[]SnapshotRow{snapshot(7, "", "Mystery box", 1)},
		[]ReadRow{read(nil, "Mystery box", 1, true)},
	)

	require.Len(t, diffs, 1)
	assert.Equal(t, StatusNew, diffs[0].Status)
}

func TestBuildDiffs_ClassificationCompleteness(t *testing.T) {
	// |output| == |reads| + |unmatched snapshots| with every record in
	// exactly one of the four statuses.
	snapshots := []SnapshotRow{
		snapshot(1, "PAT-1", "Chair", 5),
		snapshot(2, "PAT-2", "Desk", 2),
		snapshot(3, "PAT-3", "Monitor", 1),
	}
	reads := []ReadRow{
		read(strPtr("PAT-1"), "Chair", 5, false),
		read(strPtr("PAT-3"), "Monitor", 4, false),
		read(strPtr("PAT-99"), "Projector", 1, true),
		read(nil, "Whiteboard", 2, true),
	}

	diffs := BuildDiffs(snapshots, reads)
	require.Len(t, diffs, 5) // 4 reads + 1 unmatched snapshot (PAT-2)

	counts := map[Status]int{}
	for _, d := range diffs {
		counts[d.Status]++
	}
	assert.Equal(t, 1, counts[StatusOK])
	assert.Equal(t, 1, counts[StatusDivergent])
	assert.Equal(t, 1, counts[StatusMissing])
	assert.Equal(t, 2, counts[StatusNew])
}

func TestBuildDiffs_OrderIndependent(t *testing.T) {
	snapshots := []SnapshotRow{
		snapshot(1, "PAT-1", "Chair", 5),
		snapshot(2, "PAT-2", "Desk", 2),
		snapshot(3, "PAT-3", "Monitor", 1),
		snapshot(4, "PAT-4", "Cabinet", 8),
	}
	reads := []ReadRow{
		read(strPtr("PAT-1"), "Chair", 3, false),
		read(strPtr("PAT-4"), "Cabinet", 8, false),
		read(strPtr("PAT-77"), "Heater", 1, true),
	}

	want := BuildDiffs(snapshots, reads)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(snapshots), func(a, b int) { snapshots[a], snapshots[b] = snapshots[b], snapshots[a] })
		rng.Shuffle(len(reads), func(a, b int) { reads[a], reads[b] = reads[b], reads[a] })
		assert.Equal(t, want, BuildDiffs(snapshots, reads))
	}
}

func TestBuildDiffs_EmptyInputs(t *testing.T) {
	assert.Empty(t, BuildDiffs(nil, nil))

	onlyReads := BuildDiffs(nil, []ReadRow{read(strPtr("PAT-1"), "Chair", 1, true)})
	require.Len(t, onlyReads, 1)
	assert.Equal(t, StatusNew, onlyReads[0].Status)

	onlySnaps := BuildDiffs([]SnapshotRow{snapshot(1, "PAT-1", "Chair", 1)}, nil)
	require.Len(t, onlySnaps, 1)
	assert.Equal(t, StatusMissing, onlySnaps[0].Status)
}

func TestByNumber(t *testing.T) {
	assert.True(t, ByNumber("pat-1").Matchable())
	assert.Equal(t, "PAT-1", ByNumber("pat-1").Number())
	assert.False(t, ByNumber("").Matchable())
	assert.False(t, ByNumber("   ").Matchable())
	assert.False(t, Unmatchable().Matchable())
}
