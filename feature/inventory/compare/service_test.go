package compare

import (
	"context"
	"testing"

	"patrimony-manager/core/reconcile"
	assetmodels "patrimony-manager/feature/assets/models"
	"patrimony-manager/feature/inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&assetmodels.Area{},
		&assetmodels.Asset{},
		&models.Inventory{},
		&models.SnapshotItem{},
		&models.ReadItem{},
		&models.Diff{},
	))
	return db
}

func seedInventory(t *testing.T, db *gorm.DB) models.Inventory {
	inv := models.Inventory{Name: "Annual", ScopeType: models.ScopeAll, Status: models.StatusOpen}
	require.NoError(t, db.Create(&inv).Error)
	return inv
}

var nextAssetID uint

func seedSnapshot(t *testing.T, db *gorm.DB, inventoryID uint, number, name string, quantity int) {
	nextAssetID++
	item := models.SnapshotItem{
		InventoryID: inventoryID,
		AssetID:     nextAssetID,
		AssetNumber: number,
		AssetName:   name,
		Quantity:    quantity,
	}
	require.NoError(t, db.Create(&item).Error)
}

func seedRead(t *testing.T, db *gorm.DB, inventoryID uint, number *string, name string, quantity int, isNew bool) {
	item := models.ReadItem{
		InventoryID: inventoryID,
		AssetNumber: number,
		AssetName:   name,
		Quantity:    quantity,
		IsNewItem:   isNew,
	}
	require.NoError(t, db.Create(&item).Error)
}

func strp(s string) *string { return &s }

func TestService_Recompute(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop())
	ctx := context.Background()

	inv := seedInventory(t, db)
	seedSnapshot(t, db, inv.ID, "PAT-000001", "Desk", 5)
	seedSnapshot(t, db, inv.ID, "PAT-000002", "Cabinet", 2)
	seedRead(t, db, inv.ID, strp("pat-000001"), "Desk", 3, false)
	seedRead(t, db, inv.ID, nil, "Mystery box", 1, true)

	result, err := svc.Recompute(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Divergent)

	var diffs []models.Diff
	require.NoError(t, db.Where("inventory_id = ?", inv.ID).
		Order("LOWER(asset_name) ASC").Find(&diffs).Error)
	require.Len(t, diffs, 3)

	cabinet, desk, box := diffs[0], diffs[1], diffs[2]

	assert.Equal(t, string(reconcile.StatusMissing), cabinet.Status)
	assert.Equal(t, 2, cabinet.L0Quantity)
	assert.Equal(t, 0, cabinet.L1Quantity)

	assert.Equal(t, string(reconcile.StatusDivergent), desk.Status)
	assert.Equal(t, 5, desk.L0Quantity)
	assert.Equal(t, 3, desk.L1Quantity)
	require.NotNil(t, desk.AssetNumber)
	assert.Equal(t, "PAT-000001", *desk.AssetNumber, "identity comes from the snapshot")

	assert.Equal(t, string(reconcile.StatusNew), box.Status)
	assert.Equal(t, 0, box.L0Quantity)
	assert.Equal(t, 1, box.L1Quantity)

	t.Run("unknown inventory", func(t *testing.T) {
		_, err := svc.Recompute(ctx, 999)
		assert.ErrorIs(t, err, models.ErrInventoryNotFound)
	})
}

func TestService_Recompute_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop())
	ctx := context.Background()

	inv := seedInventory(t, db)
	seedSnapshot(t, db, inv.ID, "PAT-000001", "Desk", 5)
	seedRead(t, db, inv.ID, strp("PAT-000001"), "Desk", 5, false)
	seedRead(t, db, inv.ID, strp("PAT-000009"), "Lamp", 1, true)

	first, err := svc.Recompute(ctx, inv.ID)
	require.NoError(t, err)
	second, err := svc.Recompute(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var diffs []models.Diff
	require.NoError(t, db.Where("inventory_id = ?", inv.ID).Find(&diffs).Error)
	assert.Len(t, diffs, 2, "old records are replaced, not appended")
}

func TestService_Recompute_WipesResolutions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop())
	ctx := context.Background()

	inv := seedInventory(t, db)
	seedSnapshot(t, db, inv.ID, "PAT-000001", "Desk", 5)
	seedRead(t, db, inv.ID, strp("PAT-000001"), "Desk", 3, false)

	_, err := svc.Recompute(ctx, inv.ID)
	require.NoError(t, err)

	var diff models.Diff
	require.NoError(t, db.Where("inventory_id = ?", inv.ID).First(&diff).Error)
	require.NoError(t, svc.SaveResolution(ctx, diff.ID, Resolution{Choice: reconcile.ChoiceL1}))

	_, err = svc.Recompute(ctx, inv.ID)
	require.NoError(t, err)

	var rebuilt models.Diff
	require.NoError(t, db.Where("inventory_id = ?", inv.ID).First(&rebuilt).Error)
	assert.Nil(t, rebuilt.ResolutionChoice)
	assert.Nil(t, rebuilt.FinalQuantity)
}

func TestService_List(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop())
	ctx := context.Background()

	inv := seedInventory(t, db)
	seedSnapshot(t, db, inv.ID, "PAT-000001", "zebra cabinet", 5)
	seedSnapshot(t, db, inv.ID, "PAT-000002", "Apple stand", 2)
	seedSnapshot(t, db, inv.ID, "PAT-000003", "microscope", 1)
	seedRead(t, db, inv.ID, strp("PAT-000001"), "zebra cabinet", 5, false)
	seedRead(t, db, inv.ID, strp("PAT-000002"), "Apple stand", 1, false)

	_, err := svc.Recompute(ctx, inv.ID)
	require.NoError(t, err)

	t.Run("orders case-insensitively by name", func(t *testing.T) {
		result, err := svc.List(ctx, inv.ID, Filters{})
		require.NoError(t, err)
		require.Len(t, result.Items, 3)
		assert.Equal(t, "Apple stand", result.Items[0].AssetName)
		assert.Equal(t, "microscope", result.Items[1].AssetName)
		assert.Equal(t, "zebra cabinet", result.Items[2].AssetName)
		assert.Equal(t, int64(3), result.Total)
		assert.Equal(t, int64(2), result.Divergent)
	})

	t.Run("only divergent", func(t *testing.T) {
		result, err := svc.List(ctx, inv.ID, Filters{OnlyDivergent: true})
		require.NoError(t, err)
		require.Len(t, result.Items, 2)
		for _, diff := range result.Items {
			assert.NotEqual(t, string(reconcile.StatusOK), diff.Status)
		}
	})

	t.Run("search matches name or number", func(t *testing.T) {
		byName, err := svc.List(ctx, inv.ID, Filters{Search: "APPLE"})
		require.NoError(t, err)
		require.Len(t, byName.Items, 1)
		assert.Equal(t, "Apple stand", byName.Items[0].AssetName)

		byNumber, err := svc.List(ctx, inv.ID, Filters{Search: "pat-000003"})
		require.NoError(t, err)
		require.Len(t, byNumber.Items, 1)
		assert.Equal(t, "microscope", byNumber.Items[0].AssetName)
	})

	t.Run("pages with full counters", func(t *testing.T) {
		result, err := svc.List(ctx, inv.ID, Filters{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, int64(3), result.Total)
	})
}

func TestService_UpdateSecondCount(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop())
	ctx := context.Background()

	newDiff := func(t *testing.T) models.Diff {
		inv := seedInventory(t, db)
		diff := models.Diff{
			InventoryID: inv.ID,
			AssetName:   "Desk",
			L0Quantity:  5,
			L1Quantity:  3,
			Status:      string(reconcile.StatusDivergent),
		}
		require.NoError(t, db.Create(&diff).Error)
		return diff
	}

	reload := func(t *testing.T, id uint) models.Diff {
		var diff models.Diff
		require.NoError(t, db.First(&diff, id).Error)
		return diff
	}

	t.Run("seeds unset final quantity", func(t *testing.T) {
		diff := newDiff(t)
		require.NoError(t, svc.UpdateSecondCount(ctx, diff.ID, 4))

		got := reload(t, diff.ID)
		require.NotNil(t, got.L2Quantity)
		assert.Equal(t, 4, *got.L2Quantity)
		require.NotNil(t, got.FinalQuantity)
		assert.Equal(t, 4, *got.FinalQuantity)
	})

	t.Run("overwrites final under an L2 resolution", func(t *testing.T) {
		diff := newDiff(t)
		require.NoError(t, svc.SaveResolution(ctx, diff.ID, Resolution{
			Choice:     reconcile.ChoiceL2,
			L2Quantity: intp(4),
		}))
		require.NoError(t, svc.UpdateSecondCount(ctx, diff.ID, 6))

		got := reload(t, diff.ID)
		require.NotNil(t, got.FinalQuantity)
		assert.Equal(t, 6, *got.FinalQuantity)
	})

	t.Run("keeps final under a non-L2 resolution", func(t *testing.T) {
		diff := newDiff(t)
		require.NoError(t, svc.SaveResolution(ctx, diff.ID, Resolution{
			Choice:     reconcile.ChoiceL1,
			L1Quantity: intp(3),
		}))
		require.NoError(t, svc.UpdateSecondCount(ctx, diff.ID, 6))

		got := reload(t, diff.ID)
		require.NotNil(t, got.L2Quantity)
		assert.Equal(t, 6, *got.L2Quantity)
		require.NotNil(t, got.FinalQuantity)
		assert.Equal(t, 3, *got.FinalQuantity, "explicit L1 resolution is not clobbered")
	})

	t.Run("unknown diff", func(t *testing.T) {
		err := svc.UpdateSecondCount(ctx, 9999, 1)
		assert.ErrorIs(t, err, models.ErrDiffNotFound)
	})

	t.Run("finished inventory refused", func(t *testing.T) {
		diff := newDiff(t)
		require.NoError(t, db.Model(&models.Inventory{}).
			Where("id = ?", diff.InventoryID).
			Update("status", models.StatusFinished).Error)
		err := svc.UpdateSecondCount(ctx, diff.ID, 1)
		assert.ErrorIs(t, err, models.ErrInventoryFinished)
	})
}

func TestService_SaveResolution(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop())
	ctx := context.Background()

	newDiff := func(t *testing.T) models.Diff {
		inv := seedInventory(t, db)
		diff := models.Diff{
			InventoryID: inv.ID,
			AssetName:   "Desk",
			L0Quantity:  5,
			L1Quantity:  3,
			Status:      string(reconcile.StatusDivergent),
		}
		require.NoError(t, db.Create(&diff).Error)
		return diff
	}

	reload := func(t *testing.T, id uint) models.Diff {
		var diff models.Diff
		require.NoError(t, db.First(&diff, id).Error)
		return diff
	}

	t.Run("requires a valid choice", func(t *testing.T) {
		diff := newDiff(t)
		err := svc.SaveResolution(ctx, diff.ID, Resolution{})
		assert.ErrorIs(t, err, models.ErrInvalidChoice)
		err = svc.SaveResolution(ctx, diff.ID, Resolution{Choice: "L3"})
		assert.ErrorIs(t, err, models.ErrInvalidChoice)
	})

	t.Run("L2 stores the second count", func(t *testing.T) {
		diff := newDiff(t)
		require.NoError(t, svc.SaveResolution(ctx, diff.ID, Resolution{
			Choice:     reconcile.ChoiceL2,
			L2Quantity: intp(4),
			Note:       strp("recounted"),
		}))

		got := reload(t, diff.ID)
		require.NotNil(t, got.ResolutionChoice)
		assert.Equal(t, string(reconcile.ChoiceL2), *got.ResolutionChoice)
		require.NotNil(t, got.FinalQuantity)
		assert.Equal(t, 4, *got.FinalQuantity)
		require.NotNil(t, got.ResolutionNote)
		assert.Equal(t, "recounted", *got.ResolutionNote)
	})

	t.Run("L1 stores the first count", func(t *testing.T) {
		diff := newDiff(t)
		require.NoError(t, svc.SaveResolution(ctx, diff.ID, Resolution{
			Choice:     reconcile.ChoiceL1,
			L1Quantity: intp(3),
		}))

		got := reload(t, diff.ID)
		require.NotNil(t, got.FinalQuantity)
		assert.Equal(t, 3, *got.FinalQuantity)
	})

	t.Run("IGNORE keeps the supplied final", func(t *testing.T) {
		diff := newDiff(t)
		require.NoError(t, svc.SaveResolution(ctx, diff.ID, Resolution{
			Choice:        reconcile.ChoiceIgnore,
			FinalQuantity: intp(5),
		}))

		got := reload(t, diff.ID)
		require.NotNil(t, got.FinalQuantity)
		assert.Equal(t, 5, *got.FinalQuantity)
	})

	t.Run("defaults to zero when nothing is supplied", func(t *testing.T) {
		diff := newDiff(t)
		require.NoError(t, svc.SaveResolution(ctx, diff.ID, Resolution{
			Choice: reconcile.ChoiceIgnore,
		}))

		got := reload(t, diff.ID)
		require.NotNil(t, got.FinalQuantity)
		assert.Equal(t, 0, *got.FinalQuantity)
	})

	t.Run("finished inventory refused", func(t *testing.T) {
		diff := newDiff(t)
		require.NoError(t, db.Model(&models.Inventory{}).
			Where("id = ?", diff.InventoryID).
			Update("status", models.StatusFinished).Error)
		err := svc.SaveResolution(ctx, diff.ID, Resolution{Choice: reconcile.ChoiceL1})
		assert.ErrorIs(t, err, models.ErrInventoryFinished)
	})
}

// The live-editing derivation in SaveResolution and the canonical rule in
// DeriveFinalQuantity must agree for resolved divergent records.
func TestService_ResolutionMatchesRuleEvaluator(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop())
	ctx := context.Background()
	policy := reconcile.Policy{MissingRule: reconcile.MissingRuleZero}

	cases := []struct {
		name string
		res  Resolution
	}{
		{"L1", Resolution{Choice: reconcile.ChoiceL1, L1Quantity: intp(3)}},
		{"L2", Resolution{Choice: reconcile.ChoiceL2, L2Quantity: intp(4)}},
		{"IGNORE", Resolution{Choice: reconcile.ChoiceIgnore, FinalQuantity: intp(5)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := seedInventory(t, db)
			diff := models.Diff{
				InventoryID: inv.ID,
				AssetName:   "Desk",
				L0Quantity:  5,
				L1Quantity:  3,
				Status:      string(reconcile.StatusDivergent),
			}
			require.NoError(t, db.Create(&diff).Error)
			require.NoError(t, svc.SaveResolution(ctx, diff.ID, tc.res))

			var got models.Diff
			require.NoError(t, db.First(&got, diff.ID).Error)
			require.NotNil(t, got.FinalQuantity)
			assert.Equal(t, reconcile.DeriveFinalQuantity(got.ToRecord(), policy), *got.FinalQuantity)
		})
	}
}

func TestService_HasDivergences(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db, zap.NewNop())
	ctx := context.Background()

	inv := seedInventory(t, db)
	seedSnapshot(t, db, inv.ID, "PAT-000001", "Desk", 5)
	seedRead(t, db, inv.ID, strp("PAT-000001"), "Desk", 5, false)
	_, err := svc.Recompute(ctx, inv.ID)
	require.NoError(t, err)

	has, err := svc.HasDivergences(ctx, inv.ID)
	require.NoError(t, err)
	assert.False(t, has)

	seedRead(t, db, inv.ID, strp("PAT-000002"), "Lamp", 1, true)
	_, err = svc.Recompute(ctx, inv.ID)
	require.NoError(t, err)

	has, err = svc.HasDivergences(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func intp(v int) *int { return &v }
