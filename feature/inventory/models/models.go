package models

import (
	"time"

	"patrimony-manager/core/reconcile"
)

// Inventory scope types.
const (
	ScopeAll  = "ALL"
	ScopeArea = "AREA"
)

// Inventory statuses. Finished is terminal: no reads are accepted and no
// diff may be mutated afterwards.
const (
	StatusOpen     = "open"
	StatusFinished = "finished"
)

// Inventory is one counting campaign over the registry or a single area.
type Inventory struct {
	ID         uint       `gorm:"column:id;primaryKey"`
	Name       string     `gorm:"column:name;size:120;not null"`
	ScopeType  string     `gorm:"column:scope_type;size:10;not null"`
	AreaID     *uint      `gorm:"column:area_id"`
	Status     string     `gorm:"column:status;size:10;not null;default:open"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	FinishedAt *time.Time `gorm:"column:finished_at"`
}

// TableName overrides the table name for Inventory.
func (Inventory) TableName() string {
	return "inventories"
}

// IsFinished reports whether the inventory reached its terminal state.
func (i Inventory) IsFinished() bool {
	return i.Status == StatusFinished
}

// SnapshotItem is the immutable L0 copy of one asset at inventory creation.
type SnapshotItem struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	InventoryID uint      `gorm:"column:inventory_id;index;not null"`
	AssetID     uint      `gorm:"column:asset_id;not null"`
	AssetNumber string    `gorm:"column:asset_number;size:60"`
	AssetName   string    `gorm:"column:asset_name;size:120;not null"`
	AreaID      *uint     `gorm:"column:area_id"`
	Quantity    int       `gorm:"column:quantity;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name for SnapshotItem.
func (SnapshotItem) TableName() string {
	return "inventory_snapshot_items"
}

// ToRow converts the stored snapshot item into the pure builder's input.
func (s SnapshotItem) ToRow() reconcile.SnapshotRow {
	return reconcile.SnapshotRow{
		AssetID:     s.AssetID,
		AssetNumber: s.AssetNumber,
		AssetName:   s.AssetName,
		AreaID:      s.AreaID,
		Quantity:    s.Quantity,
	}
}

// ReadItem is one operator-recorded count (L1).
type ReadItem struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	InventoryID uint      `gorm:"column:inventory_id;index;not null"`
	AssetID     *uint     `gorm:"column:asset_id"`
	AssetNumber *string   `gorm:"column:asset_number;size:60"`
	AssetName   string    `gorm:"column:asset_name;size:120;not null"`
	AreaID      *uint     `gorm:"column:area_id"`
	IsNewItem   bool      `gorm:"column:is_new_item;not null;default:false"`
	Quantity    int       `gorm:"column:quantity;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name for ReadItem.
func (ReadItem) TableName() string {
	return "inventory_read_items"
}

// ToRow converts the stored read item into the pure builder's input.
func (r ReadItem) ToRow() reconcile.ReadRow {
	return reconcile.ReadRow{
		AssetID:     r.AssetID,
		AssetNumber: r.AssetNumber,
		AssetName:   r.AssetName,
		AreaID:      r.AreaID,
		IsNewItem:   r.IsNewItem,
		Quantity:    r.Quantity,
	}
}

// Diff is one persisted reconciliation record. The full set for an
// inventory is rebuilt wholesale on every recompute.
type Diff struct {
	ID               uint      `gorm:"column:id;primaryKey"`
	InventoryID      uint      `gorm:"column:inventory_id;index;not null"`
	AssetID          *uint     `gorm:"column:asset_id"`
	AssetNumber      *string   `gorm:"column:asset_number;size:60"`
	AssetName        string    `gorm:"column:asset_name;size:120;not null"`
	AreaID           *uint     `gorm:"column:area_id"`
	L0Quantity       int       `gorm:"column:l0_quantity;not null"`
	L1Quantity       int       `gorm:"column:l1_quantity;not null"`
	L2Quantity       *int      `gorm:"column:l2_quantity"`
	FinalQuantity    *int      `gorm:"column:final_quantity"`
	ResolutionChoice *string   `gorm:"column:resolution_choice;size:10"`
	ResolutionNote   *string   `gorm:"column:resolution_note;size:255"`
	Status           string    `gorm:"column:status;size:10;not null"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name for Diff.
func (Diff) TableName() string {
	return "inventory_diffs"
}

// ToRecord converts the persisted diff into the pure core's representation.
func (d Diff) ToRecord() reconcile.Diff {
	var choice *reconcile.Choice
	if d.ResolutionChoice != nil {
		c := reconcile.Choice(*d.ResolutionChoice)
		choice = &c
	}
	return reconcile.Diff{
		AssetID:          d.AssetID,
		AssetNumber:      d.AssetNumber,
		AssetName:        d.AssetName,
		AreaID:           d.AreaID,
		L0Quantity:       d.L0Quantity,
		L1Quantity:       d.L1Quantity,
		L2Quantity:       d.L2Quantity,
		FinalQuantity:    d.FinalQuantity,
		ResolutionChoice: choice,
		ResolutionNote:   d.ResolutionNote,
		Status:           reconcile.Status(d.Status),
	}
}

// NewDiff materializes a freshly built diff record for persistence.
func NewDiff(inventoryID uint, record reconcile.Diff) Diff {
	var choice *string
	if record.ResolutionChoice != nil {
		c := string(*record.ResolutionChoice)
		choice = &c
	}
	return Diff{
		InventoryID:      inventoryID,
		AssetID:          record.AssetID,
		AssetNumber:      record.AssetNumber,
		AssetName:        record.AssetName,
		AreaID:           record.AreaID,
		L0Quantity:       record.L0Quantity,
		L1Quantity:       record.L1Quantity,
		L2Quantity:       record.L2Quantity,
		FinalQuantity:    record.FinalQuantity,
		ResolutionChoice: choice,
		ResolutionNote:   record.ResolutionNote,
		Status:           string(record.Status),
	}
}

// AdjustmentLog is one immutable audit row per committed change.
type AdjustmentLog struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	InventoryID uint      `gorm:"column:inventory_id;index;not null"`
	AssetID     *uint     `gorm:"column:asset_id"`
	AssetNumber *string   `gorm:"column:asset_number;size:60"`
	BeforeQty   int       `gorm:"column:before_qty;not null"`
	AfterQty    int       `gorm:"column:after_qty;not null"`
	Decision    string    `gorm:"column:decision;size:10;not null"`
	Note        *string   `gorm:"column:note;size:255"`
	UserID      *uint     `gorm:"column:user_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name for AdjustmentLog.
func (AdjustmentLog) TableName() string {
	return "inventory_adjustment_logs"
}
