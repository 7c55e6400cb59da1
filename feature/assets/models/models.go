package models

import "time"

// Area is an organizational area assets belong to.
type Area struct {
	ID          uint    `gorm:"column:id;primaryKey"`
	Name        string  `gorm:"column:name;size:120;not null"`
	Description *string `gorm:"column:description"`
	Active      bool    `gorm:"column:active;not null;default:true"`
	CreatedAt   time.Time
}

// TableName overrides the table name for Area.
func (Area) TableName() string {
	return "areas"
}

// Asset is one registered physical asset.
//
// AssetNumber may be nil for assets registered without a label; when present
// it is unique case-insensitively, which the service enforces with a
// LOWER() lookup rather than a collation so sqlite and mysql behave the
// same way.
type Asset struct {
	ID          uint     `gorm:"column:id;primaryKey"`
	AssetNumber *string  `gorm:"column:asset_number;size:60;uniqueIndex"`
	Name        string   `gorm:"column:name;size:120;not null"`
	Description *string  `gorm:"column:description"`
	Quantity    int      `gorm:"column:quantity;not null;default:0"`
	UnitValue   *float64 `gorm:"column:unit_value"`
	AreaID      uint     `gorm:"column:area_id;index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the table name for Asset.
func (Asset) TableName() string {
	return "asset_items"
}

// Sequence backs the asset number generator.
type Sequence struct {
	Name  string `gorm:"column:name;primaryKey;size:60"`
	Value int64  `gorm:"column:value;not null"`
}

// TableName overrides the table name for Sequence.
func (Sequence) TableName() string {
	return "sequences"
}
