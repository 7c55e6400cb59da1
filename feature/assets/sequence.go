package assets

import (
	"context"
	"fmt"
	"strings"

	"patrimony-manager/feature/assets/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// assetSequenceKey is the sequences-table row backing asset numbering.
const assetSequenceKey = "asset_number"

// sequencePad is the zero-padding width of generated numbers.
const sequencePad = 6

// Generator produces unique asset numbers from a database-backed sequence.
type Generator struct {
	db *gorm.DB
}

// NewGenerator creates a sequence-backed number generator.
func NewGenerator(db *gorm.DB) *Generator {
	return &Generator{db: db}
}

// Next increments the asset-number sequence and returns the new value.
// The increment runs in its own transaction so a later rollback of the
// caller's work never reuses a number.
func (g *Generator) Next(ctx context.Context) (int64, error) {
	var value int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.Sequence{Name: assetSequenceKey, Value: 0}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("failed to seed sequence: %w", err)
		}

		result := tx.Model(&models.Sequence{}).
			Where("name = ?", assetSequenceKey).
			Update("value", gorm.Expr("value + 1"))
		if result.Error != nil {
			return fmt.Errorf("failed to increment sequence: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("sequence %s not found after seeding", assetSequenceKey)
		}

		var seq models.Sequence
		if err := tx.First(&seq, "name = ?", assetSequenceKey).Error; err != nil {
			return fmt.Errorf("failed to read sequence: %w", err)
		}
		value = seq.Value
		return nil
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

// NextNumber returns the next formatted asset number.
func (g *Generator) NextNumber(ctx context.Context, format string) (string, error) {
	value, err := g.Next(ctx)
	if err != nil {
		return "", err
	}
	return FormatAssetNumber(value, format), nil
}

// FormatAssetNumber renders a sequence value using the configured template.
// The {seq} placeholder is replaced with the zero-padded value; templates
// without a placeholder fall back to the PAT- prefix.
func FormatAssetNumber(sequence int64, format string) string {
	padded := fmt.Sprintf("%0*d", sequencePad, sequence)
	if strings.Contains(format, "{seq}") {
		return strings.ReplaceAll(format, "{seq}", padded)
	}
	return "PAT-" + padded
}
