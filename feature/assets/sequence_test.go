package assets

import (
	"context"
	"testing"

	"patrimony-manager/feature/assets/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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
		&models.Area{},
		&models.Asset{},
		&models.Sequence{},
	))
	return db
}

func TestFormatAssetNumber(t *testing.T) {
	tests := []struct {
		name     string
		sequence int64
		format   string
		want     string
	}{
		{"default template", 1, "PAT-{seq}", "PAT-000001"},
		{"custom prefix", 42, "INV/{seq}", "INV/000042"},
		{"placeholder twice", 7, "{seq}-{seq}", "000007-000007"},
		{"no placeholder falls back", 9, "whatever", "PAT-000009"},
		{"empty format falls back", 3, "", "PAT-000003"},
		{"large value exceeds padding", 1234567, "PAT-{seq}", "PAT-1234567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAssetNumber(tt.sequence, tt.format))
		})
	}
}

func TestGenerator_Next(t *testing.T) {
	db := setupTestDB(t)
	gen := NewGenerator(db)
	ctx := context.Background()

	first, err := gen.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := gen.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)
}

func TestGenerator_NextNumber(t *testing.T) {
	db := setupTestDB(t)
	gen := NewGenerator(db)

	number, err := gen.NextNumber(context.Background(), "PAT-{seq}")
	require.NoError(t, err)
	assert.Equal(t, "PAT-000001", number)
}
