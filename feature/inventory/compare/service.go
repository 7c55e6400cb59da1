package compare

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"patrimony-manager/core/reconcile"
	"patrimony-manager/feature/inventory/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service rebuilds, queries and mutates the diff set of an inventory.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new compare service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// RecomputeResult summarizes one diff rebuild.
type RecomputeResult struct {
	Total     int
	Divergent int
}

// Recompute rebuilds the whole diff set of an inventory from its snapshot
// and read items. Existing diffs are deleted and the fresh set inserted in
// one transaction.
//
// Rebuilding discards previously saved second counts and resolutions.
// Callers that need to preserve in-progress resolution work must capture it
// before calling Recompute.
func (s *Service) Recompute(ctx context.Context, inventoryID uint) (*RecomputeResult, error) {
	if err := s.ensureExists(ctx, inventoryID); err != nil {
		return nil, err
	}

	var snapshots []models.SnapshotItem
	err := s.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Find(&snapshots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot items: %w", err)
	}

	var reads []models.ReadItem
	err = s.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Find(&reads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load read items: %w", err)
	}

	snapshotRows := make([]reconcile.SnapshotRow, len(snapshots))
	for i, item := range snapshots {
		snapshotRows[i] = item.ToRow()
	}
	readRows := make([]reconcile.ReadRow, len(reads))
	for i, item := range reads {
		readRows[i] = item.ToRow()
	}

	records := reconcile.BuildDiffs(snapshotRows, readRows)

	rows := make([]models.Diff, len(records))
	for i, record := range records {
		rows[i] = models.NewDiff(inventoryID, record)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("inventory_id = ?", inventoryID).Delete(&models.Diff{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous diffs: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert diffs: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	divergent := 0
	for _, record := range records {
		if record.Status != reconcile.StatusOK {
			divergent++
		}
	}

	s.logger.Info("Diffs recomputed",
		zap.Uint("inventory_id", inventoryID),
		zap.Int("total", len(records)),
		zap.Int("divergent", divergent),
	)
	return &RecomputeResult{Total: len(records), Divergent: divergent}, nil
}

// Filters narrows and pages the diff listing.
type Filters struct {
	OnlyDivergent bool
	Search        string
	Page          int
	PageSize      int
}

// ListResult is one page of diffs plus the unpaged counters.
type ListResult struct {
	Items     []models.Diff
	Total     int64
	Divergent int64
}

// List returns a filtered, paginated diff listing ordered by asset name.
// Search matches name or number case-insensitively as a substring.
func (s *Service) List(ctx context.Context, inventoryID uint, filters Filters) (*ListResult, error) {
	if err := s.ensureExists(ctx, inventoryID); err != nil {
		return nil, err
	}

	base := s.db.WithContext(ctx).Model(&models.Diff{}).
		Where("inventory_id = ?", inventoryID)

	var divergent int64
	err := base.Session(&gorm.Session{}).
		Where("status != ?", string(reconcile.StatusOK)).
		Count(&divergent).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count divergent diffs: %w", err)
	}

	query := base.Session(&gorm.Session{})
	if filters.OnlyDivergent {
		query = query.Where("status != ?", string(reconcile.StatusOK))
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(asset_name) LIKE ? OR LOWER(asset_number) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count diffs: %w", err)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var items []models.Diff
	err = query.
		Order("LOWER(asset_name) ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list diffs: %w", err)
	}

	return &ListResult{Items: items, Total: total, Divergent: divergent}, nil
}

// UpdateSecondCount records the second-round quantity of one diff.
//
// The final quantity follows conditionally: a diff already resolved as L2
// takes the new value, an unresolved diff with no final yet is seeded with
// it, and any other explicit resolution is left untouched.
func (s *Service) UpdateSecondCount(ctx context.Context, diffID uint, quantity int) error {
	diff, err := s.loadDiff(ctx, diffID)
	if err != nil {
		return err
	}
	if err := s.ensureOpen(ctx, diff.InventoryID); err != nil {
		return err
	}

	updates := map[string]interface{}{"l2_quantity": quantity}
	switch {
	case diff.ResolutionChoice != nil && *diff.ResolutionChoice == string(reconcile.ChoiceL2):
		updates["final_quantity"] = quantity
	case diff.FinalQuantity == nil:
		updates["final_quantity"] = quantity
	}

	err = s.db.WithContext(ctx).Model(&models.Diff{}).
		Where("id = ?", diffID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update second count: %w", err)
	}
	return nil
}

// Resolution is the payload for SaveResolution.
type Resolution struct {
	Choice        reconcile.Choice
	FinalQuantity *int
	L1Quantity    *int
	L2Quantity    *int
	Note          *string
}

// SaveResolution stores the operator's choice for one diff. The stored
// final quantity is the quantity of the chosen round when supplied, the
// explicit final otherwise, and zero when neither is present.
func (s *Service) SaveResolution(ctx context.Context, diffID uint, res Resolution) error {
	if !res.Choice.IsValid() {
		return models.ErrInvalidChoice
	}

	diff, err := s.loadDiff(ctx, diffID)
	if err != nil {
		return err
	}
	if err := s.ensureOpen(ctx, diff.InventoryID); err != nil {
		return err
	}

	final := res.FinalQuantity
	switch res.Choice {
	case reconcile.ChoiceL2:
		if res.L2Quantity != nil {
			final = res.L2Quantity
		}
	case reconcile.ChoiceL1:
		if res.L1Quantity != nil {
			final = res.L1Quantity
		}
	}
	if final == nil {
		zero := 0
		final = &zero
	}

	updates := map[string]interface{}{
		"resolution_choice": string(res.Choice),
		"final_quantity":    *final,
		"resolution_note":   res.Note,
	}
	if res.L2Quantity != nil {
		updates["l2_quantity"] = *res.L2Quantity
	}

	err = s.db.WithContext(ctx).Model(&models.Diff{}).
		Where("id = ?", diffID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to save resolution: %w", err)
	}
	return nil
}

// HasDivergences reports whether any diff of the inventory is not OK.
func (s *Service) HasDivergences(ctx context.Context, inventoryID uint) (bool, error) {
	if err := s.ensureExists(ctx, inventoryID); err != nil {
		return false, err
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Diff{}).
		Where("inventory_id = ? AND status != ?", inventoryID, string(reconcile.StatusOK)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count divergent diffs: %w", err)
	}
	return count > 0, nil
}

// loadDiff fetches one diff row.
func (s *Service) loadDiff(ctx context.Context, diffID uint) (*models.Diff, error) {
	var diff models.Diff
	err := s.db.WithContext(ctx).First(&diff, diffID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrDiffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load diff: %w", err)
	}
	return &diff, nil
}

// ensureExists fails when the inventory is unknown.
func (s *Service) ensureExists(ctx context.Context, inventoryID uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Inventory{}).
		Where("id = ?", inventoryID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check inventory: %w", err)
	}
	if count == 0 {
		return models.ErrInventoryNotFound
	}
	return nil
}

// ensureOpen refuses mutations on finished inventories.
func (s *Service) ensureOpen(ctx context.Context, inventoryID uint) error {
	var inv models.Inventory
	err := s.db.WithContext(ctx).First(&inv, inventoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrInventoryNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}
	if inv.IsFinished() {
		return models.ErrInventoryFinished
	}
	return nil
}
