package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	assetmodels "patrimony-manager/feature/assets/models"
	"patrimony-manager/feature/inventory/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles inventory lifecycle and counting-phase operations.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new inventory service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// NewInventory is the payload for Create.
type NewInventory struct {
	Name      string
	ScopeType string
	AreaID    *uint
}

// Create opens a new inventory and freezes the baseline snapshot of every
// in-scope asset. The inventory row and its snapshot items are written in
// one transaction so the baseline can never be partial.
func (s *Service) Create(ctx context.Context, payload NewInventory) (*models.Inventory, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, models.ErrNameRequired
	}

	scope := strings.ToUpper(strings.TrimSpace(payload.ScopeType))
	switch scope {
	case models.ScopeAll:
	case models.ScopeArea:
		if payload.AreaID == nil || *payload.AreaID == 0 {
			return nil, models.ErrAreaRequired
		}
	default:
		return nil, models.ErrInvalidScope
	}

	inv := models.Inventory{
		Name:      name,
		ScopeType: scope,
		AreaID:    payload.AreaID,
		Status:    models.StatusOpen,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&inv).Error; err != nil {
			return fmt.Errorf("failed to create inventory: %w", err)
		}

		query := tx.Model(&assetmodels.Asset{})
		if scope == models.ScopeArea {
			query = query.Where("area_id = ?", *payload.AreaID)
		}

		var inScope []assetmodels.Asset
		if err := query.Order("id ASC").Find(&inScope).Error; err != nil {
			return fmt.Errorf("failed to load assets for snapshot: %w", err)
		}

		for _, asset := range inScope {
			areaID := asset.AreaID
			item := models.SnapshotItem{
				InventoryID: inv.ID,
				AssetID:     asset.ID,
				AssetName:   asset.Name,
				AreaID:      &areaID,
				Quantity:    asset.Quantity,
			}
			if asset.AssetNumber != nil {
				item.AssetNumber = *asset.AssetNumber
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to snapshot asset %d: %w", asset.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Inventory created",
		zap.Uint("inventory_id", inv.ID),
		zap.String("scope", inv.ScopeType),
	)
	return &inv, nil
}

// GetByID loads one inventory.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Inventory, error) {
	var inv models.Inventory
	err := s.db.WithContext(ctx).First(&inv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrInventoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	return &inv, nil
}

// ListResult is one page of inventories plus the unpaged total.
type ListResult struct {
	Items []models.Inventory
	Total int64
}

// List returns a paginated inventory listing, newest first.
func (s *Service) List(ctx context.Context, page, pageSize int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Inventory{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count inventories: %w", err)
	}

	var items []models.Inventory
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list inventories: %w", err)
	}
	return &ListResult{Items: items, Total: total}, nil
}

// NewRead is the payload for AddRead.
type NewRead struct {
	AssetNumber *string
	AssetName   string
	AreaID      *uint
	Quantity    int
}

// AddRead records one counted item for an open inventory.
//
// When the number matches a registered asset, the read links to that asset
// and inherits its name and area; an AREA-scoped inventory rejects assets
// belonging to any other area. A number with no matching asset, or no number
// at all, records a new-item read, which requires a name and must not repeat
// an earlier new-item read with the same name and area.
func (s *Service) AddRead(ctx context.Context, inventoryID uint, payload NewRead) (*models.ReadItem, error) {
	inv, err := s.GetByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if inv.IsFinished() {
		return nil, models.ErrInventoryFinished
	}
	if payload.Quantity < 0 {
		return nil, models.ErrNegativeQuantity
	}

	read := models.ReadItem{
		InventoryID: inventoryID,
		Quantity:    payload.Quantity,
	}

	number := ""
	if payload.AssetNumber != nil {
		number = strings.TrimSpace(*payload.AssetNumber)
	}

	if number != "" {
		var count int64
		err := s.db.WithContext(ctx).Model(&models.ReadItem{}).
			Where("inventory_id = ? AND LOWER(asset_number) = LOWER(?)", inventoryID, number).
			Count(&count).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check for duplicate read: %w", err)
		}
		if count > 0 {
			return nil, models.ErrDuplicateRead
		}
		read.AssetNumber = &number
	}

	asset, err := s.lookupAsset(ctx, number)
	if err != nil {
		return nil, err
	}

	if asset != nil {
		if inv.ScopeType == models.ScopeArea && inv.AreaID != nil && asset.AreaID != *inv.AreaID {
			return nil, models.ErrOutOfScope
		}
		areaID := asset.AreaID
		read.AssetID = &asset.ID
		read.AssetName = asset.Name
		read.AreaID = &areaID
	} else {
		name := strings.TrimSpace(payload.AssetName)
		if name == "" {
			return nil, models.ErrNameRequired
		}
		if err := s.checkDuplicateNewItem(ctx, inventoryID, name, payload.AreaID); err != nil {
			return nil, err
		}
		read.AssetName = name
		read.AreaID = payload.AreaID
		read.IsNewItem = true
	}

	if err := s.db.WithContext(ctx).Create(&read).Error; err != nil {
		return nil, fmt.Errorf("failed to record read: %w", err)
	}
	return &read, nil
}

// UpdateReadQuantity replaces the counted quantity of one read item.
func (s *Service) UpdateReadQuantity(ctx context.Context, inventoryID, readID uint, quantity int) error {
	inv, err := s.GetByID(ctx, inventoryID)
	if err != nil {
		return err
	}
	if inv.IsFinished() {
		return models.ErrInventoryFinished
	}
	if quantity < 0 {
		return models.ErrNegativeQuantity
	}

	result := s.db.WithContext(ctx).Model(&models.ReadItem{}).
		Where("id = ? AND inventory_id = ?", readID, inventoryID).
		Update("quantity", quantity)
	if result.Error != nil {
		return fmt.Errorf("failed to update read quantity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrReadNotFound
	}
	return nil
}

// DeleteRead removes one read item from an open inventory.
func (s *Service) DeleteRead(ctx context.Context, inventoryID, readID uint) error {
	inv, err := s.GetByID(ctx, inventoryID)
	if err != nil {
		return err
	}
	if inv.IsFinished() {
		return models.ErrInventoryFinished
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND inventory_id = ?", readID, inventoryID).
		Delete(&models.ReadItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrReadNotFound
	}
	return nil
}

// ListReads returns every read item of an inventory in recording order.
func (s *Service) ListReads(ctx context.Context, inventoryID uint) ([]models.ReadItem, error) {
	if _, err := s.GetByID(ctx, inventoryID); err != nil {
		return nil, err
	}
	var reads []models.ReadItem
	err := s.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("id ASC").
		Find(&reads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reads: %w", err)
	}
	return reads, nil
}

// lookupAsset finds the registered asset for a number, if any.
func (s *Service) lookupAsset(ctx context.Context, number string) (*assetmodels.Asset, error) {
	if number == "" {
		return nil, nil
	}
	var asset assetmodels.Asset
	err := s.db.WithContext(ctx).
		Where("LOWER(asset_number) = LOWER(?)", number).
		First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up asset: %w", err)
	}
	return &asset, nil
}

// checkDuplicateNewItem rejects a second new-item read with the same name
// and area within one inventory.
func (s *Service) checkDuplicateNewItem(ctx context.Context, inventoryID uint, name string, areaID *uint) error {
	query := s.db.WithContext(ctx).Model(&models.ReadItem{}).
		Where("inventory_id = ? AND is_new_item = ? AND LOWER(asset_name) = LOWER(?)", inventoryID, true, name)
	if areaID != nil {
		query = query.Where("area_id = ?", *areaID)
	} else {
		query = query.Where("area_id IS NULL")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check for duplicate new item: %w", err)
	}
	if count > 0 {
		return models.ErrDuplicateNewItem
	}
	return nil
}
