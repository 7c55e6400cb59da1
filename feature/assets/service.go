package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"patrimony-manager/feature/assets/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles asset registry operations.
type Service struct {
	db      *gorm.DB
	logger  *zap.Logger
	numbers *Generator
}

// NewService creates a new asset service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		db:      db,
		logger:  logger,
		numbers: NewGenerator(db),
	}
}

// Numbers exposes the asset number generator for collaborators that need
// to mint numbers outside asset creation (the adjustment pre-pass).
func (s *Service) Numbers() *Generator {
	return s.numbers
}

// NewAsset is the payload for Create.
type NewAsset struct {
	AssetNumber        *string
	Name               string
	Description        *string
	Quantity           int
	UnitValue          *float64
	AreaID             uint
	AutoGenerateNumber bool
	NumberFormat       string
}

// Create validates and registers a new asset.
func (s *Service) Create(ctx context.Context, payload NewAsset) (*models.Asset, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if payload.AreaID == 0 {
		return nil, ErrAreaRequired
	}
	if payload.Quantity < 0 {
		return nil, ErrNegativeQuantity
	}
	if payload.UnitValue != nil && *payload.UnitValue < 0 {
		return nil, ErrNegativeUnitValue
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Area{}).Where("id = ?", payload.AreaID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check area: %w", err)
	}
	if count == 0 {
		return nil, ErrAreaNotFound
	}

	var number *string
	if payload.AutoGenerateNumber {
		generated, err := s.numbers.NextNumber(ctx, payload.NumberFormat)
		if err != nil {
			return nil, fmt.Errorf("failed to generate asset number: %w", err)
		}
		number = &generated
	} else if payload.AssetNumber != nil {
		trimmed := strings.TrimSpace(*payload.AssetNumber)
		if trimmed != "" {
			if err := s.ensureUniqueNumber(ctx, trimmed, 0); err != nil {
				return nil, err
			}
			number = &trimmed
		}
	}

	asset := models.Asset{
		AssetNumber: number,
		Name:        name,
		Description: payload.Description,
		Quantity:    payload.Quantity,
		UnitValue:   payload.UnitValue,
		AreaID:      payload.AreaID,
	}
	if err := s.db.WithContext(ctx).Create(&asset).Error; err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	s.logger.Info("Asset created",
		zap.Uint("asset_id", asset.ID),
		zap.Stringp("asset_number", asset.AssetNumber),
	)
	return &asset, nil
}

// GetByID loads one asset.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Asset, error) {
	var asset models.Asset
	err := s.db.WithContext(ctx).First(&asset, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}
	return &asset, nil
}

// GetByNumber loads one asset by its number, case-insensitively.
func (s *Service) GetByNumber(ctx context.Context, number string) (*models.Asset, error) {
	var asset models.Asset
	err := s.db.WithContext(ctx).
		Where("LOWER(asset_number) = LOWER(?)", strings.TrimSpace(number)).
		First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load asset by number: %w", err)
	}
	return &asset, nil
}

// Filters narrows and pages the asset listing.
type Filters struct {
	SearchName   string
	SearchNumber string
	AreaID       *uint
	Page         int
	PageSize     int
}

// ListResult is one page of assets plus the unpaged total.
type ListResult struct {
	Items []models.Asset
	Total int64
}

// List returns a filtered, paginated asset listing ordered by name.
func (s *Service) List(ctx context.Context, filters Filters) (*ListResult, error) {
	query := s.db.WithContext(ctx).Model(&models.Asset{})

	if name := strings.TrimSpace(filters.SearchName); name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if number := strings.TrimSpace(filters.SearchNumber); number != "" {
		query = query.Where("LOWER(asset_number) LIKE ?", "%"+strings.ToLower(number)+"%")
	}
	if filters.AreaID != nil {
		query = query.Where("area_id = ?", *filters.AreaID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count assets: %w", err)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var items []models.Asset
	err := query.
		Order("LOWER(name) ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	return &ListResult{Items: items, Total: total}, nil
}

// CreateArea registers a new area.
func (s *Service) CreateArea(ctx context.Context, name string, description *string) (*models.Area, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrNameRequired
	}
	area := models.Area{Name: trimmed, Description: description, Active: true}
	if err := s.db.WithContext(ctx).Create(&area).Error; err != nil {
		return nil, fmt.Errorf("failed to create area: %w", err)
	}
	return &area, nil
}

// ListAreas returns every active area ordered by name.
func (s *Service) ListAreas(ctx context.Context) ([]models.Area, error) {
	var areas []models.Area
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("LOWER(name) ASC").
		Find(&areas).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}
	return areas, nil
}

// ensureUniqueNumber rejects numbers already taken by another asset.
func (s *Service) ensureUniqueNumber(ctx context.Context, number string, ignoreID uint) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Asset{}).
		Where("LOWER(asset_number) = LOWER(?) AND id != ?", number, ignoreID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check asset number: %w", err)
	}
	if count > 0 {
		return ErrDuplicateNumber
	}
	return nil
}
