package inventory

import (
	"patrimony-manager/core/reconcile"
	"patrimony-manager/core/session"
	"patrimony-manager/feature/assets"
	"patrimony-manager/feature/inventory/adjust"
	"patrimony-manager/feature/inventory/compare"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature wires the inventory lifecycle, compare and adjust services into
// the application loader.
type Feature struct {
	service  *Service
	compare  *compare.Service
	adjust   *adjust.Service
	logger   *zap.Logger
	pageSize int
}

// NewFeature creates the inventory feature.
func NewFeature(db *gorm.DB, logger *zap.Logger, policy reconcile.Policy, sess session.Provider, numbers *assets.Generator, pageSize int) *Feature {
	cmp := compare.NewService(db, logger)
	return &Feature{
		service:  NewService(db, logger),
		compare:  cmp,
		adjust:   adjust.NewService(db, logger, policy, sess, numbers, cmp),
		logger:   logger,
		pageSize: pageSize,
	}
}

// Name returns the unique feature name.
func (f *Feature) Name() string {
	return "inventory"
}

// IsEnabled reports whether the feature should be loaded.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	NewHandler(f.service, f.compare, f.adjust, f.logger, f.pageSize).RegisterRoutes(app)
	return nil
}

// Service exposes the lifecycle service for other features.
func (f *Feature) Service() *Service {
	return f.service
}

// Compare exposes the compare service for CLI front-ends.
func (f *Feature) Compare() *compare.Service {
	return f.compare
}

// Adjust exposes the adjustment service for CLI front-ends.
func (f *Feature) Adjust() *adjust.Service {
	return f.adjust
}
