package assets

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature wires the asset registry into the application loader.
type Feature struct {
	service  *Service
	logger   *zap.Logger
	pageSize int
}

// NewFeature creates the assets feature.
func NewFeature(db *gorm.DB, logger *zap.Logger, pageSize int) *Feature {
	return &Feature{
		service:  NewService(db, logger),
		logger:   logger,
		pageSize: pageSize,
	}
}

// Name returns the unique feature name.
func (f *Feature) Name() string {
	return "assets"
}

// IsEnabled reports whether the feature should be loaded.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	NewHandler(f.service, f.logger, f.pageSize).RegisterRoutes(app)
	return nil
}

// Service exposes the underlying service for other features.
func (f *Feature) Service() *Service {
	return f.service
}
