package backup

import (
	"patrimony-manager/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature wires backup export and restore into the application loader.
type Feature struct {
	service *Service
	logger  *zap.Logger
	enabled bool
}

// NewFeature creates the backup feature. It stays disabled when no storage
// client is configured.
func NewFeature(db *gorm.DB, client storage.Client, bucket string, logger *zap.Logger) *Feature {
	return &Feature{
		service: NewService(db, client, bucket, logger),
		logger:  logger,
		enabled: client != nil,
	}
}

// Name returns the unique feature name.
func (f *Feature) Name() string {
	return "backup"
}

// IsEnabled reports whether the feature should be loaded.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	NewHandler(f.service, f.logger).RegisterRoutes(app)
	return nil
}

// Service exposes the backup service for CLI front-ends.
func (f *Feature) Service() *Service {
	return f.service
}
