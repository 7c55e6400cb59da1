package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"patrimony-manager/core/storage"
	assetmodels "patrimony-manager/feature/assets/models"
	invmodels "patrimony-manager/feature/inventory/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// envelopeVersion guards against restoring an incompatible export.
const envelopeVersion = 1

// objectPrefix scopes backup objects inside the bucket.
const objectPrefix = "backups/"

// Envelope is the serialized form of the whole registry.
type Envelope struct {
	Version     int                       `json:"version"`
	CreatedAt   time.Time                 `json:"created_at"`
	Areas       []assetmodels.Area        `json:"areas"`
	Assets      []assetmodels.Asset       `json:"assets"`
	Sequences   []assetmodels.Sequence    `json:"sequences"`
	Inventories []invmodels.Inventory     `json:"inventories"`
	Snapshots   []invmodels.SnapshotItem  `json:"snapshots"`
	Reads       []invmodels.ReadItem      `json:"reads"`
	Diffs       []invmodels.Diff          `json:"diffs"`
	Logs        []invmodels.AdjustmentLog `json:"logs"`
}

// Service exports and restores registry backups.
type Service struct {
	db      *gorm.DB
	storage storage.Client
	bucket  string
	logger  *zap.Logger
}

// NewService creates a new backup service.
func NewService(db *gorm.DB, client storage.Client, bucket string, logger *zap.Logger) *Service {
	return &Service{db: db, storage: client, bucket: bucket, logger: logger}
}

// Export serializes every table and uploads the envelope. The object name
// is returned for later restore.
func (s *Service) Export(ctx context.Context) (string, error) {
	envelope, err := s.collect(ctx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}

	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("%s%s.json", objectPrefix, envelope.CreatedAt.UTC().Format("20060102-150405"))
	_, err = s.storage.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to upload backup: %w", err)
	}

	s.logger.Info("Backup exported",
		zap.String("object", objectName),
		zap.Int("assets", len(envelope.Assets)),
		zap.Int("inventories", len(envelope.Inventories)),
	)
	return objectName, nil
}

// Restore downloads an envelope and replaces the whole registry with its
// contents in one transaction.
func (s *Service) Restore(ctx context.Context, objectName string) error {
	reader, err := s.storage.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to download backup: %w", err)
	}
	defer reader.Close()

	var envelope Envelope
	if err := json.NewDecoder(reader).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if envelope.Version != envelopeVersion {
		return fmt.Errorf("unsupported backup version %d", envelope.Version)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wipe := []any{
			&invmodels.AdjustmentLog{},
			&invmodels.Diff{},
			&invmodels.ReadItem{},
			&invmodels.SnapshotItem{},
			&invmodels.Inventory{},
			&assetmodels.Asset{},
			&assetmodels.Area{},
			&assetmodels.Sequence{},
		}
		for _, model := range wipe {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear table: %w", err)
			}
		}

		if err := insertAll(tx, envelope.Areas); err != nil {
			return err
		}
		if err := insertAll(tx, envelope.Assets); err != nil {
			return err
		}
		if err := insertAll(tx, envelope.Sequences); err != nil {
			return err
		}
		if err := insertAll(tx, envelope.Inventories); err != nil {
			return err
		}
		if err := insertAll(tx, envelope.Snapshots); err != nil {
			return err
		}
		if err := insertAll(tx, envelope.Reads); err != nil {
			return err
		}
		if err := insertAll(tx, envelope.Diffs); err != nil {
			return err
		}
		return insertAll(tx, envelope.Logs)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Backup restored", zap.String("object", objectName))
	return nil
}

// List returns the available backup object names, newest first.
func (s *Service) List(ctx context.Context) ([]string, error) {
	var names []string
	for info := range s.storage.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: objectPrefix}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list backups: %w", info.Err)
		}
		names = append(names, info.Key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// collect reads every table into one envelope.
func (s *Service) collect(ctx context.Context) (*Envelope, error) {
	envelope := &Envelope{Version: envelopeVersion, CreatedAt: time.Now()}

	loads := []struct {
		name string
		dest any
	}{
		{"areas", &envelope.Areas},
		{"assets", &envelope.Assets},
		{"sequences", &envelope.Sequences},
		{"inventories", &envelope.Inventories},
		{"snapshot items", &envelope.Snapshots},
		{"read items", &envelope.Reads},
		{"diffs", &envelope.Diffs},
		{"adjustment logs", &envelope.Logs},
	}
	for _, load := range loads {
		if err := s.db.WithContext(ctx).Find(load.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to collect %s: %w", load.name, err)
		}
	}
	return envelope, nil
}

// ensureBucket creates the backup bucket on first use.
func (s *Service) ensureBucket(ctx context.Context) error {
	exists, err := s.storage.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.storage.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// insertAll bulk-inserts one table's rows, keeping exported ids.
func insertAll[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to restore rows: %w", err)
	}
	return nil
}
