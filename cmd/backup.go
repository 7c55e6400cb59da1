package cmd

import (
	"context"
	"fmt"

	"patrimony-manager/core/config"
	"patrimony-manager/core/database"
	"patrimony-manager/core/logger"
	"patrimony-manager/core/storage"
	"patrimony-manager/feature/backup"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var restoreObject string

// backupCmd exports the registry to object storage.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export the registry to object storage",
	Long: `Serializes every table into a JSON envelope and uploads it to the
configured bucket. Use --restore to replace the registry with a stored
backup instead.

Examples:
  # Export a fresh backup
  patrimony-manager backup

  # Restore a stored backup
  patrimony-manager backup --restore backups/20260830-120000.json`,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVar(&restoreObject, "restore", "", "Restore the given backup object instead of exporting")
	RootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to storage: %w", err)
	}

	svc := backup.NewService(db, client, cfg.Storage.Bucket, l)

	if restoreObject != "" {
		if err := svc.Restore(ctx, restoreObject); err != nil {
			return fmt.Errorf("failed to restore backup: %w", err)
		}
		l.Info("Backup restored", zap.String("object", restoreObject))
		return nil
	}

	objectName, err := svc.Export(ctx)
	if err != nil {
		return fmt.Errorf("failed to export backup: %w", err)
	}
	l.Info("Backup exported", zap.String("object", objectName))
	return nil
}
