package cmd

import (
	"context"
	"fmt"

	"patrimony-manager/core/config"
	"patrimony-manager/core/database"
	"patrimony-manager/core/logger"
	"patrimony-manager/feature/inventory/compare"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var compareOnlyDivergent bool

// compareCmd rebuilds and reports the diff set of one inventory.
var compareCmd = &cobra.Command{
	Use:   "compare <inventory-id>",
	Short: "Recompute and report the diffs of an inventory",
	Long: `Rebuilds the reconciliation diffs of an inventory from its baseline
snapshot and counted readings, then prints a summary report.

Rebuilding discards previously saved second counts and resolutions.

Examples:
  # Recompute and summarize
  patrimony-manager compare 3

  # Also list the divergent records
  patrimony-manager compare 3 --divergent`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().BoolVar(&compareOnlyDivergent, "divergent", false, "List the divergent records after the summary")
	RootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	inventoryID, err := parseIDArg(args[0])
	if err != nil {
		return err
	}

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

	svc := compare.NewService(db, l)

	result, err := svc.Recompute(ctx, inventoryID)
	if err != nil {
		return fmt.Errorf("failed to recompute diffs: %w", err)
	}

	l.Info("Comparison report",
		zap.Uint("inventory_id", inventoryID),
		zap.Int("total", result.Total),
		zap.Int("divergent", result.Divergent),
	)

	if !compareOnlyDivergent {
		return nil
	}

	listing, err := svc.List(ctx, inventoryID, compare.Filters{
		OnlyDivergent: true,
		PageSize:      result.Total + 1,
	})
	if err != nil {
		return fmt.Errorf("failed to list divergences: %w", err)
	}
	for _, diff := range listing.Items {
		number := ""
		if diff.AssetNumber != nil {
			number = *diff.AssetNumber
		}
		l.Info("Divergent record",
			zap.String("status", diff.Status),
			zap.String("number", number),
			zap.String("name", diff.AssetName),
			zap.Int("l0", diff.L0Quantity),
			zap.Int("l1", diff.L1Quantity),
		)
	}
	return nil
}
