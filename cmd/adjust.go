package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"patrimony-manager/core/config"
	"patrimony-manager/core/database"
	"patrimony-manager/core/logger"
	"patrimony-manager/core/session"
	"patrimony-manager/feature/assets"
	"patrimony-manager/feature/inventory/adjust"
	"patrimony-manager/feature/inventory/compare"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var adjustYesConfirm bool

// adjustCmd applies a fully resolved inventory back onto the registry.
var adjustCmd = &cobra.Command{
	Use:   "adjust <inventory-id>",
	Short: "Apply resolved diffs and close an inventory",
	Long: `Applies every resolved diff of an inventory onto the asset registry,
writes the audit trail and marks the inventory finished. The inventory must
have all its divergences resolved first.

Examples:
  # Apply with interactive confirmation
  patrimony-manager adjust 3

  # Apply with auto-confirm (non-interactive)
  patrimony-manager adjust 3 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runAdjust,
}

func init() {
	adjustCmd.Flags().BoolVar(&adjustYesConfirm, "yes", false, "Auto-confirm the adjustment (non-interactive)")
	RootCmd.AddCommand(adjustCmd)
}

func runAdjust(cmd *cobra.Command, args []string) error {
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

	if !confirmAdjustment() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	numbers := assets.NewGenerator(db)
	cmp := compare.NewService(db, l)
	sess := session.ContextProvider{Fallback: cfg.Session}
	svc := adjust.NewService(db, l, cfg.Policy, sess, numbers, cmp)

	result, err := svc.Apply(ctx, inventoryID)
	if err != nil {
		return fmt.Errorf("failed to apply adjustments: %w", err)
	}

	l.Info("Adjustment applied",
		zap.Uint("inventory_id", inventoryID),
		zap.Int("adjusted", result.Adjusted),
		zap.Int("created", result.Created),
	)
	return nil
}

// confirmAdjustment prompts the user for confirmation or uses --yes.
func confirmAdjustment() bool {
	if adjustYesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Adjusting writes quantities into the registry and closes the inventory. Type 'yes' to confirm: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}

// parseIDArg parses a positive integer command argument.
func parseIDArg(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid inventory id %q", raw)
	}
	return uint(id), nil
}
