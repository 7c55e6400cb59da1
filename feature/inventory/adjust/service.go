package adjust

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"patrimony-manager/core/reconcile"
	"patrimony-manager/core/session"
	"patrimony-manager/feature/assets"
	assetmodels "patrimony-manager/feature/assets/models"
	"patrimony-manager/feature/inventory/compare"
	"patrimony-manager/feature/inventory/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service applies resolved diffs to the asset registry.
type Service struct {
	db      *gorm.DB
	logger  *zap.Logger
	policy  reconcile.Policy
	session session.Provider
	numbers *assets.Generator
	compare *compare.Service

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewService creates a new adjustment service.
func NewService(db *gorm.DB, logger *zap.Logger, policy reconcile.Policy, sess session.Provider, numbers *assets.Generator, cmp *compare.Service) *Service {
	return &Service{
		db:      db,
		logger:  logger,
		policy:  policy,
		session: sess,
		numbers: numbers,
		compare: cmp,
		locks:   make(map[uint]*sync.Mutex),
	}
}

// Result summarizes one committed adjustment.
type Result struct {
	Adjusted int
	Created  int
}

// Apply commits every resolved diff of the inventory onto the asset
// registry, appends one audit row per diff, marks the inventory finished
// and rebuilds the diff set for the now-closed state.
//
// Preconditions are checked before any write and each failure is a distinct
// error. All writes for the pass run in one transaction; on any failure
// nothing is persisted.
func (s *Service) Apply(ctx context.Context, inventoryID uint) (*Result, error) {
	lock := s.inventoryLock(inventoryID)
	lock.Lock()
	defer lock.Unlock()

	inv, diffs, err := s.checkPreconditions(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	plan, err := s.buildPlan(ctx, inv, diffs)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	actor := s.session.Current(ctx)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, action := range plan {
			if err := s.execute(tx, inv, action, actor, result); err != nil {
				return err
			}
		}

		now := time.Now()
		err := tx.Model(&models.Inventory{}).
			Where("id = ?", inv.ID).
			Updates(map[string]interface{}{
				"status":      models.StatusFinished,
				"finished_at": now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to finish inventory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Inventory adjusted",
		zap.Uint("inventory_id", inv.ID),
		zap.Int("adjusted", result.Adjusted),
		zap.Int("created", result.Created),
	)

	// The adjustment is durably committed at this point. A recompute
	// failure only leaves the diff view stale, so the result is returned
	// alongside the error.
	if _, err := s.compare.Recompute(ctx, inv.ID); err != nil {
		return result, fmt.Errorf("adjustment committed but recompute failed: %w", err)
	}
	return result, nil
}

// checkPreconditions validates the inventory is ready to close.
func (s *Service) checkPreconditions(ctx context.Context, inventoryID uint) (*models.Inventory, []models.Diff, error) {
	var inv models.Inventory
	err := s.db.WithContext(ctx).First(&inv, inventoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, models.ErrInventoryNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	if inv.IsFinished() {
		return nil, nil, models.ErrInventoryFinished
	}

	var diffs []models.Diff
	err = s.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("id ASC").
		Find(&diffs).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load diffs: %w", err)
	}
	if len(diffs) == 0 {
		return nil, nil, models.ErrNothingToAdjust
	}
	for _, diff := range diffs {
		if diff.ResolutionChoice == nil {
			return nil, nil, models.ErrIncompleteResolution
		}
	}
	return &inv, diffs, nil
}

// kind discriminates the planned write for one diff.
type kind int

const (
	// kindSkip records a NEW diff that will not create an asset.
	kindSkip kind = iota
	// kindCreate inserts a new asset for a NEW diff.
	kindCreate
	// kindUpdate changes the quantity of a known asset.
	kindUpdate
	// kindByNumber resolves the asset by number at execution time.
	kindByNumber
)

// action is one planned write. Actions execute strictly in plan order so a
// generated asset id exists before the diff update and audit row that
// reference it.
type action struct {
	kind     kind
	diff     models.Diff
	finalQty int
	number   *string
	areaID   *uint
}

// buildPlan turns the diff set into an ordered action list. It generates
// asset numbers for NEW diffs lacking one and fails before any registry
// write when a to-be-created item has no resolvable area.
func (s *Service) buildPlan(ctx context.Context, inv *models.Inventory, diffs []models.Diff) ([]action, error) {
	plan := make([]action, 0, len(diffs))

	for _, diff := range diffs {
		record := diff.ToRecord()
		finalQty := reconcile.DeriveFinalQuantity(record, s.policy)
		ignored := record.ResolutionChoice != nil && *record.ResolutionChoice == reconcile.ChoiceIgnore

		if record.Status == reconcile.StatusNew {
			// A NEW item without a number gets one as soon as the
			// policy allows creation, even when the item ends up
			// ignored, so the audit trail can still name it.
			number := diff.AssetNumber
			if number == nil && s.policy.AllowCreateNew {
				generated, err := s.numbers.NextNumber(ctx, s.policy.AssetNumberFormat)
				if err != nil {
					return nil, fmt.Errorf("failed to generate asset number: %w", err)
				}
				number = &generated
			}

			if !s.policy.AllowCreateNew || ignored {
				plan = append(plan, action{kind: kindSkip, diff: diff, number: number})
				continue
			}

			areaID := diff.AreaID
			if areaID == nil && inv.ScopeType == models.ScopeArea {
				areaID = inv.AreaID
			}
			if areaID == nil {
				return nil, models.ErrMissingArea
			}

			plan = append(plan, action{
				kind:     kindCreate,
				diff:     diff,
				finalQty: finalQty,
				number:   number,
				areaID:   areaID,
			})
			continue
		}

		if diff.AssetID != nil {
			plan = append(plan, action{kind: kindUpdate, diff: diff, finalQty: finalQty})
			continue
		}
		plan = append(plan, action{kind: kindByNumber, diff: diff, finalQty: finalQty})
	}

	return plan, nil
}

// execute runs one planned action inside the transaction.
func (s *Service) execute(tx *gorm.DB, inv *models.Inventory, a action, actor session.Session, result *Result) error {
	switch a.kind {
	case kindSkip:
		updates := map[string]interface{}{"final_quantity": 0}
		if a.number != nil {
			updates["asset_number"] = a.number
		}
		err := tx.Model(&models.Diff{}).
			Where("id = ?", a.diff.ID).
			Updates(updates).Error
		if err != nil {
			return fmt.Errorf("failed to record skipped diff: %w", err)
		}
		if a.number != nil {
			a.diff.AssetNumber = a.number
		}
		return s.appendLog(tx, inv, a.diff, 0, 0, decisionFor(a.diff), actor)

	case kindCreate:
		asset := assetmodels.Asset{
			AssetNumber: a.number,
			Name:        a.diff.AssetName,
			Quantity:    a.finalQty,
			AreaID:      *a.areaID,
		}
		if err := tx.Create(&asset).Error; err != nil {
			return fmt.Errorf("failed to create asset: %w", err)
		}

		err := tx.Model(&models.Diff{}).
			Where("id = ?", a.diff.ID).
			Updates(map[string]interface{}{
				"asset_id":       asset.ID,
				"asset_number":   a.number,
				"final_quantity": a.finalQty,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to link diff to created asset: %w", err)
		}

		a.diff.AssetID = &asset.ID
		a.diff.AssetNumber = a.number
		result.Created++
		return s.appendLog(tx, inv, a.diff, 0, a.finalQty, reconcile.DecisionCreated, actor)

	case kindUpdate:
		return s.applyToAsset(tx, inv, a, *a.diff.AssetID, actor, result)

	case kindByNumber:
		var asset assetmodels.Asset
		err := tx.
			Where("LOWER(asset_number) = LOWER(?)", derefString(a.diff.AssetNumber)).
			First(&asset).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The registry no longer has this number. Record the
			// outcome without touching any asset.
			err := tx.Model(&models.Diff{}).
				Where("id = ?", a.diff.ID).
				Update("final_quantity", a.finalQty).Error
			if err != nil {
				return fmt.Errorf("failed to record unmatched diff: %w", err)
			}
			return s.appendLog(tx, inv, a.diff, 0, a.finalQty, decisionFor(a.diff), actor)
		}
		if err != nil {
			return fmt.Errorf("failed to resolve asset by number: %w", err)
		}
		return s.applyToAsset(tx, inv, a, asset.ID, actor, result)
	}
	return fmt.Errorf("unknown adjustment action %d", a.kind)
}

// applyToAsset updates a known asset's quantity and records the change.
func (s *Service) applyToAsset(tx *gorm.DB, inv *models.Inventory, a action, assetID uint, actor session.Session, result *Result) error {
	var asset assetmodels.Asset
	if err := tx.First(&asset, assetID).Error; err != nil {
		return fmt.Errorf("failed to load asset %d: %w", assetID, err)
	}

	beforeQty := asset.Quantity
	err := tx.Model(&assetmodels.Asset{}).
		Where("id = ?", assetID).
		Update("quantity", a.finalQty).Error
	if err != nil {
		return fmt.Errorf("failed to update asset quantity: %w", err)
	}

	err = tx.Model(&models.Diff{}).
		Where("id = ?", a.diff.ID).
		Updates(map[string]interface{}{
			"asset_id":       assetID,
			"final_quantity": a.finalQty,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to record final quantity: %w", err)
	}

	a.diff.AssetID = &assetID
	result.Adjusted++
	return s.appendLog(tx, inv, a.diff, beforeQty, a.finalQty, decisionFor(a.diff), actor)
}

// appendLog writes one immutable audit row.
func (s *Service) appendLog(tx *gorm.DB, inv *models.Inventory, diff models.Diff, beforeQty, afterQty int, decision string, actor session.Session) error {
	entry := models.AdjustmentLog{
		InventoryID: inv.ID,
		AssetID:     diff.AssetID,
		AssetNumber: diff.AssetNumber,
		BeforeQty:   beforeQty,
		AfterQty:    afterQty,
		Decision:    decision,
		Note:        diff.ResolutionNote,
		UserID:      actor.UserID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}

// decisionFor names the committed decision after the operator's choice.
func decisionFor(diff models.Diff) string {
	if diff.ResolutionChoice != nil {
		return *diff.ResolutionChoice
	}
	return string(reconcile.ChoiceL1)
}

// inventoryLock serializes concurrent Apply calls for one inventory.
func (s *Service) inventoryLock(inventoryID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[inventoryID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[inventoryID] = lock
	}
	return lock
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
