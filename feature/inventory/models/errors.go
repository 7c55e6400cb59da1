package models

import "errors"

// Sentinel errors shared by the inventory feature and its subpackages.
var (
	ErrInventoryNotFound    = errors.New("inventory not found")
	ErrDiffNotFound         = errors.New("diff not found")
	ErrReadNotFound         = errors.New("read item not found")
	ErrInventoryFinished    = errors.New("inventory is finished")
	ErrNothingToAdjust      = errors.New("inventory has no diffs to adjust")
	ErrIncompleteResolution = errors.New("one or more divergences are unresolved")
	ErrMissingArea          = errors.New("new item has no area")
	ErrInvalidChoice        = errors.New("invalid resolution choice")
	ErrDuplicateRead        = errors.New("asset number already read in this inventory")
	ErrDuplicateNewItem     = errors.New("new item already recorded in this inventory")
	ErrOutOfScope           = errors.New("asset is outside the inventory scope")
	ErrNameRequired         = errors.New("name is required")
	ErrAreaRequired         = errors.New("area is required")
	ErrNegativeQuantity     = errors.New("quantity must not be negative")
	ErrInvalidScope         = errors.New("invalid scope type")
)
