package assets

import "errors"

var (
	// ErrAssetNotFound is returned when no asset matches the lookup.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrAreaNotFound is returned when the referenced area does not exist.
	ErrAreaNotFound = errors.New("area not found")
	// ErrDuplicateNumber is returned when an asset number is already taken
	// (case-insensitively).
	ErrDuplicateNumber = errors.New("asset number already in use")
	// ErrNameRequired is returned when an asset is created without a name.
	ErrNameRequired = errors.New("asset name is required")
	// ErrAreaRequired is returned when an asset is created without an area.
	ErrAreaRequired = errors.New("asset area is required")
	// ErrNegativeQuantity is returned for quantities below zero.
	ErrNegativeQuantity = errors.New("quantity must be zero or greater")
	// ErrNegativeUnitValue is returned for unit values below zero.
	ErrNegativeUnitValue = errors.New("unit value must be zero or greater")
)
