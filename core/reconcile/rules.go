package reconcile

// MissingRule controls what happens to items present in the baseline but
// never counted.
type MissingRule string

const (
	// MissingRuleZero writes quantity zero for missing items.
	MissingRuleZero MissingRule = "zero"
	// MissingRuleKeep keeps the baseline quantity for missing items.
	MissingRuleKeep MissingRule = "keep"
)

// Policy holds the reconciliation policy settings. It doubles as a config
// section, so every field carries mapstructure and default tags.
type Policy struct {
	// MissingRule decides the final quantity of MISSING items (zero, keep).
	MissingRule MissingRule `mapstructure:"missing_rule" default:"zero"`
	// AllowCreateNew permits the adjustment to create assets for NEW items.
	AllowCreateNew bool `mapstructure:"allow_create_new" default:"true"`
	// AssetNumberFormat is the template for generated asset numbers.
	// The {seq} placeholder is replaced with the zero-padded sequence value.
	AssetNumberFormat string `mapstructure:"asset_number_format" default:"PAT-{seq}"`
}

// DeriveFinalQuantity maps a diff record and the active policy to the
// quantity the adjustment will commit. It is total over every status and
// choice combination and never reads an absent field without a fallback:
//
//   - MISSING: zero or the baseline quantity, per MissingRule.
//   - IGNORE: the baseline quantity.
//   - L2: the second count, falling back to the first count.
//   - L1 (also the default when no choice was saved): the first count.
func DeriveFinalQuantity(d Diff, p Policy) int {
	if d.Status == StatusMissing {
		if p.MissingRule == MissingRuleZero {
			return 0
		}
		return d.L0Quantity
	}

	choice := ChoiceL1
	if d.ResolutionChoice != nil {
		choice = *d.ResolutionChoice
	}

	switch choice {
	case ChoiceIgnore:
		return d.L0Quantity
	case ChoiceL2:
		if d.L2Quantity != nil {
			return *d.L2Quantity
		}
		return d.L1Quantity
	default:
		return d.L1Quantity
	}
}
