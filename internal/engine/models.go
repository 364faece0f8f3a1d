package engine

// Confidence tiers for a valuation estimate.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Attributes is the character sheet shared by sold and active listings.
// Skill and flag fields are pointers: a nil value means the bazaar page
// did not expose that attribute, which is distinct from zero.
type Attributes struct {
	Vocation       string `json:"vocation"`
	Level          int    `json:"level"`
	MagicLevel     *int   `json:"magic_level"`
	Fist           *int   `json:"fist"`
	Club           *int   `json:"club"`
	Sword          *int   `json:"sword"`
	Axe            *int   `json:"axe"`
	Distance       *int   `json:"distance"`
	Shielding      *int   `json:"shielding"`
	CharmPoints    *int   `json:"charm_points"`
	Soulwar        *bool  `json:"soulwar"`
	Primal         *bool  `json:"primal"`
	Falcon         *bool  `json:"falcon"`
	StoreItemCount *int   `json:"store_item_count"`
	// DisplayItemsRaw is the opaque serialized display-item list as scraped
	// from the auction page ([{name, tier}] entries, tier 0-5 or absent).
	DisplayItemsRaw string `json:"display_items"`
}

// SoldListing is a completed auction: an immutable historical sale record.
type SoldListing struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	World string `json:"world"`
	Attributes
	SoldPrice int64  `json:"sold_price"`
	SoldAt    string `json:"sold_at"`
}

// ActiveListing is an unsold auction to be appraised. It exists only for
// the duration of an appraisal request and is never persisted.
type ActiveListing struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	World string `json:"world"`
	Attributes
}

// ValuationResult is the appraisal produced for a single active listing.
type ValuationResult struct {
	EstimatedValue int64  `json:"estimated_value"`
	MinPrice       int64  `json:"min_price"`
	MaxPrice       int64  `json:"max_price"`
	SampleSize     int    `json:"sample_size"`
	ItemBonus      int64  `json:"item_bonus"`
	Confidence     string `json:"confidence"`
}

// Params holds the tunable knobs of the appraiser.
type Params struct {
	LevelWindow              int     // comparables within ±N levels of the target
	MinSimilarity            float64 // comparables at or below this score are discarded
	MaxComparables           int     // top-N comparables kept after ranking
	MinComparables           int     // below this, no estimate is produced
	ItemBonusCapFraction     float64 // display-item bonus cap as fraction of the base estimate
	HighConfidenceSamples    int
	HighConfidenceSimilarity float64
	MedConfidenceSamples     int
	MedConfidenceSimilarity  float64
}

// DefaultParams are the canonical appraiser parameters.
var DefaultParams = Params{
	LevelWindow:              200,
	MinSimilarity:            0.30,
	MaxComparables:           30,
	MinComparables:           3,
	ItemBonusCapFraction:     0.30,
	HighConfidenceSamples:    10,
	HighConfidenceSimilarity: 0.6,
	MedConfidenceSamples:     5,
	MedConfidenceSimilarity:  0.45,
}

// withDefaults fills zero-valued fields from DefaultParams.
func (p Params) withDefaults() Params {
	d := DefaultParams
	if p.LevelWindow <= 0 {
		p.LevelWindow = d.LevelWindow
	}
	if p.MinSimilarity <= 0 {
		p.MinSimilarity = d.MinSimilarity
	}
	if p.MaxComparables <= 0 {
		p.MaxComparables = d.MaxComparables
	}
	if p.MinComparables <= 0 {
		p.MinComparables = d.MinComparables
	}
	if p.ItemBonusCapFraction <= 0 {
		p.ItemBonusCapFraction = d.ItemBonusCapFraction
	}
	if p.HighConfidenceSamples <= 0 {
		p.HighConfidenceSamples = d.HighConfidenceSamples
	}
	if p.HighConfidenceSimilarity <= 0 {
		p.HighConfidenceSimilarity = d.HighConfidenceSimilarity
	}
	if p.MedConfidenceSamples <= 0 {
		p.MedConfidenceSamples = d.MedConfidenceSamples
	}
	if p.MedConfidenceSimilarity <= 0 {
		p.MedConfidenceSimilarity = d.MedConfidenceSimilarity
	}
	return p
}
