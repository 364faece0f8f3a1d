package config

// Config holds application settings (in-memory representation).
// Persistence is handled by internal/db package.
type Config struct {
	// Candidate selection.
	LevelWindow    int `json:"level_window"`    // sold listings within ±N levels of the target
	MinComparables int `json:"min_comparables"` // below this, no estimate is produced
	MaxComparables int `json:"max_comparables"` // top-N comparables kept after ranking

	// Similarity filtering.
	MinSimilarity float64 `json:"min_similarity"` // comparables at or below this score are discarded

	// Confidence tiers.
	HighConfidenceSamples    int     `json:"high_confidence_samples"`
	HighConfidenceSimilarity float64 `json:"high_confidence_similarity"`
	MedConfidenceSamples     int     `json:"med_confidence_samples"`
	MedConfidenceSimilarity  float64 `json:"med_confidence_similarity"`

	// Display-item bonus.
	ItemBonusCapFraction float64 `json:"item_bonus_cap_fraction"` // cap as fraction of the base estimate

	// Corpus snapshot cache TTL in seconds (0 disables caching).
	CorpusCacheTTLSeconds int `json:"corpus_cache_ttl_seconds"`

	// History retention: appraisal runs older than this many days are pruned.
	HistoryRetentionDays int `json:"history_retention_days"`
}

// Default returns a Config with the canonical engine parameters.
func Default() *Config {
	return &Config{
		LevelWindow:              200,
		MinComparables:           3,
		MaxComparables:           30,
		MinSimilarity:            0.30,
		HighConfidenceSamples:    10,
		HighConfidenceSimilarity: 0.6,
		MedConfidenceSamples:     5,
		MedConfidenceSimilarity:  0.45,
		ItemBonusCapFraction:     0.30,
		CorpusCacheTTLSeconds:    300,
		HistoryRetentionDays:     90,
	}
}
