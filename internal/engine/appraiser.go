package engine

import (
	"math"
	"sort"
)

// soldRecord is a normalized sold listing inside the appraiser's corpus.
type soldRecord struct {
	features Features
	price    int64
}

// Appraiser estimates the value of active listings against a snapshot of
// the sold-listing corpus. It holds no mutable state: build one per corpus
// snapshot and share it freely across goroutines.
type Appraiser struct {
	params   Params
	byFamily map[string][]soldRecord
	size     int
}

// NewAppraiser normalizes the corpus and groups it by vocation family.
// Rows without a positive sale price, a known level, or a known vocation
// are ignored (they carry no pricing signal). Zero-valued params fall back
// to DefaultParams.
func NewAppraiser(corpus []SoldListing, params Params) *Appraiser {
	a := &Appraiser{
		params:   params.withDefaults(),
		byFamily: make(map[string][]soldRecord),
	}
	for _, s := range corpus {
		if s.SoldPrice <= 0 || s.Level <= 0 || s.Vocation == "" {
			continue
		}
		f := Normalize(s.Attributes)
		a.byFamily[f.Family] = append(a.byFamily[f.Family], soldRecord{features: f, price: s.SoldPrice})
		a.size++
	}
	return a
}

// CorpusSize reports how many sold listings the appraiser is using.
func (a *Appraiser) CorpusSize() int {
	return a.size
}

// candidates returns sold records in the target's family whose level falls
// within the fixed level window. The window is never widened: a sparse
// family legitimately produces no estimate.
func (a *Appraiser) candidates(target Features) []soldRecord {
	window := float64(a.params.LevelWindow)
	var out []soldRecord
	for _, rec := range a.byFamily[target.Family] {
		diff := rec.features.Level - target.Level
		if diff < 0 {
			diff = -diff
		}
		if diff <= window {
			out = append(out, rec)
		}
	}
	return out
}

// Appraise estimates a single active listing. It returns nil when the
// listing is missing its vocation or level, or when fewer than
// MinComparables sufficiently similar sales exist: no estimate is better
// than a guess from thin data.
func (a *Appraiser) Appraise(target ActiveListing) *ValuationResult {
	if target.Vocation == "" || target.Level <= 0 {
		return nil
	}
	f := Normalize(target.Attributes)

	type scored struct {
		rec soldRecord
		sim float64
	}
	var kept []scored
	for _, rec := range a.candidates(f) {
		sim := Similarity(f, rec.features)
		if sim > a.params.MinSimilarity {
			kept = append(kept, scored{rec: rec, sim: sim})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].sim > kept[j].sim })
	if len(kept) > a.params.MaxComparables {
		kept = kept[:a.params.MaxComparables]
	}
	if len(kept) < a.params.MinComparables {
		return nil
	}

	var sumPriceSim, sumSim float64
	prices := make([]int64, len(kept))
	for i, s := range kept {
		sumPriceSim += float64(s.rec.price) * s.sim
		sumSim += s.sim
		prices[i] = s.rec.price
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })

	base := int64(math.Round(sumPriceSim / sumSim))
	meanSim := sumSim / float64(len(kept))

	confidence := ConfidenceLow
	switch {
	case len(kept) >= a.params.HighConfidenceSamples && meanSim > a.params.HighConfidenceSimilarity:
		confidence = ConfidenceHigh
	case len(kept) >= a.params.MedConfidenceSamples && meanSim > a.params.MedConfidenceSimilarity:
		confidence = ConfidenceMedium
	}

	bonus := itemBonus(int(f.DisplayScore), base, a.params.ItemBonusCapFraction)

	// The bonus raises the estimate and the ceiling but not the floor:
	// the p25 floor stays a pure market observation.
	return &ValuationResult{
		EstimatedValue: base + bonus,
		MinPrice:       percentileNearestRank(prices, 25),
		MaxPrice:       percentileNearestRank(prices, 75) + bonus,
		SampleSize:     len(kept),
		ItemBonus:      bonus,
		Confidence:     confidence,
	}
}

// AppraiseBatch appraises a batch of active listings against one corpus
// snapshot. Listings that cannot be appraised are simply absent from the
// returned map; absence means "valuation unavailable", not failure.
func (a *Appraiser) AppraiseBatch(targets []ActiveListing) map[int64]*ValuationResult {
	results := make(map[int64]*ValuationResult, len(targets))
	for _, t := range targets {
		if r := a.Appraise(t); r != nil {
			results[t.ID] = r
		}
	}
	return results
}

// itemBonus converts a display-item score into an additive price bonus,
// capped at a fraction of the base estimate.
func itemBonus(displayScore int, base int64, capFraction float64) int64 {
	if displayScore <= 0 || base <= 0 {
		return 0
	}
	bonus := int64(displayScore) * 2
	limit := int64(math.Round(capFraction * float64(base)))
	if bonus > limit {
		return limit
	}
	return bonus
}

// percentileNearestRank returns the p-th percentile of an ascending-sorted
// price list using the nearest-rank method.
func percentileNearestRank(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}
