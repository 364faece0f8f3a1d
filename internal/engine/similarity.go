package engine

// Weights is the convex combination used by the similarity scorer.
// The fields must sum to exactly 1.0.
type Weights struct {
	Level        float64
	MagicLevel   float64
	PrimarySkill float64
	CharmPoints  float64
	QuestAccess  float64
	StoreItems   float64
	DisplayItems float64
}

// DefaultWeights is the canonical feature weighting.
var DefaultWeights = Weights{
	Level:        0.30,
	MagicLevel:   0.15,
	PrimarySkill: 0.15,
	CharmPoints:  0.10,
	QuestAccess:  0.10,
	StoreItems:   0.10,
	DisplayItems: 0.10,
}

// Sum returns the total of all weight fields.
func (w Weights) Sum() float64 {
	return w.Level + w.MagicLevel + w.PrimarySkill + w.CharmPoints +
		w.QuestAccess + w.StoreItems + w.DisplayItems
}

// Proximity denominators: the attribute difference at which two values are
// considered maximally dissimilar.
const (
	levelMaxDiff   = 200.0
	magicMaxDiff   = 50.0
	primaryMaxDiff = 30.0
	charmMaxDiff   = 5000.0
	storeMaxDiff   = 50.0
	displayMaxDiff = 100.0

	// neutralScore is used when a feature is unknown on either side:
	// absence is not evidence of dissimilarity.
	neutralScore = 0.5
)

// proximityKnown scores two known values: clamp(1 - |a-b|/maxDiff, 0, 1).
func proximityKnown(a, b, maxDiff float64) float64 {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	p := 1 - diff/maxDiff
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// proximity scores two nullable values, neutral when either is missing.
func proximity(a, b *float64, maxDiff float64) float64 {
	if a == nil || b == nil {
		return neutralScore
	}
	return proximityKnown(*a, *b, maxDiff)
}

// questMatchRatio is the fraction of quest-access flags that agree, counted
// only over flag pairs known on both sides. With no comparable pair it is
// neutral.
func questMatchRatio(t, c Features) float64 {
	pairs := [][2]*bool{
		{t.Soulwar, c.Soulwar},
		{t.Primal, c.Primal},
		{t.Falcon, c.Falcon},
	}
	comparable, agree := 0, 0
	for _, p := range pairs {
		if p[0] == nil || p[1] == nil {
			continue
		}
		comparable++
		if *p[0] == *p[1] {
			agree++
		}
	}
	if comparable == 0 {
		return neutralScore
	}
	return float64(agree) / float64(comparable)
}

// Similarity computes the weighted [0,1] proximity between a target and a
// candidate feature vector. Per-feature scores are symmetric in argument
// order, so swapping target and candidate yields the same result.
//
// The primary-skill score reuses the magic-level score for families whose
// primary skill IS magic level, instead of scoring the same pair twice
// against a tighter denominator.
func Similarity(target, candidate Features) float64 {
	w := DefaultWeights

	magicScore := proximity(target.MagicLevel, candidate.MagicLevel, magicMaxDiff)
	primaryScore := magicScore
	if target.PrimarySkill != SkillMagicLevel {
		primaryScore = proximity(target.PrimaryValue, candidate.PrimaryValue, primaryMaxDiff)
	}

	return w.Level*proximityKnown(target.Level, candidate.Level, levelMaxDiff) +
		w.MagicLevel*magicScore +
		w.PrimarySkill*primaryScore +
		w.CharmPoints*proximity(target.CharmPoints, candidate.CharmPoints, charmMaxDiff) +
		w.QuestAccess*questMatchRatio(target, candidate) +
		w.StoreItems*proximity(target.StoreItems, candidate.StoreItems, storeMaxDiff) +
		w.DisplayItems*proximityKnown(target.DisplayScore, candidate.DisplayScore, displayMaxDiff)
}
