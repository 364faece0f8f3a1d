package engine

import (
	"encoding/json"
	"strings"
)

// Features is the canonical feature vector derived from a listing's
// attributes. Pointer fields stay nil when the source attribute is unknown.
type Features struct {
	Family       string
	PrimarySkill Skill
	Level        float64
	MagicLevel   *float64
	PrimaryValue *float64 // value of the family's primary skill
	CharmPoints  *float64
	Soulwar      *bool
	Primal       *bool
	Falcon       *bool
	StoreItems   *float64
	DisplayScore float64
}

// Normalize maps raw listing attributes into a feature vector. It never
// fails: a malformed display-item payload normalizes to a zero score.
func Normalize(a Attributes) Features {
	family, primary := Classify(a.Vocation)
	return Features{
		Family:       family,
		PrimarySkill: primary,
		Level:        float64(a.Level),
		MagicLevel:   intFeature(a.MagicLevel),
		PrimaryValue: intFeature(skillValue(a, primary)),
		CharmPoints:  intFeature(a.CharmPoints),
		Soulwar:      a.Soulwar,
		Primal:       a.Primal,
		Falcon:       a.Falcon,
		StoreItems:   intFeature(a.StoreItemCount),
		DisplayScore: float64(DisplayItemScore(a.DisplayItemsRaw)),
	}
}

// skillValue returns the raw value of the given skill, or nil if unknown.
func skillValue(a Attributes, s Skill) *int {
	switch s {
	case SkillMagicLevel:
		return a.MagicLevel
	case SkillFist:
		return a.Fist
	case SkillClub:
		return a.Club
	case SkillSword:
		return a.Sword
	case SkillAxe:
		return a.Axe
	case SkillDistance:
		return a.Distance
	case SkillShielding:
		return a.Shielding
	}
	return nil
}

func intFeature(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

// displayTierValues maps an item tier to its currency-equivalent points.
var displayTierValues = map[int]int{1: 2, 2: 5, 3: 12, 4: 25, 5: 50}

// highValueKeywords mark display items that carry extra collector value.
var highValueKeywords = []string{"golden", "royal", "ornate", "festive", "anniversary"}

// displayItem is the structured shape of a display-item payload entry.
type displayItem struct {
	Name string `json:"name"`
	Tier *int   `json:"tier"`
}

// DisplayItemScore parses the opaque display-item payload and scores it.
// Each structured entry contributes its tier value (unrecognized positive
// tiers fall back to tier×10) plus a flat 10 for high-value keyword names.
// Legacy entries that are plain strings (image URLs from old scrapes) are
// skipped. A payload that does not parse at all scores 0; this function
// never returns an error.
func DisplayItemScore(raw string) int {
	if strings.TrimSpace(raw) == "" {
		return 0
	}
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return 0
	}

	score := 0
	for _, e := range entries {
		var it displayItem
		if err := json.Unmarshal(e, &it); err != nil {
			continue
		}
		if it.Tier != nil {
			if v, ok := displayTierValues[*it.Tier]; ok {
				score += v
			} else if *it.Tier > 0 {
				score += *it.Tier * 10
			}
		}
		name := strings.ToLower(it.Name)
		for _, kw := range highValueKeywords {
			if strings.Contains(name, kw) {
				score += 10
				break
			}
		}
	}
	return score
}
