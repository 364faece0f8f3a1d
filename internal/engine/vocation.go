package engine

import "strings"

// Skill identifies one of the trainable character skills.
type Skill string

const (
	SkillMagicLevel Skill = "magic_level"
	SkillFist       Skill = "fist"
	SkillClub       Skill = "club"
	SkillSword      Skill = "sword"
	SkillAxe        Skill = "axe"
	SkillDistance   Skill = "distance"
	SkillShielding  Skill = "shielding"
)

// vocationFamilies collapses promoted vocation names into their base family.
// Loaded once; never mutated.
var vocationFamilies = map[string]string{
	"knight":          "Knight",
	"elite knight":    "Knight",
	"paladin":         "Paladin",
	"royal paladin":   "Paladin",
	"sorcerer":        "Sorcerer",
	"master sorcerer": "Sorcerer",
	"druid":           "Druid",
	"elder druid":     "Druid",
	"monk":            "Monk",
	"exalted monk":    "Monk",
}

// familyPrimarySkill maps each family to its class-defining skill.
var familyPrimarySkill = map[string]Skill{
	"Knight":   SkillSword,
	"Paladin":  SkillDistance,
	"Sorcerer": SkillMagicLevel,
	"Druid":    SkillMagicLevel,
	"Monk":     SkillFist,
}

// Classify resolves a raw vocation name to its family and primary skill.
// It is total: an unknown name becomes its own family with magic level as
// the neutral primary skill, so "Elite Knight" history can price a plain
// "Knight" listing while exotic vocations still get a consistent grouping.
func Classify(vocation string) (family string, primary Skill) {
	name := strings.TrimSpace(vocation)
	if fam, ok := vocationFamilies[strings.ToLower(name)]; ok {
		return fam, familyPrimarySkill[fam]
	}
	return name, SkillMagicLevel
}
