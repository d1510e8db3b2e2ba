// Package stats aggregates base stats with relic bonuses and computes the
// item rating used for combat power and upgrade decisions.
package stats

import (
	"math"

	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Stat names accepted by Total.
const (
	Strength     = "str"
	Dexterity    = "dex"
	Endurance    = "end"
	Intelligence = "int"
	Luck         = "luk"
)

// Get returns a single named stat from s. Unknown names return 0.
func Get(s types.Stats, name string) int {
	switch name {
	case Strength:
		return s.Str
	case Dexterity:
		return s.Dex
	case Endurance:
		return s.End
	case Intelligence:
		return s.Int
	case Luck:
		return s.Luk
	default:
		return 0
	}
}

// Total returns the character's base stat plus the equipped relic's bonus.
func Total(c *types.Character, name string) int {
	return Get(c.Stats, name) + Get(c.Equipment.Relic.Bonus, name)
}

// Totals returns all five totals at once.
func Totals(c *types.Character) types.Stats {
	return types.Stats{
		Str: Total(c, Strength),
		Dex: Total(c, Dexterity),
		End: Total(c, Endurance),
		Int: Total(c, Intelligence),
		Luk: Total(c, Luck),
	}
}

// ItemRating is the single comparison metric for an item.
//
// Relics rate as the sum of their bonuses regardless of wielder. Helmets,
// armor and inventory items rate as their power, as does any item rated
// without a character. Weapons rate as ceil(primary + power + dex) where the
// primary stat follows the attack type; dexterity is always added on top,
// range weapons included.
func ItemRating(c *types.Character, item types.Item) int {
	if item.Position == types.PosRelic {
		b := item.Bonus
		return b.Str + b.Dex + b.End + b.Int + b.Luk
	}
	if c == nil || item.Position != types.PosWeapon {
		return int(math.Ceil(item.Power))
	}
	return weaponRating(Totals(c), item)
}

// WeaponRating rates a weapon for an arbitrary stat block, used for monsters.
func WeaponRating(s types.Stats, weapon types.Item) int {
	return weaponRating(s, weapon)
}

func weaponRating(s types.Stats, weapon types.Item) int {
	var primary int
	switch weapon.AttackType {
	case types.Range:
		primary = s.Dex
	case types.Magic:
		primary = s.Int
	default:
		primary = s.Str
	}
	return int(math.Ceil(float64(primary) + weapon.Power + float64(s.Dex)))
}

// Defense is the combined power of helmet and armor.
func Defense(e types.Equipment) int {
	return int(math.Ceil(e.Helmet.Power + e.Armor.Power))
}

// MaxHealth is the health ceiling for a level.
func MaxHealth(level int) int {
	return 100 + level*5
}

// ExperienceToLevel is the experience needed to leave the given level.
func ExperienceToLevel(level int) int {
	return level * 15
}
