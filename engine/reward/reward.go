// Package reward computes experience and gold gains, places loot and
// transfers stolen items between characters.
package reward

import (
	"math"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/battle"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Multiplier is the effective gain multiplier: the guild multiplier times the
// character's personal multiplier when one is active. Never below 1.
func Multiplier(g *types.GuildConfig, c *types.Character) int {
	m := 1
	if g != nil && g.Multiplier > 1 {
		m = g.Multiplier
	}
	if c != nil && c.PersonalMultiplier > 0 {
		m *= c.PersonalMultiplier
	}
	return m
}

// MobExperience is the experience one engaged monster is worth, whether it
// died or not.
func MobExperience(m types.Monster, multiplier int) int {
	return int(math.Ceil((float64(m.Experience)+float64(m.DmgDealt)/4)/6)) * multiplier
}

// MobGold is the gold a killed monster is worth.
func MobGold(m types.Monster, multiplier int) int {
	return int(math.Floor(float64(m.Gold) * float64(multiplier)))
}

// PVPExperience is the experience a character earns fighting an opponent of
// the given level after dealing dmgDealt.
func PVPExperience(opponentLevel, dmgDealt, multiplier int) int {
	return int(math.Ceil((float64(opponentLevel*5)+float64(dmgDealt)/4)/6)) * multiplier
}

// Gains is the economy total of one encounter.
type Gains struct {
	Experience int
	Gold       int
}

// ApplyPVE fills the per-mob gains in s and applies the encounter totals to
// c: experience for every engaged monster, gold and a kill for each dead one,
// and the fled tally for monsters that survived a living attacker.
func ApplyPVE(c *types.Character, s *battle.Summary, multiplier int) Gains {
	var g Gains
	for i := range s.Mobs {
		m := &s.Mobs[i]
		m.ExpGain = MobExperience(m.Monster, multiplier)
		g.Experience += m.ExpGain

		switch m.Outcome {
		case types.OutcomeWin:
			m.GoldGain = MobGold(m.Monster, multiplier)
			g.Gold += m.GoldGain
			c.Kills.Mob++
		case types.OutcomeFled:
			if m.YouFled {
				c.Fled.You++
			} else {
				c.Fled.Mob++
			}
		case types.OutcomeLost:
		}
	}
	Grant(c, g)
	return g
}

// Grant adds experience and gold to the current and total counters.
func Grant(c *types.Character, g Gains) {
	c.Experience.Current += g.Experience
	c.Experience.Total += g.Experience
	c.Gold.Current += g.Gold
	c.Gold.Total += g.Gold
}
