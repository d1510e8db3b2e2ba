// Package battle resolves an encounter to raw damage totals in a single pass
// and classifies the result. There is no round loop: each defender trades
// exactly one damage exchange with the attacker.
package battle

import (
	"math"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/rng"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/state"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/stats"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Fighter is one side's combat numbers for a single exchange.
type Fighter struct {
	Rating  int
	Defense int
	Luck    int
}

// Encounter is created per call and discarded after resolution.
// Exactly one of Monsters (PVE) or Defender (PVP) is set.
type Encounter struct {
	Attacker          *types.Character
	AttackerMaxHealth int
	Monsters          []types.Monster
	Defender          *types.Character
	AttackerDamage    int
	DefenderDamage    int
}

// IsPVP reports whether the encounter is player versus player.
func (e *Encounter) IsPVP() bool {
	return e.Defender != nil
}

// FromCharacter builds a fighter from a character's weapon, armor and relic.
func FromCharacter(c *types.Character) Fighter {
	return Fighter{
		Rating:  stats.ItemRating(c, c.Equipment.Weapon),
		Defense: stats.Defense(c.Equipment) + stats.Total(c, stats.Endurance)/2,
		Luck:    stats.Total(c, stats.Luck),
	}
}

// FromMonster builds a fighter from a monster.
func FromMonster(m types.Monster) Fighter {
	return Fighter{
		Rating:  stats.WeaponRating(m.Stats, m.Equipment.Weapon),
		Defense: stats.Defense(m.Equipment) + m.Stats.End/2,
		Luck:    m.Stats.Luk,
	}
}

// Damage computes the damage att deals to def: rating scaled by a 75–125%
// variance, multiplied by 1.5 on a luck-biased critical, minus half the
// defense, never below zero. Returns (damage, variance).
// Every call consumes exactly two rolls.
func Damage(r *rng.RNG, att, def Fighter) (damage, variance int) {
	variance = r.Between(75, 125)
	raw := float64(att.Rating) * float64(variance) / 100
	if float64(r.Percent()) <= critChance(att.Luck) {
		raw *= 1.5
	}
	damage = int(math.Ceil(raw - float64(def.Defense)/2))
	if damage < 0 {
		damage = 0
	}
	return damage, variance
}

func critChance(luck int) float64 {
	return 5 + float64(luck)/4
}

// ResolvePVE simulates attacker against one or more monsters. Inputs are
// copied; the returned encounter owns its attacker and monsters.
func ResolvePVE(r *rng.RNG, attacker *types.Character, mobs []types.Monster) *Encounter {
	e := &Encounter{
		Attacker:          state.Clone(attacker),
		AttackerMaxHealth: stats.MaxHealth(attacker.Level),
		Monsters:          append([]types.Monster(nil), mobs...),
	}

	af := FromCharacter(e.Attacker)
	for i := range e.Monsters {
		mf := FromMonster(e.Monsters[i])
		attackerDmg, _ := Damage(r, af, mf)
		defenderDmg, _ := Damage(r, mf, af)
		e.exchange(i, attackerDmg, defenderDmg)
	}
	return e
}

// exchange applies one damage exchange between the attacker and monster i.
// A dead attacker inflicts nothing; the monster's damage is always recorded.
func (e *Encounter) exchange(i, attackerDmg, defenderDmg int) {
	m := &e.Monsters[i]
	if e.Attacker.Health > 0 {
		m.Health -= attackerDmg
		m.DmgReceived += attackerDmg
		e.AttackerDamage += attackerDmg
	}
	e.Attacker.Health -= defenderDmg
	m.DmgDealt += defenderDmg
	e.DefenderDamage += defenderDmg
}

// ResolvePVP simulates a 1v1 fight between two characters. Both are copied.
func ResolvePVP(r *rng.RNG, attacker, defender *types.Character) *Encounter {
	e := &Encounter{
		Attacker:          state.Clone(attacker),
		AttackerMaxHealth: stats.MaxHealth(attacker.Level),
		Defender:          state.Clone(defender),
	}

	af := FromCharacter(e.Attacker)
	df := FromCharacter(e.Defender)
	attackerDmg, _ := Damage(r, af, df)
	defenderDmg, _ := Damage(r, df, af)
	e.exchangePVP(attackerDmg, defenderDmg)
	return e
}

func (e *Encounter) exchangePVP(attackerDmg, defenderDmg int) {
	e.Defender.Health -= attackerDmg
	e.AttackerDamage += attackerDmg
	e.Attacker.Health -= defenderDmg
	e.DefenderDamage += defenderDmg
}
