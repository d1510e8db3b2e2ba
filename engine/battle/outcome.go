package battle

import (
	"github.com/mblgbs/RPG-bot-for-Discord/engine/stats"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Summary is the classified result of an encounter.
type Summary struct {
	Outcome types.Outcome
	Mobs    []types.MobResult // one per monster, PVE only
	YouFled bool              // PVP: the attacker was the side that fled
}

// Kills returns the number of monsters classified as a win.
func (s Summary) Kills() int {
	n := 0
	for _, m := range s.Mobs {
		if m.Outcome == types.OutcomeWin {
			n++
		}
	}
	return n
}

// Classify clamps every health value at zero and labels the encounter.
//
// Per monster: dead monster is a win, dead attacker a loss, otherwise both
// fled. Across a group any kill is a win; with no kills a dead attacker is a
// loss, and anything else is a flee.
func Classify(e *Encounter) Summary {
	clamp(&e.Attacker.Health)
	if e.IsPVP() {
		return classifyPVP(e)
	}

	s := Summary{Mobs: make([]types.MobResult, len(e.Monsters))}
	for i := range e.Monsters {
		m := &e.Monsters[i]
		clamp(&m.Health)
		res := types.MobResult{Name: m.Name, Monster: *m}
		switch {
		case m.Health == 0:
			res.Outcome = types.OutcomeWin
		case e.Attacker.Health == 0:
			res.Outcome = types.OutcomeLost
		default:
			res.Outcome = types.OutcomeFled
			res.YouFled = attackerFled(e.Attacker.Health, e.AttackerMaxHealth, m.Health, m.MaxHealth)
		}
		s.Mobs[i] = res
	}

	switch {
	case s.Kills() > 0:
		s.Outcome = types.OutcomeWin
	case e.Attacker.Health == 0:
		s.Outcome = types.OutcomeLost
	default:
		s.Outcome = types.OutcomeFled
	}
	return s
}

func classifyPVP(e *Encounter) Summary {
	clamp(&e.Defender.Health)
	var s Summary
	switch {
	case e.Defender.Health == 0:
		s.Outcome = types.OutcomeWin
	case e.Attacker.Health == 0:
		s.Outcome = types.OutcomeLost
	default:
		s.Outcome = types.OutcomeFled
		defMax := stats.MaxHealth(e.Defender.Level)
		s.YouFled = attackerFled(e.Attacker.Health, e.AttackerMaxHealth, e.Defender.Health, defMax)
	}
	return s
}

// attackerFled reports whether the attacker has the lower relative remaining
// health. Ties go to the other side fleeing.
func attackerFled(aHealth, aMax, dHealth, dMax int) bool {
	if aMax <= 0 || dMax <= 0 {
		return dHealth > aHealth
	}
	return aHealth*dMax < dHealth*aMax
}

func clamp(h *int) {
	if *h < 0 {
		*h = 0
	}
}
