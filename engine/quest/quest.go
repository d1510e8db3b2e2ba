// Package quest tracks a character's single active kill quest.
package quest

import (
	"math"
	"strings"
	"time"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/battle"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/reward"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/rng"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/state"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Required kill counts for a new quest.
const (
	MinCount = 1
	MaxCount = 15
)

// Active reports whether c has a quest target.
func Active(c *types.Character) bool {
	return c.Quest != nil && c.Quest.Mob.Name != "" && !strings.Contains(c.Quest.Mob.Name, types.NoQuest)
}

// Completion is the result of tracking one encounter.
type Completion struct {
	Kills     int // quest-target kills counted this encounter
	Completed bool
	Bonus     reward.Gains
}

// Track counts the encounter's quest-target kills and, once the required
// count is reached, grants the bonus and resets the quest. The completion
// check runs once per encounter however many targets died in it.
func Track(c *types.Character, s *battle.Summary, gains reward.Gains, now time.Time) Completion {
	var res Completion
	if c.Quest == nil {
		c.Quest = state.EmptyQuest(now)
	}
	if !Active(c) {
		return res
	}

	q := c.Quest
	for _, m := range s.Mobs {
		if m.Outcome != types.OutcomeWin || !strings.Contains(m.Name, q.Mob.Name) {
			continue
		}
		if q.Mob.KillCount < q.Mob.Count {
			q.Mob.KillCount++
		}
		res.Kills++
	}
	if res.Kills == 0 {
		return res
	}
	q.UpdatedAt = now

	if q.Mob.KillCount >= q.Mob.Count {
		res.Completed = true
		res.Bonus = reward.Gains{
			Experience: halfTimes(gains.Experience, q.Mob.Count),
			Gold:       halfTimes(gains.Gold, q.Mob.Count),
		}
		reward.Grant(c, res.Bonus)
		q.Mob = types.QuestMob{Name: types.NoQuest}
		q.Completed++
	}
	return res
}

func halfTimes(v, count int) int {
	return int(math.Ceil(float64(v*count) / 2))
}

// Assign gives c a new quest to kill count of target.
func Assign(c *types.Character, target string, count int, now time.Time) {
	if c.Quest == nil {
		c.Quest = state.EmptyQuest(now)
	}
	c.Quest.Mob = types.QuestMob{Name: target, Count: count}
	c.Quest.UpdatedAt = now
}

// RollCount picks the required kill count for a new quest.
func RollCount(r *rng.RNG) int {
	return r.Between(MinCount, MaxCount)
}

// CanReset reports whether the active quest is old enough to be re-rolled.
func CanReset(c *types.Character, now time.Time, age time.Duration) bool {
	if !Active(c) {
		return false
	}
	return now.Sub(c.Quest.UpdatedAt) > age
}

// Reroll replaces the active quest with a freshly generated target. A repeat
// of the current target is regenerated once.
func Reroll(c *types.Character, r *rng.RNG, generate func() (types.Monster, error), now time.Time) (types.QuestMob, error) {
	current := ""
	if c.Quest != nil {
		current = c.Quest.Mob.Name
	}
	mob, err := generate()
	if err != nil {
		return types.QuestMob{}, err
	}
	if mob.Name == current {
		if mob, err = generate(); err != nil {
			return types.QuestMob{}, err
		}
	}
	Assign(c, mob.Name, RollCount(r), now)
	return c.Quest.Mob, nil
}
