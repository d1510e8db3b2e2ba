package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/battle"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/messages"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/quest"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/reward"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/state"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/stats"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// AttackMob pits c against a freshly generated group of one to MaxGroupSize
// monsters from c's map.
func (e *Engine) AttackMob(c *types.Character, g *types.GuildConfig) (res types.Result) {
	defer e.guard("attack", c, &res)

	n := e.rng.Between(1, e.cfg.MaxGroupSize)
	mobs := make([]types.Monster, 0, n)
	for i := 0; i < n; i++ {
		m, err := e.content.GenerateMonster(c)
		if err != nil {
			return e.skip("attack", c, err)
		}
		mobs = append(mobs, m)
	}
	return e.FightMobs(c, g, mobs)
}

// FightMobs resolves c against the given monsters and applies the rewards,
// quest progress, loot and level or death checks of the outcome.
func (e *Engine) FightMobs(c *types.Character, g *types.GuildConfig, mobs []types.Monster) (res types.Result) {
	defer e.guard("fight", c, &res)
	if len(mobs) == 0 {
		return types.Result{}
	}

	enc := battle.ResolvePVE(e.rng, c, mobs)
	sum := battle.Classify(enc)
	hero := enc.Attacker
	hero.Events++

	gains := reward.ApplyPVE(hero, &sum, reward.Multiplier(g, hero))
	res = types.Result{Character: hero, Outcome: sum.Outcome}
	res.Messages = append(res.Messages, pveMessage(hero, enc, sum, gains))

	switch sum.Outcome {
	case types.OutcomeWin:
		e.trackQuest(hero, &sum, gains, &res)
		e.loot(hero, &res)
		if hero.Health == 0 {
			// A kill that cost the hero's life still ends in town, and the
			// experience goes with it.
			killers := mobNames(sum.Mobs, types.OutcomeLost)
			if killers == "" {
				killers = mobNames(sum.Mobs, types.OutcomeWin)
			}
			e.deathCheck(hero, killers, state.KilledByMob, &res)
		}
		e.levelCheck(hero, &res)
	case types.OutcomeFled:
		e.levelCheck(hero, &res)
	case types.OutcomeLost:
		e.deathCheck(hero, mobNames(sum.Mobs, types.OutcomeLost), state.KilledByMob, &res)
	default:
		panic(fmt.Sprintf("unclassified encounter outcome %d", sum.Outcome))
	}

	e.log.Debug("pve resolved",
		zap.String("character", hero.ID),
		zap.Int("mobs", len(mobs)),
		zap.Int("outcome", int(sum.Outcome)),
		zap.Int("exp", gains.Experience),
		zap.Int("gold", gains.Gold))
	return res
}

func (e *Engine) trackQuest(c *types.Character, s *battle.Summary, gains reward.Gains, res *types.Result) {
	target := ""
	if c.Quest != nil {
		target = c.Quest.Mob.Name
	}
	done := quest.Track(c, s, gains, e.now())
	switch {
	case done.Completed:
		res.Messages = append(res.Messages, types.Message{
			Broadcast: fmt.Sprintf("[%s] %s finished a quest and gained %d experience and %d gold!",
				c.Map, messages.DisplayName(c, true), done.Bonus.Experience, done.Bonus.Gold),
			Private: fmt.Sprintf("Finished the quest to hunt %s and gained %d experience and %d gold!",
				target, done.Bonus.Experience, done.Bonus.Gold),
			To: c.ID,
		})
	case done.Kills > 0:
		res.Messages = append(res.Messages, types.Message{
			Private: fmt.Sprintf("Quest progress: %d/%d %s", c.Quest.Mob.KillCount, c.Quest.Mob.Count, target),
			To:      c.ID,
		})
	}
}

// loot rolls a drop after a won encounter. A failed generation costs the
// character the drop, not the fight.
func (e *Engine) loot(c *types.Character, res *types.Result) {
	if !reward.Drops(e.rng, c) {
		return
	}
	item, err := e.content.GenerateItem(c)
	if err != nil {
		e.skip("loot", c, err)
		return
	}
	name := messages.DisplayName(c, true)
	var private string
	switch reward.Place(c, item, e.cfg.MaxItems) {
	case reward.Equipped:
		private = fmt.Sprintf("You received %s from the fight and equipped it", item.Name)
	case reward.Stored, reward.Carried:
		private = fmt.Sprintf("You received %s from the fight", item.Name)
	case reward.LeftBehind:
		private = fmt.Sprintf("Your bag was full so you left %s behind", item.Name)
	}
	res.Messages = append(res.Messages, types.Message{
		Broadcast: fmt.Sprintf("[%s] %s received %s from the fight!", c.Map, name, item.Name),
		Private:   private,
		To:        c.ID,
	})
}

// AttackPlayer resolves a fight between att and def. Both sides earn
// experience for the damage they dealt; the winner steals from the loser.
// The modified defender is returned in Result.Others.
func (e *Engine) AttackPlayer(att, def *types.Character, g *types.GuildConfig) (res types.Result) {
	defer e.guard("pvp", att, &res)
	if def == nil || def.ID == att.ID {
		return declined(att, "There is nobody here to fight.")
	}

	enc := battle.ResolvePVP(e.rng, att, def)
	sum := battle.Classify(enc)
	a, d := enc.Attacker, enc.Defender
	a.Events++

	aExp := reward.PVPExperience(d.Level, enc.AttackerDamage, reward.Multiplier(g, a))
	dExp := reward.PVPExperience(a.Level, enc.DefenderDamage, reward.Multiplier(g, d))
	reward.Grant(a, reward.Gains{Experience: aExp})
	reward.Grant(d, reward.Gains{Experience: dExp})

	res = types.Result{Character: a, Others: []*types.Character{d}, Outcome: sum.Outcome}
	res.Messages = append(res.Messages, pvpMessages(a, d, enc, sum, aExp, dExp)...)

	switch sum.Outcome {
	case types.OutcomeWin:
		a.Battles.Won++
		d.Battles.Lost++
		a.Kills.Player++
		e.steal(a, d, &res)
		e.deathCheck(d, messages.Titled(a), state.KilledByPlayer, &res)
		if a.Health == 0 {
			e.deathCheck(a, messages.Titled(d), state.KilledByPlayer, &res)
		}
		e.levelCheck(a, &res)
	case types.OutcomeFled:
		if sum.YouFled {
			a.Fled.You++
			d.Fled.Player++
		} else {
			a.Fled.Player++
			d.Fled.You++
		}
		e.levelCheck(a, &res)
		e.levelCheck(d, &res)
	case types.OutcomeLost:
		a.Battles.Lost++
		d.Battles.Won++
		d.Kills.Player++
		e.steal(d, a, &res)
		e.levelCheck(d, &res)
		e.deathCheck(a, messages.Titled(d), state.KilledByPlayer, &res)
	default:
		panic(fmt.Sprintf("unclassified encounter outcome %d", sum.Outcome))
	}

	e.log.Debug("pvp resolved",
		zap.String("attacker", a.ID),
		zap.String("defender", d.ID),
		zap.Int("outcome", int(sum.Outcome)))
	return res
}

func (e *Engine) steal(winner, loser *types.Character, res *types.Result) {
	theft := reward.Steal(e.rng, winner, loser, e.cfg.MaxItems, e.cfg.OwnerCap)
	switch {
	case theft.Item != nil:
		tok := messages.For(winner)
		tok.Item = theft.Item.Name
		tok.Victim = messages.DisplayName(loser, true)
		msg := tok.Apply(e.catalogue.Pick(e.rng, messages.StealItem))
		msg.To = winner.ID
		res.Messages = append(res.Messages, msg, types.Message{
			Private: fmt.Sprintf("%s stole %s from you!", messages.Titled(winner), theft.Item.Name),
			To:      loser.ID,
		})
	case theft.Gold > 0:
		res.Messages = append(res.Messages,
			types.Message{
				Broadcast: fmt.Sprintf("[%s] %s stole %d gold from %s!", winner.Map,
					messages.DisplayName(winner, true), theft.Gold, messages.DisplayName(loser, true)),
				Private: fmt.Sprintf("You stole %d gold from %s", theft.Gold, messages.Titled(loser)),
				To:      winner.ID,
			},
			types.Message{
				Private: fmt.Sprintf("%s stole %d gold from you!", messages.Titled(winner), theft.Gold),
				To:      loser.ID,
			})
	}
}

func pveMessage(c *types.Character, enc *battle.Encounter, s battle.Summary, gains reward.Gains) types.Message {
	name := messages.DisplayName(c, true)
	his := messages.Pronoun(c.Gender, messages.His)
	health := fmt.Sprintf("[HP:%d/%d]-[DMG:%d]", c.Health, stats.MaxHealth(c.Level), enc.AttackerDamage)

	var broadcast, private string
	switch s.Outcome {
	case types.OutcomeWin:
		killed := mobNames(s.Mobs, types.OutcomeWin)
		broadcast = fmt.Sprintf("[%s] %s just killed %s with %s %s gaining %d exp and %d gold! %s",
			c.Map, name, killed, his, c.Equipment.Weapon.Name, gains.Experience, gains.Gold, health)
		private = fmt.Sprintf("Killed %s with your %s in %s gaining %d exp and %d gold! %s",
			killed, c.Equipment.Weapon.Name, c.Map, gains.Experience, gains.Gold, health)
	case types.OutcomeFled:
		fled := mobNames(s.Mobs, types.OutcomeFled)
		if allYouFled(s.Mobs) {
			broadcast = fmt.Sprintf("[%s] %s fled from %s gaining %d exp! %s", c.Map, name, fled, gains.Experience, health)
			private = fmt.Sprintf("You fled from %s in %s gaining %d exp! %s", fled, c.Map, gains.Experience, health)
		} else {
			broadcast = fmt.Sprintf("[%s] %s fled from %s gaining %d exp! %s", c.Map, fled, name, gains.Experience, health)
			private = fmt.Sprintf("%s fled from you in %s! You gained %d exp! %s", fled, c.Map, gains.Experience, health)
		}
	case types.OutcomeLost:
		killers := mobNames(s.Mobs, types.OutcomeLost)
		broadcast = fmt.Sprintf("[%s] %s just lost a battle to %s! %s", c.Map, name, killers, health)
		private = fmt.Sprintf("You lost a battle to %s in %s! %s", killers, c.Map, health)
	}

	var detail strings.Builder
	for _, m := range s.Mobs {
		fmt.Fprintf(&detail, "\n  %s [HP:%d/%d] dealt %d, received %d",
			m.Name, m.Monster.Health, m.Monster.MaxHealth, m.Monster.DmgDealt, m.Monster.DmgReceived)
	}
	return types.Message{Broadcast: broadcast, Private: private + detail.String(), To: c.ID}
}

func pvpMessages(a, d *types.Character, enc *battle.Encounter, s battle.Summary, aExp, dExp int) []types.Message {
	aName, dName := messages.DisplayName(a, true), messages.DisplayName(d, true)
	aHealth := fmt.Sprintf("[HP:%d/%d]-[DMG:%d]", a.Health, stats.MaxHealth(a.Level), enc.AttackerDamage)
	dHealth := fmt.Sprintf("[HP:%d/%d]-[DMG:%d]", d.Health, stats.MaxHealth(d.Level), enc.DefenderDamage)

	var broadcast, aPrivate, dPrivate string
	switch s.Outcome {
	case types.OutcomeWin:
		broadcast = fmt.Sprintf("[%s] %s just killed %s with %s %s! %s vs %s",
			a.Map, aName, dName, messages.Pronoun(a.Gender, messages.His), a.Equipment.Weapon.Name, aHealth, dHealth)
		aPrivate = fmt.Sprintf("You killed %s! You gained %d exp.", messages.Titled(d), aExp)
		dPrivate = fmt.Sprintf("%s attacked and killed you! You gained %d exp.", messages.Titled(a), dExp)
	case types.OutcomeFled:
		fled, from := aName, dName
		if !s.YouFled {
			fled, from = dName, aName
		}
		broadcast = fmt.Sprintf("[%s] %s fled from %s! %s vs %s", a.Map, fled, from, aHealth, dHealth)
		aPrivate = fmt.Sprintf("Your fight with %s ended with someone fleeing. You gained %d exp.", messages.Titled(d), aExp)
		dPrivate = fmt.Sprintf("%s attacked you and the fight ended with someone fleeing. You gained %d exp.", messages.Titled(a), dExp)
	case types.OutcomeLost:
		broadcast = fmt.Sprintf("[%s] %s attacked %s and was killed! %s vs %s", a.Map, aName, dName, aHealth, dHealth)
		aPrivate = fmt.Sprintf("You attacked %s and were killed! You gained %d exp.", messages.Titled(d), aExp)
		dPrivate = fmt.Sprintf("%s attacked you and you won! You gained %d exp.", messages.Titled(a), dExp)
	}
	return []types.Message{
		{Broadcast: broadcast, Private: aPrivate, To: a.ID},
		{Private: dPrivate, To: d.ID},
	}
}

// mobNames joins the names of the monsters with the given outcome as
// "A", "A and B" or "A, B and C".
func mobNames(mobs []types.MobResult, outcome types.Outcome) string {
	var names []string
	for _, m := range mobs {
		if m.Outcome == outcome {
			names = append(names, m.Name)
		}
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

func allYouFled(mobs []types.MobResult) bool {
	for _, m := range mobs {
		if m.Outcome == types.OutcomeFled && !m.YouFled {
			return false
		}
	}
	return true
}
