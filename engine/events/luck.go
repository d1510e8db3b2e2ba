package events

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/messages"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/reward"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/state"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/stats"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// The seven gods, equally weighted.
const (
	Hades = iota + 1
	Zeus
	Aseco
	Hermes
	Athena
	Eris
	Dionysus
)

// Gods rolls one of the seven god events.
func (d *Dispatcher) Gods(c *types.Character) (Resolution, error) {
	return d.God(c, d.rng.Between(Hades, Dionysus))
}

// God resolves a specific god event.
func (d *Dispatcher) God(c *types.Character, god int) (Resolution, error) {
	var res Resolution
	name := messages.DisplayName(c, true)
	him := messages.Pronoun(c.Gender, messages.Him)
	his := messages.Pronoun(c.Gender, messages.His)
	he := messages.Pronoun(c.Gender, messages.He)

	switch god {
	case Hades:
		amount := d.rng.Between(5, 15+c.Level*2)
		c.Experience.Current -= amount
		c.Experience.Lost += amount
		if c.Experience.Current < 0 {
			c.Experience.Current = 0
		}
		res.say(
			fmt.Sprintf("Hades unleashed his wrath upon %s making %s lose %d experience!", name, him, amount),
			fmt.Sprintf("Hades unleashed his wrath upon you making you lose %d experience", amount))

	case Zeus:
		amount := d.rng.Between(5, 50+c.Level*2)
		c.Health -= amount
		res.say(
			fmt.Sprintf("%s was struck down by a thunderbolt from Zeus and lost %d health because of that!", name, amount),
			fmt.Sprintf("Zeus struck you down with his thunderbolt and you lost %d health", amount))
		d.deathCheck(c, &res)

	case Aseco:
		deficit := stats.MaxHealth(c.Level) - c.Health
		if deficit > 0 {
			heal := int(math.Round(float64(deficit) / 3))
			c.Health += heal
			res.say(
				fmt.Sprintf("Fortune smiles upon %s as Aseco cured %s sickness and restored %s %d health!", name, his, him, heal),
				fmt.Sprintf("Aseco healed you for %d", heal))
			break
		}
		res.say(
			fmt.Sprintf("Aseco gave %s an elixir of life but it caused no effect on %s. Actually it tasted like wine!", name, him),
			"Aseco wanted to heal you, but you had full health")

	case Hermes:
		taken := int(math.Ceil(float64(c.Gold.Current) / 6))
		if taken <= 0 {
			res.say(
				fmt.Sprintf("Hermes demanded some gold from %s but as %s had no money, Hermes left %s alone.", name, he, him),
				"Hermes demanded gold from you but you had nothing to give")
			break
		}
		c.Gold.Current -= taken
		c.Gold.Lost += taken
		state.ClampGold(c)
		res.say(
			fmt.Sprintf("Hermes took %d gold from %s by force. Probably he is just out of humor.", taken, name),
			fmt.Sprintf("Hermes took %d gold from you. It will be spent in favor of Greek pantheon. He promises!", taken))

	case Athena:
		amount := d.rng.Between(5, 15+c.Level*2)
		reward.Grant(c, reward.Gains{Experience: amount})
		res.say(
			fmt.Sprintf("Athena shared her wisdom with %s making %s gain %d experience!", name, him, amount),
			fmt.Sprintf("Athena shared her wisdom with you making you gain %d experience", amount))
		d.levelCheck(c, &res)

	case Eris:
		spell, err := d.content.GenerateSpell(c)
		if err != nil {
			return res, err
		}
		if !Learn(c, spell) {
			return res, nil
		}
		res.say(
			fmt.Sprintf("Eris has given %s a scroll containing %s to add to %s spellbook!", name, spell.Name, his),
			fmt.Sprintf("Eris gave you a scroll of %s", spell.Name))

	case Dionysus:
		amount := d.rng.Between(1, 3)
		timer := d.cfg.BoostTimerMinutes
		if timer < 1 {
			timer = 1
		}
		minutes := d.rng.Between(timer, timer*15)
		res.Boost = Boost(c, amount, d.now().Add(time.Duration(minutes)*time.Minute))
		res.say(
			fmt.Sprintf("Dionysus has partied with %s increasing %s multiplier by %d for %d minutes!", name, his, amount, minutes),
			fmt.Sprintf("Dionysus partied with you increasing your multiplier by %d for %d minutes!", amount, minutes))

	default:
		return res, fmt.Errorf("unknown god event %d", god)
	}
	return res, nil
}

// Boost sets a personal multiplier on c until expiresAt. The multiplier to
// restore on expiry is the one in force before any active boost, so
// overlapping boosts unwind to the original value.
func Boost(c *types.Character, amount int, expiresAt time.Time) *types.PersonalBoost {
	previous := c.PersonalMultiplier
	if c.Boost != nil {
		previous = c.Boost.Previous
	}
	c.PersonalMultiplier = amount
	c.Boost = &types.PersonalBoost{Amount: amount, Previous: previous, ExpiresAt: expiresAt}
	b := *c.Boost
	return &b
}

// Learn adds spell to c's spellbook. A spell sharing the same base name (the
// part after the first word, so "Minor Fireball" and "Greater Fireball"
// match) is replaced only by a more powerful one. Reports whether the
// spellbook changed.
func Learn(c *types.Character, spell types.Spell) bool {
	base := baseSpellName(spell.Name)
	for i, owned := range c.Spells {
		if baseSpellName(owned.Name) != base {
			continue
		}
		if spell.Power > owned.Power {
			c.Spells[i] = spell
			return true
		}
		return false
	}
	c.Spells = append(c.Spells, spell)
	return true
}

func baseSpellName(name string) string {
	if _, rest, ok := strings.Cut(name, " "); ok && rest != "" {
		return rest
	}
	return name
}

// Item is the luck item event: a low roll grants a spell scroll, a slightly
// higher one an item. Luck widens both windows.
func (d *Dispatcher) Item(c *types.Character) (Resolution, error) {
	var res Resolution
	dice := float64(d.rng.Percent())
	luck := float64(stats.Total(c, stats.Luck)) / 4

	switch {
	case dice <= 15+luck:
		spell, err := d.content.GenerateSpell(c)
		if err != nil {
			return res, err
		}
		if Learn(c, spell) {
			name := messages.DisplayName(c, true)
			res.say(
				fmt.Sprintf("[%s] %s found a scroll containing %s!", c.Map, name, spell.Name),
				fmt.Sprintf("You found a scroll of %s in %s", spell.Name, c.Map))
		}

	case dice <= 30+luck:
		item, err := d.content.GenerateItem(c)
		if err != nil {
			return res, err
		}
		tok := messages.For(c)
		tok.Item = item.Name
		res.add(tok.Apply(d.catalogue.Pick(d.rng, messages.ItemFound)))
		if reward.Place(c, item, d.cfg.MaxItems) == reward.LeftBehind {
			res.say("", fmt.Sprintf("Your bag was full so you left %s behind", item.Name))
		}
	}
	return res, nil
}

// Gold is the luck gold event: a 25% chance to find gold scaled by luck and
// the multiplier.
func (d *Dispatcher) Gold(c *types.Character, multiplier int) Resolution {
	var res Resolution
	if d.rng.Percent() < 75 {
		return res
	}
	dice := d.rng.Between(5, 100)
	amount := int(math.Round(float64(dice*stats.Total(c, stats.Luck))/2)) * multiplier
	if amount <= 0 {
		return res
	}
	reward.Grant(c, reward.Gains{Gold: amount})
	res.say(
		fmt.Sprintf("[%s] %s found %d gold!", c.Map, messages.DisplayName(c, true), amount),
		fmt.Sprintf("Found %d gold in %s", amount, c.Map))
	return res
}

// Stake is the gambling stake for a purse: floor(2*(ln(gold)*gold)/100).
func Stake(gold int) int {
	if gold < 1 {
		return 0
	}
	g := float64(gold)
	return int(math.Floor(2 * (math.Log(g) * g) / 100))
}

// Gamble is the gambling event. The character stakes a share of its purse
// and loses when the roll is at or under 50 minus a quarter of luck.
func (d *Dispatcher) Gamble(c *types.Character) Resolution {
	return d.gamble(c, float64(d.rng.Percent()))
}

func (d *Dispatcher) gamble(c *types.Character, chance float64) Resolution {
	var res Resolution
	stake := Stake(c.Gold.Current)
	if stake <= 0 || c.Gold.Current < stake {
		return res
	}
	c.Gambles++

	tok := messages.For(c)
	tok.Gold = stake
	if chance <= 50-float64(stats.Total(c, stats.Luck))/4 {
		c.Gold.Current -= stake
		c.Gold.Gambles.Lost += stake
		state.ClampGold(c)
		res.add(tok.Apply(d.catalogue.Pick(d.rng, messages.GambleLose)))
		return res
	}
	c.Gold.Current += stake
	c.Gold.Total += stake
	c.Gold.Gambles.Won += stake
	res.add(tok.Apply(d.catalogue.Pick(d.rng, messages.GambleWin)))
	return res
}

// Snowflake gives a 6% chance during a blizzard to catch a snowflake relic,
// equipped only when it beats the current relic.
func (d *Dispatcher) Snowflake(c *types.Character) (Resolution, error) {
	var res Resolution
	if d.rng.Percent() > 5 {
		return res, nil
	}
	flake, err := d.content.GenerateSnowflake(c)
	if err != nil {
		return res, err
	}
	flake.Position = types.PosRelic
	if !reward.IsUpgrade(c, flake) {
		return res, nil
	}
	reward.Place(c, flake, d.cfg.MaxItems)
	tok := messages.For(c)
	tok.Item = flake.Name
	res.add(tok.Apply(d.catalogue.Pick(d.rng, messages.Snowflake)))
	return res, nil
}

func (d *Dispatcher) levelCheck(c *types.Character, res *Resolution) {
	ups := state.CheckExperience(c, d.rng)
	for _, up := range ups {
		res.add(messages.LevelUp(c, up.Level, up.Stat))
	}
	res.LevelUps = append(res.LevelUps, ups...)
}

func (d *Dispatcher) deathCheck(c *types.Character, res *Resolution) {
	death, died := state.CheckHealth(c, state.KilledByMob, d.cfg.RespawnTown)
	if !died {
		return
	}
	res.Died = true
	res.add(messages.Death(c, "", death.ExpLost, death.GoldLost))
}
