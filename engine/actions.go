package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/effects"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/events"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/messages"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/quest"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/reward"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/rng"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/state"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// resolved converts an event resolution on hero into a result. An event
// that rolled nothing is a no-op.
func resolved(hero *types.Character, r events.Resolution) types.Result {
	if !r.Happened {
		return types.Result{}
	}
	hero.Events++
	for i := range r.Messages {
		if r.Messages[i].To == "" {
			r.Messages[i].To = hero.ID
		}
	}
	return types.Result{Character: hero, Messages: r.Messages, Boost: r.Boost}
}

// Gods rolls one of the seven god events.
func (e *Engine) Gods(c *types.Character) (res types.Result) {
	defer e.guard("gods", c, &res)
	hero := state.Clone(c)
	r, err := e.events.Gods(hero)
	if err != nil {
		return e.skip("gods", c, err)
	}
	return resolved(hero, r)
}

// LuckItem is the luck item event: a spell scroll or an item.
func (e *Engine) LuckItem(c *types.Character) (res types.Result) {
	defer e.guard("item", c, &res)
	hero := state.Clone(c)
	r, err := e.events.Item(hero)
	if err != nil {
		return e.skip("item", c, err)
	}
	return resolved(hero, r)
}

// LuckGold is the luck gold event, scaled by the effective multiplier.
func (e *Engine) LuckGold(c *types.Character, g *types.GuildConfig) (res types.Result) {
	defer e.guard("gold", c, &res)
	hero := state.Clone(c)
	return resolved(hero, e.events.Gold(hero, reward.Multiplier(g, hero)))
}

// Gamble is the gambling event.
func (e *Engine) Gamble(c *types.Character) (res types.Result) {
	defer e.guard("gamble", c, &res)
	hero := state.Clone(c)
	return resolved(hero, e.events.Gamble(hero))
}

// Camp is the message-only rest event.
func (e *Engine) Camp(c *types.Character) (res types.Result) {
	defer e.guard("camp", c, &res)
	hero := state.Clone(c)
	return resolved(hero, e.events.Camp(hero))
}

// Snowflake gives c a chance to catch a snowflake while g has a blizzard.
func (e *Engine) Snowflake(c *types.Character, g *types.GuildConfig) (res types.Result) {
	defer e.guard("snowflake", c, &res)
	if g == nil || !g.BlizzardActive {
		return types.Result{}
	}
	hero := state.Clone(c)
	r, err := e.events.Snowflake(hero)
	if err != nil {
		return e.skip("snowflake", c, err)
	}
	return resolved(hero, r)
}

// Sell sells c's overflow equipment.
func (e *Engine) Sell(c *types.Character) (res types.Result) {
	defer e.guard("sell", c, &res)
	hero := state.Clone(c)
	return resolved(hero, e.events.Sell(hero))
}

// Purchase offers c an item from the town shop.
func (e *Engine) Purchase(c *types.Character) (res types.Result) {
	defer e.guard("purchase", c, &res)
	hero := state.Clone(c)
	r, err := e.events.Purchase(hero)
	if err != nil {
		return e.skip("purchase", c, err)
	}
	return resolved(hero, r)
}

// Quest has the quest master assign c a quest. An active quest is replaced
// only when force is set.
func (e *Engine) Quest(c *types.Character, force bool) (res types.Result) {
	defer e.guard("quest", c, &res)
	hero := state.Clone(c)
	r, err := e.events.Quest(hero, force)
	if err != nil {
		return e.skip("quest", c, err)
	}
	return resolved(hero, r)
}

// ResetQuest re-rolls c's quest once it is older than QuestResetAge.
func (e *Engine) ResetQuest(c *types.Character) (res types.Result) {
	defer e.guard("reroll", c, &res)
	if !quest.Active(c) {
		return declined(c, "I'm sorry but you have no quest.")
	}
	if !quest.CanReset(c, e.now(), e.cfg.QuestResetAge) {
		return declined(c, "I'm sorry but you must have a quest at least %d days old", int(e.cfg.QuestResetAge.Hours()/24))
	}

	hero := state.Clone(c)
	old := hero.Quest.Mob.Name
	mob, err := quest.Reroll(hero, e.rng, func() (types.Monster, error) {
		return e.content.GenerateQuestMonster(hero)
	}, e.now())
	if err != nil {
		return e.skip("reroll", c, err)
	}
	return types.Result{
		Character: hero,
		Messages: []types.Message{{
			Private: fmt.Sprintf("Quest %s has been changed to %s\nCount: %d", old, mob.Name, mob.Count),
			To:      hero.ID,
		}},
	}
}

// CastBless spends gold on bless stacks for c's guild. amount is a number
// of stacks or "all" for as many as c can afford. The new stack expires
// after BlessDuration; Result.Bless carries it for scheduling.
func (e *Engine) CastBless(c *types.Character, g *types.GuildConfig, amount string) (res types.Result) {
	defer e.guard("bless", c, &res)
	cost := e.cfg.BlessCost

	var n int
	switch {
	case amount == "":
		n = 1
	case strings.EqualFold(amount, "all"):
		if cost > 0 {
			n = c.Gold.Current / cost
		}
	default:
		v, err := strconv.Atoi(strings.TrimSpace(amount))
		if err != nil || v == 0 || v == math.MinInt {
			return declined(c, "You must cast a valid amount")
		}
		n = max(v, -v)
	}
	if n < 1 {
		return declined(c, "You do not have enough gold! This spell costs %d gold. You're lacking %d gold.", cost, cost-c.Gold.Current)
	}
	if cost > 0 && n > c.Gold.Current/cost {
		if n > math.MaxInt/cost {
			return declined(c, "You do not have enough gold! You can afford at most %d casts.", c.Gold.Current/cost)
		}
		return declined(c, "You do not have enough gold! This spell costs %d gold. You're lacking %d gold.", cost, cost*n-c.Gold.Current)
	}

	hero := state.Clone(c)
	guild := state.CloneGuild(g)
	hero.Gold.Current -= cost * n
	hero.SpellCast += n
	eff := effects.Bless(guild, e.nextID("bless"), messages.Titled(hero), n, e.now().Add(e.cfg.BlessDuration))

	e.log.Info("bless cast",
		zap.String("character", hero.ID),
		zap.String("guild", guild.GuildID),
		zap.Int("amount", n),
		zap.Int("multiplier", guild.Multiplier))

	stacks := " "
	if n > 1 {
		stacks = fmt.Sprintf(" %dx ", n)
	}
	return types.Result{
		Character: hero,
		Guild:     guild,
		Bless:     &eff,
		Messages: []types.Message{{
			Broadcast: fmt.Sprintf("%s just cast%sbless!!\nCurrent Active Bless: %d\nCurrent Multiplier is: %dx",
				messages.Titled(hero), stacks, guild.ActiveBless, guild.Multiplier),
			Private: fmt.Sprintf("You cast%sbless for %d gold.", stacks, cost*n),
			To:      hero.ID,
		}},
	}
}

// CastHome teleports c to a random town for HomeCost gold.
func (e *Engine) CastHome(c *types.Character) (res types.Result) {
	defer e.guard("home", c, &res)
	cost := e.cfg.HomeCost
	if c.Gold.Current < cost {
		return declined(c, "You do not have enough gold! This spell costs %d gold. You are lacking %d gold.", cost, cost-c.Gold.Current)
	}
	towns := e.content.Towns()
	if len(towns) == 0 {
		return e.skip("home", c, fmt.Errorf("no towns defined"))
	}

	hero := state.Clone(c)
	hero.Gold.Current -= cost
	hero.SpellCast++
	hero.Map = rng.Choice(e.rng, towns)
	return types.Result{
		Character: hero,
		Messages: []types.Message{{
			Broadcast: fmt.Sprintf("%s just cast home and teleported back to %s.", messages.Titled(hero), hero.Map),
			Private:   fmt.Sprintf("Teleported back to %s.", hero.Map),
			To:        hero.ID,
		}},
	}
}

// JoinLottery enters c into today's lottery for LotteryCost gold.
func (e *Engine) JoinLottery(c *types.Character, g *types.GuildConfig) (res types.Result) {
	defer e.guard("lottery", c, &res)
	if c.Lottery.Joined {
		return declined(c, "You've already joined todays daily lottery!")
	}
	if c.Gold.Current < e.cfg.LotteryCost {
		return declined(c, "You do not have enough gold to join the lottery!")
	}

	hero := state.Clone(c)
	guild := state.CloneGuild(g)
	hero.Lottery.Joined = true
	hero.Lottery.Amount += e.cfg.LotteryCost
	hero.Gold.Current -= e.cfg.LotteryCost
	guild.LotteryPrize += e.cfg.LotteryCost
	guild.LotteryEntrants = append(guild.LotteryEntrants, hero.ID)
	return types.Result{
		Character: hero,
		Guild:     guild,
		Messages: []types.Message{{
			Private: "You have joined todays daily lottery! Good luck!",
			To:      hero.ID,
		}},
	}
}

// LotteryStatus describes the current prize pool.
func LotteryStatus(g *types.GuildConfig) string {
	return fmt.Sprintf("There are %d contestants for a prize pool of %d gold!", len(g.LotteryEntrants), g.LotteryPrize)
}

// MultiplierStatus describes the guild multiplier and active bless stacks.
func MultiplierStatus(g *types.GuildConfig) string {
	return fmt.Sprintf("Current Multiplier: %dx\nActive Bless: %dx", g.Multiplier, g.ActiveBless)
}

// DrawLottery picks a winner among entrants, pays out the prize pool and
// resets the lottery. The winner is Result.Character; every other entrant
// is in Result.Others. Without entrants nothing happens.
func (e *Engine) DrawLottery(g *types.GuildConfig, entrants []*types.Character) (res types.Result) {
	defer e.guard("draw", nil, &res)
	if len(entrants) == 0 {
		return types.Result{}
	}

	guild := state.CloneGuild(g)
	players := make([]*types.Character, len(entrants))
	for i, c := range entrants {
		players[i] = state.Clone(c)
		players[i].Lottery.Joined = false
	}
	i := e.rng.Between(0, len(players)-1)
	winner := players[i]
	prize := guild.LotteryPrize
	winner.Gold.Current += prize
	winner.Gold.Total += prize
	winner.Gold.DailyLottery += prize

	guild.LotteryPrize = e.cfg.LotteryPrize
	guild.LotteryEntrants = []string{}

	others := append(append([]*types.Character{}, players[:i]...), players[i+1:]...)
	res = types.Result{
		Character: winner,
		Others:    others,
		Guild:     guild,
		Messages: []types.Message{{
			Broadcast: fmt.Sprintf("Out of %d contestants, %s has won the daily lottery of %d gold!",
				len(players), messages.DisplayName(winner, true), prize),
			Private: fmt.Sprintf("Congratulations! Out of %d contestants, you just won %d gold from the daily lottery!",
				len(players), prize),
			To: winner.ID,
		}},
	}
	for _, o := range others {
		res.Messages = append(res.Messages, types.Message{
			Private: fmt.Sprintf("Thank you for participating in the lottery! Unfortunately %s has won the prize of %d out of %d people.",
				messages.Titled(winner), prize, len(players)),
			To: o.ID,
		})
	}
	return res
}

// StartBlizzard starts a blizzard over g lasting between BlizzardMin and
// BlizzardMax. A raging blizzard is left alone.
func (e *Engine) StartBlizzard(g *types.GuildConfig) (res types.Result) {
	defer e.guard("blizzard", nil, &res)
	if g.BlizzardActive {
		return types.Result{}
	}
	guild := state.CloneGuild(g)
	minutes := e.rng.Between(int(e.cfg.BlizzardMin.Minutes()), int(e.cfg.BlizzardMax.Minutes()))
	effects.StartBlizzard(guild, e.now().Add(time.Duration(minutes)*time.Minute))
	msg := messages.For(&types.Character{}).Apply(e.catalogue.Pick(e.rng, messages.BlizzardOn))
	return types.Result{Guild: guild, Messages: []types.Message{msg}}
}

// BlizzardFarewell is the announcement made when a blizzard ends.
func (e *Engine) BlizzardFarewell() string {
	return e.catalogue.Pick(e.rng, messages.BlizzardOff).Broadcast
}

// Move walks c to a random map. Landing where it already stood turns into
// a quest in town or a fight in the wilds. During a blizzard the walk may
// catch a snowflake.
func (e *Engine) Move(c *types.Character, g *types.GuildConfig) (res types.Result) {
	defer e.guard("move", c, &res)
	maps := e.content.Maps()
	if len(maps) == 0 {
		return types.Result{}
	}
	dest := rng.Choice(e.rng, maps)
	if dest == c.Map {
		if e.content.IsTown(dest) {
			return e.Quest(c, false)
		}
		return e.AttackMob(c, g)
	}

	hero := state.Clone(c)
	from := hero.Map
	hero.Map = dest
	direction := rng.Choice(e.rng, directions)
	res = types.Result{
		Character: hero,
		Messages: []types.Message{{
			Broadcast: fmt.Sprintf("%s decided to head %s from %s and arrived in %s.",
				messages.DisplayName(hero, false), direction, from, dest),
			Private: fmt.Sprintf("You travelled %s from %s and arrived in %s.", direction, from, dest),
			To:      hero.ID,
		}},
	}
	if snow := e.Snowflake(hero, g); snow.Character != nil {
		res.Character = snow.Character
		res.Messages = append(res.Messages, snow.Messages...)
	}
	return res
}

var directions = []string{"north", "south", "east", "west"}

// Tick kinds and their weights.
const (
	tickMove = iota
	tickAttack
	tickLuck
)

var tickWeights = []int{45, 30, 25}

// Tick advances c by one idle step: a move, a fight or a luck event, chosen
// by weight. rivals are the other characters sharing c's map; a fight picks
// one of them half of the time.
func (e *Engine) Tick(c *types.Character, g *types.GuildConfig, rivals []*types.Character) (res types.Result) {
	defer e.guard("tick", c, &res)
	if c.Health <= 0 {
		// Stored health is never left at zero; normalise a corrupt record
		// by sending it through the death check.
		hero := state.Clone(c)
		res = types.Result{Character: hero}
		e.deathCheck(hero, "", state.KilledByMob, &res)
		return res
	}

	switch e.rng.WeightedSelect(tickWeights) {
	case tickMove:
		return e.Move(c, g)
	case tickAttack:
		if len(rivals) > 0 && e.rng.Bool() {
			return e.AttackPlayer(c, rng.Choice(e.rng, rivals), g)
		}
		return e.AttackMob(c, g)
	default:
		if e.content.IsTown(c.Map) {
			return e.TownEvent(c)
		}
		return e.LuckEvent(c, g)
	}
}

// Luck event kinds.
const (
	luckGods = iota
	luckGold
	luckItem
	luckGamble
	luckCamp
)

var luckWeights = []int{2, 3, 3, 2, 2}

// LuckEvent rolls one of the luck events.
func (e *Engine) LuckEvent(c *types.Character, g *types.GuildConfig) types.Result {
	switch e.rng.WeightedSelect(luckWeights) {
	case luckGods:
		return e.Gods(c)
	case luckGold:
		return e.LuckGold(c, g)
	case luckItem:
		return e.LuckItem(c)
	case luckGamble:
		return e.Gamble(c)
	default:
		return e.Camp(c)
	}
}

// TownEvent rolls one of the town events: selling, shopping or the quest
// master.
func (e *Engine) TownEvent(c *types.Character) types.Result {
	switch e.rng.Between(0, 2) {
	case 0:
		return e.Sell(c)
	case 1:
		return e.Purchase(c)
	default:
		return e.Quest(c, false)
	}
}
