// Package state copies, normalises and advances character records: level
// ups from experience and death handling from health.
package state

import (
	"time"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/rng"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/stats"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Nothing returns the sentinel item for an empty slot.
func Nothing(pos types.Position) types.Item {
	return types.Item{Name: types.NothingName, Position: pos}
}

// IsNothing reports whether item is the empty-slot sentinel.
func IsNothing(item types.Item) bool {
	return item.Name == "" || item.Name == types.NothingName
}

// EmptyQuest returns a quest record with no active target.
func EmptyQuest(now time.Time) *types.Quest {
	return &types.Quest{Mob: types.QuestMob{Name: types.NoQuest}, UpdatedAt: now}
}

// NewCharacter creates a level 1 character standing in town.
func NewCharacter(id, guildID, name, town string, now time.Time) *types.Character {
	c := &types.Character{
		ID:      id,
		GuildID: guildID,
		Name:    name,
		Gender:  "neutral",
		Mention: "off",
		Level:   1,
		Health:  stats.MaxHealth(1),
		Stats:   types.Stats{Str: 1, Dex: 1, End: 1, Int: 1, Luk: 1},
		Map:     town,
		Quest:   EmptyQuest(now),
	}
	Normalize(c)
	return c
}

// Clone returns a deep copy of c. Engine operations work on clones so a
// failed operation never leaves a half-updated input behind.
func Clone(c *types.Character) *types.Character {
	if c == nil {
		return nil
	}
	out := *c
	out.Equipment = types.Equipment{
		Helmet: cloneItem(c.Equipment.Helmet),
		Armor:  cloneItem(c.Equipment.Armor),
		Weapon: cloneItem(c.Equipment.Weapon),
		Relic:  cloneItem(c.Equipment.Relic),
	}
	out.Inventory.Items = cloneItems(c.Inventory.Items)
	out.Inventory.Equipment = cloneItems(c.Inventory.Equipment)
	if c.Spells != nil {
		out.Spells = append([]types.Spell{}, c.Spells...)
	}
	if c.Quest != nil {
		q := *c.Quest
		out.Quest = &q
	}
	if c.Boost != nil {
		b := *c.Boost
		out.Boost = &b
	}
	return &out
}

// CloneGuild returns a deep copy of g.
func CloneGuild(g *types.GuildConfig) *types.GuildConfig {
	if g == nil {
		return nil
	}
	out := *g
	if g.Blessings != nil {
		out.Blessings = append([]types.BlessEffect{}, g.Blessings...)
	}
	if g.LotteryEntrants != nil {
		out.LotteryEntrants = append([]string{}, g.LotteryEntrants...)
	}
	return &out
}

func cloneItem(it types.Item) types.Item {
	if it.PreviousOwners != nil {
		it.PreviousOwners = append([]string{}, it.PreviousOwners...)
	}
	return it
}

func cloneItems(items []types.Item) []types.Item {
	if items == nil {
		return nil
	}
	out := make([]types.Item, len(items))
	for i, it := range items {
		out[i] = cloneItem(it)
	}
	return out
}

// Normalize fills zero values a freshly decoded record may lack: empty slots
// get the Nothing sentinel, nil lists become empty, a missing quest becomes
// the None quest and level is at least 1.
func Normalize(c *types.Character) {
	fill := func(it *types.Item, pos types.Position) {
		if it.Name == "" {
			*it = Nothing(pos)
		}
		if it.Position == "" {
			it.Position = pos
		}
	}
	fill(&c.Equipment.Helmet, types.PosHelmet)
	fill(&c.Equipment.Armor, types.PosArmor)
	fill(&c.Equipment.Weapon, types.PosWeapon)
	fill(&c.Equipment.Relic, types.PosRelic)
	if c.Equipment.Weapon.AttackType == "" {
		c.Equipment.Weapon.AttackType = types.Melee
	}

	if c.Inventory.Items == nil {
		c.Inventory.Items = []types.Item{}
	}
	if c.Inventory.Equipment == nil {
		c.Inventory.Equipment = []types.Item{}
	}
	if c.Spells == nil {
		c.Spells = []types.Spell{}
	}
	if c.Quest == nil {
		c.Quest = EmptyQuest(time.Time{})
	}
	if c.Quest.Mob.Name == "" {
		c.Quest.Mob = types.QuestMob{Name: types.NoQuest}
	}
	if c.Level < 1 {
		c.Level = 1
	}
	if c.Mention == "" {
		c.Mention = "off"
	}
}

// NormalizeGuild applies defaults to a guild record.
func NormalizeGuild(g *types.GuildConfig, defaultPrize int) {
	if g.Multiplier < 1 {
		g.Multiplier = 1
	}
	if g.ActiveBless < 0 {
		g.ActiveBless = 0
	}
	if g.Blessings == nil {
		g.Blessings = []types.BlessEffect{}
	}
	if g.LotteryEntrants == nil {
		g.LotteryEntrants = []string{}
	}
	if g.LotteryPrize <= 0 {
		g.LotteryPrize = defaultPrize
	}
}

// LevelUp records one level gained and the stat it raised.
type LevelUp struct {
	Level int
	Stat  string
}

var statNames = []string{stats.Strength, stats.Dexterity, stats.Endurance, stats.Intelligence, stats.Luck}

// CheckExperience levels c up while current experience reaches the
// threshold. The remainder carries over, one random stat rises per level
// and health refills to the new maximum.
func CheckExperience(c *types.Character, r *rng.RNG) []LevelUp {
	var ups []LevelUp
	for c.Experience.Current >= stats.ExperienceToLevel(c.Level) {
		c.Experience.Current -= stats.ExperienceToLevel(c.Level)
		c.Level++
		stat := rng.Choice(r, statNames)
		raiseStat(&c.Stats, stat)
		c.Health = stats.MaxHealth(c.Level)
		ups = append(ups, LevelUp{Level: c.Level, Stat: stat})
	}
	return ups
}

func raiseStat(s *types.Stats, name string) {
	switch name {
	case stats.Strength:
		s.Str++
	case stats.Dexterity:
		s.Dex++
	case stats.Endurance:
		s.End++
	case stats.Intelligence:
		s.Int++
	case stats.Luck:
		s.Luk++
	}
}

// Killer is the kind of opponent that landed the killing blow.
type Killer int

const (
	KilledByMob Killer = iota
	KilledByPlayer
)

// Death describes what a character lost on dying.
type Death struct {
	ExpLost  int
	GoldLost int
}

// CheckHealth clamps health and, if the character is dead, applies the death
// penalty and respawns it at full health in town.
func CheckHealth(c *types.Character, killer Killer, town string) (Death, bool) {
	if c.Health > 0 {
		return Death{}, false
	}
	c.Health = 0

	switch killer {
	case KilledByPlayer:
		c.Deaths.Player++
	default:
		c.Deaths.Mob++
	}

	d := Death{
		ExpLost:  c.Experience.Current,
		GoldLost: c.Gold.Current / 6,
	}
	c.Experience.Current = 0
	c.Experience.Lost += d.ExpLost
	c.Gold.Current -= d.GoldLost
	c.Gold.Lost += d.GoldLost

	c.Health = stats.MaxHealth(c.Level)
	if town != "" {
		c.Map = town
	}
	return d, true
}

// ClampHealth keeps health within [0, max].
func ClampHealth(c *types.Character) {
	if c.Health < 0 {
		c.Health = 0
	}
	if max := stats.MaxHealth(c.Level); c.Health > max {
		c.Health = max
	}
}

// ClampGold keeps current gold non-negative.
func ClampGold(c *types.Character) {
	if c.Gold.Current < 0 {
		c.Gold.Current = 0
	}
}
