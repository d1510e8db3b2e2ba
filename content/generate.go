package content

import (
	"math"
	"slices"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/state"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/stats"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Item name prefixes and the power factor they apply.
var itemPrefixes = []struct {
	name   string
	factor float64
	weight int
}{
	{"", 1, 60},
	{"Cracked", 0.5, 15},
	{"Sturdy", 1.25, 15},
	{"Legendary", 1.75, 2},
	{"Fine", 1.1, 8},
}

// GenerateMonster spawns a monster for c's map, scaled around c's level.
func (g *Generator) GenerateMonster(c *types.Character) (types.Monster, error) {
	var defs []MonsterDef
	var weights []int
	for _, m := range g.defs.Monsters {
		if m.Level > c.Level {
			continue
		}
		if len(m.Maps) > 0 && !slices.Contains(m.Maps, c.Map) {
			continue
		}
		defs = append(defs, m)
		weights = append(weights, weight(m.Weight))
	}
	i, err := g.pick(weights)
	if err != nil {
		return types.Monster{}, err
	}
	level := c.Level + g.rng.Between(-1, 1)
	if level < 1 {
		level = 1
	}
	return spawn(defs[i], level), nil
}

// GenerateQuestMonster picks a quest target among monsters c can meet
// anywhere in the world.
func (g *Generator) GenerateQuestMonster(c *types.Character) (types.Monster, error) {
	var defs []MonsterDef
	for _, m := range g.defs.Monsters {
		if m.Level <= c.Level {
			defs = append(defs, m)
		}
	}
	if len(defs) == 0 {
		return types.Monster{}, ErrNoCandidate
	}
	i := g.rng.Between(0, len(defs)-1)
	return spawn(defs[i], c.Level), nil
}

func spawn(def MonsterDef, level int) types.Monster {
	scale := func(v int) int { return v + level/2 }
	health := def.Health + level*10
	return types.Monster{
		Name:  def.Name,
		Level: level,
		Stats: types.Stats{
			Str: scale(def.Stats.Str),
			Dex: scale(def.Stats.Dex),
			End: scale(def.Stats.End),
			Int: scale(def.Stats.Int),
			Luk: def.Stats.Luk,
		},
		Equipment: types.Equipment{
			Helmet: state.Nothing(types.PosHelmet),
			Armor:  types.Item{Name: def.Name + " Hide", Position: types.PosArmor, Power: def.Defense + float64(level)/2},
			Weapon: types.Item{Name: def.Name + " Claws", Position: types.PosWeapon, Power: def.Power + float64(level), AttackType: types.Melee},
			Relic:  state.Nothing(types.PosRelic),
		},
		Experience: def.Experience * level,
		Gold:       def.Gold * level,
		Health:     health,
		MaxHealth:  health,
	}
}

// GenerateItem creates an item for c. Power grows with level and a name
// prefix may weaken or strengthen it.
func (g *Generator) GenerateItem(c *types.Character) (types.Item, error) {
	var defs []ItemDef
	var weights []int
	for _, it := range g.defs.Items {
		if it.Level <= c.Level {
			defs = append(defs, it)
			weights = append(weights, weight(it.Weight))
		}
	}
	i, err := g.pick(weights)
	if err != nil {
		return types.Item{}, err
	}
	def := defs[i]

	pw := make([]int, len(itemPrefixes))
	for j, p := range itemPrefixes {
		pw[j] = p.weight
	}
	prefix := itemPrefixes[g.rng.WeightedSelect(pw)]

	item := types.Item{
		Name:       def.Name,
		Position:   def.Position,
		AttackType: def.AttackType,
		Bonus:      def.Bonus,
	}
	if prefix.name != "" {
		item.Name = prefix.name + " " + def.Name
	}
	if def.Position == types.PosWeapon && item.AttackType == "" {
		item.AttackType = types.Melee
	}
	if def.Position != types.PosRelic {
		power := (def.Power + g.rng.Decimal(0, float64(c.Level)/2, 2)) * prefix.factor
		item.Power = roundTo(power, 2)
	}
	item.Gold = math.Round(def.Gold*prefix.factor + float64(c.Level)*item.Power)
	return item, nil
}

// GenerateSpell picks a spell scroll c is high enough level to read.
func (g *Generator) GenerateSpell(c *types.Character) (types.Spell, error) {
	var defs []SpellDef
	var weights []int
	for _, s := range g.defs.Spells {
		if s.Level <= c.Level {
			defs = append(defs, s)
			weights = append(weights, weight(s.Weight))
		}
	}
	i, err := g.pick(weights)
	if err != nil {
		return types.Spell{}, err
	}
	def := defs[i]
	return types.Spell{Name: def.Name, Power: def.Power, Description: def.Description}, nil
}

// GenerateSnowflake creates a snowflake relic. Each bonus stat rolls between
// zero and its definition value plus a fifth of c's level.
func (g *Generator) GenerateSnowflake(c *types.Character) (types.Item, error) {
	if len(g.defs.Snowflakes) == 0 {
		return types.Item{}, ErrNoCandidate
	}
	def := g.defs.Snowflakes[g.rng.Between(0, len(g.defs.Snowflakes)-1)]
	bonus := c.Level / 5
	roll := func(v int) int { return g.rng.Between(0, v+bonus) }
	item := types.Item{
		Name:     def.Name,
		Position: types.PosRelic,
		Bonus: types.Stats{
			Str: roll(def.Bonus.Str),
			Dex: roll(def.Bonus.Dex),
			End: roll(def.Bonus.End),
			Int: roll(def.Bonus.Int),
			Luk: roll(def.Bonus.Luk),
		},
	}
	item.Gold = float64(stats.ItemRating(nil, item) * 10)
	return item, nil
}
