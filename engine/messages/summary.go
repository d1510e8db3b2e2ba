package messages

import (
	"fmt"
	"strings"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/stats"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

func percent(part, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(part)/float64(total)*100)
}

// StatsSummary renders the character sheet.
func StatsSummary(c *types.Character) string {
	var b strings.Builder
	w := func(format string, args ...any) { fmt.Fprintf(&b, format+"\n", args...) }

	w("Here are your stats!")
	w("  Title: %s", orNone(c.Title))
	w("  Health: %d / %d", c.Health, stats.MaxHealth(c.Level))
	w("  Level: %d", c.Level)
	w("  Personal Multiplier: %dx", c.PersonalMultiplier)
	w("  Experience:")
	w("    Current: %d", c.Experience.Current)
	w("    Lost: %d (%s)", c.Experience.Lost, percent(c.Experience.Lost, c.Experience.Total))
	w("    Total: %d", c.Experience.Total)
	w("    TNL: %d / %d", stats.ExperienceToLevel(c.Level)-c.Experience.Current, stats.ExperienceToLevel(c.Level))
	w("  Gender: %s", c.Gender)
	w("  Gold:")
	w("    Current: %d", c.Gold.Current)
	w("    Lost: %d (%s)", c.Gold.Lost, percent(c.Gold.Lost, c.Gold.Total))
	w("    Stolen from you: %d (%s)", c.Gold.Stolen, percent(c.Gold.Stolen, c.Gold.Total))
	w("    Stole from others: %d (%s)", c.Gold.Stole, percent(c.Gold.Stole, c.Gold.Total))
	w("    Lottery: %d (%s)", c.Gold.DailyLottery, percent(c.Gold.DailyLottery, c.Gold.Total))
	w("    Gambles:")
	w("      Count: %d", c.Gambles)
	w("      Won: %d (%s)", c.Gold.Gambles.Won, percent(c.Gold.Gambles.Won, c.Gold.Total))
	w("      Lost: %d (%s)", c.Gold.Gambles.Lost, percent(c.Gold.Gambles.Lost, c.Gold.Total))
	w("    Total: %d", c.Gold.Total)
	w("  Map: %s", c.Map)
	w("")
	w("  Stats (with equipment):")
	t := stats.Totals(c)
	w("    Strength: %d (%d)", c.Stats.Str, t.Str)
	w("    Dexterity: %d (%d)", c.Stats.Dex, t.Dex)
	w("    Endurance: %d (%d)", c.Stats.End, t.End)
	w("    Intelligence: %d (%d)", c.Stats.Int, t.Int)
	w("    Luck: %d (%d)", c.Stats.Luk, t.Luk)
	if c.Quest != nil {
		w("")
		w("  Quest:")
		w("    Monster: %s", c.Quest.Mob.Name)
		w("    Count: %d", c.Quest.Mob.Count)
		w("    Kills Left: %d", c.Quest.Mob.Count-c.Quest.Mob.KillCount)
		w("    Completed: %d", c.Quest.Completed)
	}
	w("")
	w("  Events: %d", c.Events)
	w("  Items Stolen: %d", c.Stole)
	w("  Items Lost: %d", c.Stolen)
	w("  Spells Cast: %d", c.SpellCast)
	w("  Kills: monsters %d, players %d", c.Kills.Mob, c.Kills.Player)
	w("  Fled: monsters %d, players %d, you %d", c.Fled.Mob, c.Fled.Player, c.Fled.You)
	w("  Battles: won %d, lost %d", c.Battles.Won, c.Battles.Lost)
	fmt.Fprintf(&b, "  Deaths: by monsters %d, by players %d", c.Deaths.Mob, c.Deaths.Player)
	return b.String()
}

// EquipmentSummary renders the four equipped slots.
func EquipmentSummary(c *types.Character) string {
	var b strings.Builder
	e := c.Equipment
	b.WriteString("Here is your equipment!\n")
	fmt.Fprintf(&b, "  Helmet: %s\n    Defense: %g\n%s", e.Helmet.Name, e.Helmet.Power, owners(e.Helmet))
	fmt.Fprintf(&b, "  Armor: %s\n    Defense: %g\n%s", e.Armor.Name, e.Armor.Power, owners(e.Armor))
	fmt.Fprintf(&b, "  Weapon: %s\n    BaseAttackPower: %g\n    AttackPower: %d\n    AttackType: %s\n%s",
		e.Weapon.Name, e.Weapon.Power, stats.ItemRating(c, e.Weapon), e.Weapon.AttackType, owners(e.Weapon))
	r := e.Relic.Bonus
	fmt.Fprintf(&b, "  Relic: %s\n    Stats: str %d, dex %d, end %d, int %d, luk %d\n%s",
		e.Relic.Name, r.Str, r.Dex, r.End, r.Int, r.Luk, owners(e.Relic))
	return strings.TrimRight(b.String(), "\n")
}

// InventorySummary lists unequipped gear and carried items.
func InventorySummary(c *types.Character) string {
	var b strings.Builder
	b.WriteString("Here is your inventory!\n  Equipment:\n")
	for _, it := range c.Inventory.Equipment {
		fmt.Fprintf(&b, "    %s (%s, rating %d)\n", it.Name, it.Position, stats.ItemRating(c, it))
	}
	b.WriteString("  Items:\n")
	for _, it := range c.Inventory.Items {
		fmt.Fprintf(&b, "    %s\n", it.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

// SpellbookSummary lists the character's spells.
func SpellbookSummary(c *types.Character) string {
	var b strings.Builder
	b.WriteString("Here's your spellbook!")
	for _, s := range c.Spells {
		fmt.Fprintf(&b, "\n  %s - %s", s.Name, s.Description)
	}
	return b.String()
}

func owners(it types.Item) string {
	if len(it.PreviousOwners) == 0 {
		return ""
	}
	return "    Previous Owners: " + strings.Join(it.PreviousOwners, ", ") + "\n"
}

func orNone(s string) string {
	if s == "" {
		return noTitle
	}
	return s
}
