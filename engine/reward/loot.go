package reward

import (
	"math"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/rng"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/state"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/stats"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Placement records where an item ended up.
type Placement int

const (
	Equipped   Placement = iota + 1 // replaced the equipped item
	Stored                          // appended to the equipment overflow list
	Carried                         // appended to the items list
	LeftBehind                      // items list full, item discarded
)

// Slot returns the equipment slot for pos, or nil for inventory items.
func Slot(e *types.Equipment, pos types.Position) *types.Item {
	switch pos {
	case types.PosHelmet:
		return &e.Helmet
	case types.PosArmor:
		return &e.Armor
	case types.PosWeapon:
		return &e.Weapon
	case types.PosRelic:
		return &e.Relic
	default:
		return nil
	}
}

// IsUpgrade reports whether item rates strictly higher than what c has
// equipped in the same slot. Inventory items are never upgrades.
func IsUpgrade(c *types.Character, item types.Item) bool {
	slot := Slot(&c.Equipment, item.Position)
	if slot == nil {
		return false
	}
	return stats.ItemRating(c, item) > stats.ItemRating(c, *slot)
}

// Place puts a new item on c. Equipment with a strictly higher rating is
// equipped and the replaced item moves to the overflow list; anything else is
// stored there unequipped. Inventory items go to the bounded items list and
// are left behind when it is full. Existing items are never discarded.
func Place(c *types.Character, item types.Item, maxItems int) Placement {
	slot := Slot(&c.Equipment, item.Position)
	if slot == nil {
		if maxItems > 0 && len(c.Inventory.Items) >= maxItems {
			return LeftBehind
		}
		c.Inventory.Items = append(c.Inventory.Items, item)
		return Carried
	}

	if stats.ItemRating(c, item) > stats.ItemRating(c, *slot) {
		old := *slot
		*slot = item
		if !state.IsNothing(old) {
			c.Inventory.Equipment = append(c.Inventory.Equipment, old)
		}
		return Equipped
	}
	c.Inventory.Equipment = append(c.Inventory.Equipment, item)
	return Stored
}

// Drops rolls whether a won encounter yields loot. Luck raises the chance
// above the base 25%.
func Drops(r *rng.RNG, c *types.Character) bool {
	return float64(r.Percent()) < 25+float64(stats.Total(c, stats.Luck))/4
}

// Theft is the outcome of Steal. Exactly one of Item or Gold is meaningful;
// both are zero when the loser had nothing to take.
type Theft struct {
	Item      *types.Item
	Gold      int
	Placement Placement
}

type stealable struct {
	pos   types.Position // equipped slot, or PosInventory for list entries
	list  *[]types.Item
	index int
}

// Steal moves one random equipped or carried item from loser to winner. The
// emptied slot receives the Nothing sentinel and the loser's name is added to
// the item's previous owners, keeping at most ownerCap entries. With nothing
// to take, a sixth of the loser's gold changes hands instead. Carried items
// stay with the loser while the winner's items list is full.
func Steal(r *rng.RNG, winner, loser *types.Character, maxItems, ownerCap int) Theft {
	var candidates []stealable
	for _, pos := range []types.Position{types.PosHelmet, types.PosArmor, types.PosWeapon, types.PosRelic} {
		if !state.IsNothing(*Slot(&loser.Equipment, pos)) {
			candidates = append(candidates, stealable{pos: pos})
		}
	}
	if maxItems <= 0 || len(winner.Inventory.Items) < maxItems {
		for i := range loser.Inventory.Items {
			candidates = append(candidates, stealable{pos: types.PosInventory, list: &loser.Inventory.Items, index: i})
		}
	}
	for i := range loser.Inventory.Equipment {
		candidates = append(candidates, stealable{pos: types.PosInventory, list: &loser.Inventory.Equipment, index: i})
	}

	if len(candidates) == 0 {
		return stealGold(winner, loser)
	}

	pick := rng.Choice(r, candidates)
	var item types.Item
	if pick.list == nil {
		slot := Slot(&loser.Equipment, pick.pos)
		item = *slot
		*slot = state.Nothing(pick.pos)
		if pick.pos == types.PosWeapon {
			slot.AttackType = types.Melee
		}
	} else {
		list := *pick.list
		item = list[pick.index]
		*pick.list = append(list[:pick.index:pick.index], list[pick.index+1:]...)
	}

	item.PreviousOwners = appendOwner(item.PreviousOwners, loser.Name, ownerCap)
	winner.Stole++
	loser.Stolen++

	placement := Place(winner, item, maxItems)
	return Theft{Item: &item, Placement: placement}
}

func stealGold(winner, loser *types.Character) Theft {
	amount := int(math.Ceil(float64(loser.Gold.Current) / 6))
	if amount <= 0 {
		return Theft{}
	}
	loser.Gold.Current -= amount
	loser.Gold.Stolen += amount
	winner.Gold.Current += amount
	winner.Gold.Stole += amount
	winner.Gold.Total += amount
	state.ClampGold(loser)
	return Theft{Gold: amount}
}

func appendOwner(owners []string, name string, limit int) []string {
	out := append(append([]string{}, owners...), name)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
