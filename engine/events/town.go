package events

import (
	"fmt"
	"math"
	"strings"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/messages"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/quest"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/reward"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Sell sells every piece of overflow equipment for its gold value.
func (d *Dispatcher) Sell(c *types.Character) Resolution {
	var res Resolution
	if len(c.Inventory.Equipment) == 0 {
		return res
	}
	var sum float64
	for _, it := range c.Inventory.Equipment {
		sum += it.Gold
	}
	profit := int(math.Floor(sum))
	c.Inventory.Equipment = []types.Item{}
	reward.Grant(c, reward.Gains{Gold: profit})
	res.say(
		fmt.Sprintf("[%s] %s just sold what they found adventuring for %d gold!", c.Map, messages.DisplayName(c, true), profit),
		fmt.Sprintf("Made %d gold selling what you found adventuring", profit))
	return res
}

// Purchase offers the character a generated item. It buys only when it can
// afford more than the price, the item is not cracked, and the item is
// either an upgrade or fits in the bag.
func (d *Dispatcher) Purchase(c *types.Character) (Resolution, error) {
	var res Resolution
	item, err := d.content.GenerateItem(c)
	if err != nil {
		return res, err
	}
	cost := int(math.Round(item.Gold))
	if c.Gold.Current <= cost || strings.HasPrefix(item.Name, "Cracked") {
		return res, nil
	}

	if reward.Slot(&c.Equipment, item.Position) != nil {
		if !reward.IsUpgrade(c, item) {
			return res, nil
		}
	} else if len(c.Inventory.Items) >= d.cfg.MaxItems {
		return res, nil
	}

	c.Gold.Current -= cost
	reward.Place(c, item, d.cfg.MaxItems)
	res.say(
		fmt.Sprintf("[%s] %s just purchased %s for %d gold!", c.Map, messages.DisplayName(c, true), item.Name, cost),
		fmt.Sprintf("Purchased %s from Town for %d Gold", item.Name, cost))
	return res, nil
}

// Quest has the quest master hand out a new kill quest. An active quest is
// only replaced when force is set.
func (d *Dispatcher) Quest(c *types.Character, force bool) (Resolution, error) {
	var res Resolution
	if quest.Active(c) && !force {
		return res, nil
	}
	mob, err := d.content.GenerateQuestMonster(c)
	if err != nil {
		return res, err
	}
	count := quest.RollCount(d.rng)
	quest.Assign(c, mob.Name, count, d.now())

	amount := "a"
	if count > 1 {
		amount = fmt.Sprint(count)
	}
	res.say(
		fmt.Sprintf("[%s] Quest Master has asked %s to kill %s %s!", c.Map, messages.DisplayName(c, true), amount, mob.Name),
		fmt.Sprintf("Quest Master in %s asked you to kill %s %s.", c.Map, amount, mob.Name))
	return res, nil
}

// Camp is a message-only rest event.
func (d *Dispatcher) Camp(c *types.Character) Resolution {
	var res Resolution
	res.add(messages.For(c).Apply(d.catalogue.Pick(d.rng, messages.Camp)))
	return res
}
