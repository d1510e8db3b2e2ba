package messages

import (
	"fmt"

	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Titled returns c's name with its title, never a mention.
func Titled(c *types.Character) string {
	if c.Title != "" && c.Title != noTitle {
		return c.Name + " the " + c.Title
	}
	return c.Name
}

// LevelUp announces a level gained.
func LevelUp(c *types.Character, level int, stat string) types.Message {
	return types.Message{
		Broadcast: fmt.Sprintf("%s is now level %d!", DisplayName(c, true), level),
		Private:   fmt.Sprintf("You are now level %d! Your %s increased by 1.", level, stat),
	}
}

// Death announces a death and the respawn. killer is empty for deaths that
// have no opponent.
func Death(c *types.Character, killer string, expLost, goldLost int) types.Message {
	broadcast := fmt.Sprintf("%s died and was carried back to %s.", DisplayName(c, true), c.Map)
	if killer != "" {
		broadcast = fmt.Sprintf("%s was slain by %s and carried back to %s.", DisplayName(c, true), killer, c.Map)
	}
	return types.Message{
		Broadcast: broadcast,
		Private:   fmt.Sprintf("You died. You lost %d experience and %d gold and woke up in %s.", expLost, goldLost, c.Map),
	}
}
