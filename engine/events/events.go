// Package events resolves the non-combat events: gods, luck items, gold,
// gambling, camp, snowflakes and town visits. Each event mutates the
// character copy it is handed and reports what happened in a Resolution.
package events

import (
	"time"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/messages"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/rng"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/state"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Content is the subset of the content tables events draw from.
type Content interface {
	GenerateItem(c *types.Character) (types.Item, error)
	GenerateSpell(c *types.Character) (types.Spell, error)
	GenerateQuestMonster(c *types.Character) (types.Monster, error)
	GenerateSnowflake(c *types.Character) (types.Item, error)
}

// Config holds the tunables events read.
type Config struct {
	MaxItems          int
	BoostTimerMinutes int
	RespawnTown       string
}

// Resolution reports the effect of one event. Happened is false when the
// event rolled nothing and the character is unchanged.
type Resolution struct {
	Happened bool
	Messages []types.Message
	LevelUps []state.LevelUp
	Died     bool
	Boost    *types.PersonalBoost // set when a personal multiplier must expire
}

func (r *Resolution) say(broadcast, private string) {
	r.Happened = true
	r.Messages = append(r.Messages, types.Message{Broadcast: broadcast, Private: private})
}

func (r *Resolution) add(m types.Message) {
	r.Happened = true
	r.Messages = append(r.Messages, m)
}

// Dispatcher resolves events against shared services.
type Dispatcher struct {
	rng       *rng.RNG
	content   Content
	catalogue *messages.Catalogue
	cfg       Config
	now       func() time.Time
}

// New creates a Dispatcher. A nil catalogue uses the embedded default.
func New(r *rng.RNG, content Content, catalogue *messages.Catalogue, cfg Config) *Dispatcher {
	if catalogue == nil {
		catalogue = messages.Default()
	}
	return &Dispatcher{rng: r, content: content, catalogue: catalogue, cfg: cfg, now: time.Now}
}

// SetClock overrides the time source.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}
