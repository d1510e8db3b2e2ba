// Package engine provides the operations a tick or command performs on one
// character: fights against monsters and players, luck and town events, and
// the guild-wide spells. Every operation works on copies and returns a
// types.Result for the caller to persist and announce.
package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/mblgbs/RPG-bot-for-Discord/content"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/events"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/messages"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/rng"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/state"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Content is the set of content tables the engine draws from.
type Content interface {
	events.Content
	GenerateMonster(c *types.Character) (types.Monster, error)
	Towns() []string
	Maps() []string
	IsTown(name string) bool
}

// Config holds the game tunables.
type Config struct {
	MaxItems          int
	MaxGroupSize      int
	BlessCost         int
	BlessDuration     time.Duration
	HomeCost          int
	BoostTimerMinutes int
	LotteryCost       int
	LotteryPrize      int
	RespawnTown       string
	OwnerCap          int
	QuestResetAge     time.Duration
	BlizzardMin       time.Duration
	BlizzardMax       time.Duration
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		MaxItems:          15,
		MaxGroupSize:      3,
		BlessCost:         1500,
		BlessDuration:     time.Hour,
		HomeCost:          500,
		BoostTimerMinutes: 2,
		LotteryCost:       100,
		LotteryPrize:      1500,
		RespawnTown:       "Kindale",
		OwnerCap:          10,
		QuestResetAge:     48 * time.Hour,
		BlizzardMin:       2 * time.Hour,
		BlizzardMax:       20 * time.Hour,
	}
}

// Engine resolves encounters and events. It holds no character state; it is
// safe to share between goroutines as long as the RNG is.
type Engine struct {
	rng       *rng.RNG
	content   Content
	events    *events.Dispatcher
	catalogue *messages.Catalogue
	cfg       Config
	log       *zap.Logger
	now       func() time.Time
	seq       atomic.Int64
}

// New creates an engine. A nil logger discards output.
func New(r *rng.RNG, c Content, cfg Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxGroupSize < 1 {
		cfg.MaxGroupSize = 1
	}
	catalogue := messages.Default()
	return &Engine{
		rng:       r,
		content:   c,
		catalogue: catalogue,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
		events: events.New(r, c, catalogue, events.Config{
			MaxItems:          cfg.MaxItems,
			BoostTimerMinutes: cfg.BoostTimerMinutes,
			RespawnTown:       cfg.RespawnTown,
		}),
	}
}

// SetClock overrides the time source.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
	e.events.SetClock(now)
}

// Config returns the engine's tunables.
func (e *Engine) Config() Config {
	return e.cfg
}

// RNG returns the shared random stream.
func (e *Engine) RNG() *rng.RNG {
	return e.rng
}

// NewCharacter creates a level 1 character in the respawn town.
func (e *Engine) NewCharacter(id, guildID, name string) *types.Character {
	return state.NewCharacter(id, guildID, name, e.respawnTown(), e.now())
}

// NewGuild returns the default config for a guild.
func (e *Engine) NewGuild(guildID string) *types.GuildConfig {
	g := &types.GuildConfig{GuildID: guildID, CommandPrefix: "!"}
	state.NormalizeGuild(g, e.cfg.LotteryPrize)
	return g
}

func (e *Engine) respawnTown() string {
	if e.cfg.RespawnTown != "" {
		return e.cfg.RespawnTown
	}
	if towns := e.content.Towns(); len(towns) > 0 {
		return towns[0]
	}
	return ""
}

// guard recovers from a panic in an operation, logs it and replaces the
// result with a no-op. The caller's records are untouched because every
// operation works on copies.
func (e *Engine) guard(op string, c *types.Character, res *types.Result) {
	r := recover()
	if r == nil {
		return
	}
	id := ""
	if c != nil {
		id = c.ID
	}
	e.log.Error("operation failed",
		zap.String("op", op),
		zap.String("character", id),
		zap.Any("panic", r),
		zap.Stack("stack"))
	*res = types.Result{}
}

// skip logs a content failure and returns a no-op result. A missing
// candidate is routine; anything else is worth a warning.
func (e *Engine) skip(op string, c *types.Character, err error) types.Result {
	fields := []zap.Field{zap.String("op", op), zap.String("character", c.ID), zap.Error(err)}
	if errors.Is(err, content.ErrNoCandidate) {
		e.log.Debug("no content for event", fields...)
	} else {
		e.log.Warn("event skipped", fields...)
	}
	return types.Result{}
}

// declined reports an action refused for lack of resources or preconditions.
func declined(c *types.Character, format string, args ...any) types.Result {
	reason := fmt.Sprintf(format, args...)
	return types.Result{
		Declined: true,
		Reason:   reason,
		Messages: []types.Message{{Private: reason, To: c.ID}},
	}
}

func (e *Engine) nextID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, e.now().UnixNano(), e.seq.Add(1))
}

func (e *Engine) levelCheck(c *types.Character, res *types.Result) {
	for _, up := range state.CheckExperience(c, e.rng) {
		msg := messages.LevelUp(c, up.Level, up.Stat)
		msg.To = c.ID
		res.Messages = append(res.Messages, msg)
	}
}

func (e *Engine) deathCheck(c *types.Character, killer string, by state.Killer, res *types.Result) bool {
	death, died := state.CheckHealth(c, by, e.respawnTown())
	if !died {
		return false
	}
	msg := messages.Death(c, killer, death.ExpLost, death.GoldLost)
	msg.To = c.ID
	res.Messages = append(res.Messages, msg)
	return true
}
