package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/effects"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/messages"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/parser"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/resolve"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/rng"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/state"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/stats"
	"github.com/mblgbs/RPG-bot-for-Discord/persist"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Store is the storage collaborator: single-record loads and saves plus the
// guild-wide queries a tick needs.
type Store interface {
	effects.Store
	ListCharacters(ctx context.Context, guildID string) ([]*types.Character, error)
	CharactersOnMap(ctx context.Context, guildID, mapName string) ([]*types.Character, error)
}

// Messenger is the messaging collaborator. Delivery order across characters
// is not guaranteed.
type Messenger interface {
	Send(ctx context.Context, guildID string, msg types.Message) error
}

// Runner loads records, runs engine operations on them, saves what changed,
// schedules timed effects and delivers the messages.
type Runner struct {
	engine         *Engine
	store          Store
	timers         *effects.Timers
	out            Messenger
	log            *zap.Logger
	blizzardChance int
}

// NewRunner wires an engine to its collaborators. Expiry announcements from
// timers are delivered through out. blizzardChance is the percent chance per
// guild tick that a blizzard starts.
func NewRunner(e *Engine, store Store, timers *effects.Timers, out Messenger, blizzardChance int, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runner{
		engine:         e,
		store:          store,
		timers:         timers,
		out:            out,
		log:            log,
		blizzardChance: blizzardChance,
	}
	timers.OnExpire(func(guildID string, msg types.Message) {
		r.deliver(context.Background(), guildID, msg)
	})
	return r
}

// Engine returns the underlying engine.
func (r *Runner) Engine() *Engine {
	return r.engine
}

// Verbs lists the commands Do understands.
var Verbs = []string{
	"join", "mention", "gender", "private",
	"stats", "equipment", "inventory", "spellbook", "multiplier", "pool", "characters",
	"attack", "pvp", "gods", "luck", "gold", "gamble", "camp", "snowflake",
	"sell", "buy", "quest", "reroll", "bless", "home", "lottery", "move",
	"tick", "blizzard", "draw",
}

// projection is the field set a display command needs.
var projection = map[string][]string{
	"equipment": {"equipment"},
	"inventory": {"inventory"},
	"spellbook": {"spells"},
}

// Do runs one command for character id in guildID and returns what it
// produced. Records are saved and messages delivered before Do returns.
// Only storage failures are returned as errors.
func (r *Runner) Do(ctx context.Context, guildID, id string, cmd types.Command) (types.Result, error) {
	g, err := r.guild(ctx, guildID)
	if err != nil {
		return types.Result{}, err
	}

	switch cmd.Verb {
	case "":
		return types.Result{}, nil
	case "join":
		return r.join(ctx, g, id, parser.Rest(cmd, 0))
	case "multiplier":
		return r.reply(ctx, g, id, MultiplierStatus(g))
	case "pool":
		return r.reply(ctx, g, id, LotteryStatus(g))
	case "characters":
		return r.roster(ctx, g, id)
	case "blizzard":
		return r.blizzard(ctx, g)
	case "draw":
		return r.draw(ctx, g)
	}

	c, err := r.store.LoadCharacter(ctx, id, projection[cmd.Verb]...)
	if errors.Is(err, persist.ErrNotFound) {
		return r.reply(ctx, g, id, "You don't have a character yet. Use join <name> to create one.")
	}
	if err != nil {
		return types.Result{}, fmt.Errorf("load character %s: %w", id, err)
	}

	var res types.Result
	switch cmd.Verb {
	case "stats":
		return r.reply(ctx, g, id, messages.StatsSummary(c))
	case "equipment":
		return r.reply(ctx, g, id, messages.EquipmentSummary(c))
	case "inventory":
		return r.reply(ctx, g, id, messages.InventorySummary(c))
	case "spellbook":
		return r.reply(ctx, g, id, messages.SpellbookSummary(c))
	case "mention", "gender", "private":
		res = settings(c, cmd)
	case "attack":
		res = r.engine.AttackMob(c, g)
	case "pvp":
		res, err = r.pvp(ctx, c, g, parser.Rest(cmd, 0))
	case "gods":
		res = r.engine.Gods(c)
	case "luck":
		res = r.engine.LuckEvent(c, g)
	case "gold":
		res = r.engine.LuckGold(c, g)
	case "gamble":
		res = r.engine.Gamble(c)
	case "camp":
		res = r.engine.Camp(c)
	case "snowflake":
		res = r.engine.Snowflake(c, g)
	case "sell":
		res = r.engine.Sell(c)
	case "buy":
		res = r.engine.Purchase(c)
	case "quest":
		res = r.engine.Quest(c, parser.Arg(cmd, 0) == "new")
	case "reroll":
		res = r.engine.ResetQuest(c)
	case "bless":
		res = r.engine.CastBless(c, g, parser.Arg(cmd, 0))
	case "home":
		res = r.engine.CastHome(c)
	case "lottery":
		res = r.engine.JoinLottery(c, g)
	case "move":
		res = r.engine.Move(c, g)
	case "tick":
		res, err = r.tickOne(ctx, c, g)
	default:
		return r.reply(ctx, g, id, fmt.Sprintf("Unknown command %q.", cmd.Verb))
	}
	if err != nil {
		return types.Result{}, err
	}
	return res, r.commit(ctx, g.GuildID, res)
}

// Tick advances every character of a guild by one idle step, then rolls
// for a blizzard. Each character is re-read before it acts so earlier
// steps in the same tick are visible.
func (r *Runner) Tick(ctx context.Context, guildID string) error {
	all, err := r.store.ListCharacters(ctx, guildID)
	if err != nil {
		return fmt.Errorf("list characters: %w", err)
	}
	for _, listed := range all {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := r.store.LoadCharacter(ctx, listed.ID)
		if err != nil {
			r.log.Warn("tick skipped", zap.String("character", listed.ID), zap.Error(err))
			continue
		}
		g, err := r.guild(ctx, guildID)
		if err != nil {
			return err
		}
		res, err := r.tickOne(ctx, c, g)
		if err != nil {
			return err
		}
		if err := r.commit(ctx, guildID, res); err != nil {
			return err
		}
	}

	g, err := r.guild(ctx, guildID)
	if err != nil {
		return err
	}
	if !g.BlizzardActive && r.engine.RNG().Percent() < r.blizzardChance {
		if _, err := r.blizzard(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

// Run ticks guildID every interval until ctx is done.
func (r *Runner) Run(ctx context.Context, guildID string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Tick(ctx, guildID); err != nil && !errors.Is(err, context.Canceled) {
				r.log.Error("tick failed", zap.String("guild", guildID), zap.Error(err))
			}
		}
	}
}

// Sweep expires every effect of guildID that ran out while no timer was
// armed, and re-arms timers for the effects still running.
func (r *Runner) Sweep(ctx context.Context, guildID string) error {
	now := r.engine.now()

	g, err := r.store.LoadGuildConfig(ctx, guildID)
	switch {
	case errors.Is(err, persist.ErrNotFound):
	case err != nil:
		return fmt.Errorf("load guild %s: %w", guildID, err)
	default:
		expired := effects.SweepGuild(g, now)
		if err := r.store.SaveGuildConfig(ctx, g); err != nil {
			return fmt.Errorf("save guild %s: %w", guildID, err)
		}
		for _, b := range g.Blessings {
			r.timers.ScheduleBless(guildID, b)
		}
		if g.BlizzardActive {
			r.timers.ScheduleBlizzard(guildID, g.BlizzardEndsAt, r.engine.BlizzardFarewell())
		}
		r.log.Info("guild swept",
			zap.String("guild", guildID),
			zap.Int("expired", len(expired)),
			zap.Int("running", len(g.Blessings)),
			zap.Int("multiplier", g.Multiplier))
	}

	all, err := r.store.ListCharacters(ctx, guildID)
	if err != nil {
		return fmt.Errorf("list characters: %w", err)
	}
	for _, c := range all {
		if effects.SweepCharacter(c, now) {
			if err := r.store.SaveCharacter(ctx, c); err != nil {
				return fmt.Errorf("save character %s: %w", c.ID, err)
			}
			continue
		}
		if c.Boost != nil {
			r.timers.ScheduleBoost(c.ID, *c.Boost)
		}
	}
	return nil
}

func (r *Runner) guild(ctx context.Context, guildID string) (*types.GuildConfig, error) {
	g, err := r.store.LoadGuildConfig(ctx, guildID)
	if errors.Is(err, persist.ErrNotFound) {
		return r.engine.NewGuild(guildID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load guild %s: %w", guildID, err)
	}
	return g, nil
}

func (r *Runner) tickOne(ctx context.Context, c *types.Character, g *types.GuildConfig) (types.Result, error) {
	rivals, err := r.rivals(ctx, c)
	if err != nil {
		return types.Result{}, err
	}
	return r.engine.Tick(c, g, rivals), nil
}

// rivals are the other characters standing on c's map.
func (r *Runner) rivals(ctx context.Context, c *types.Character) ([]*types.Character, error) {
	here, err := r.store.CharactersOnMap(ctx, c.GuildID, c.Map)
	if err != nil {
		return nil, fmt.Errorf("characters on %s: %w", c.Map, err)
	}
	out := here[:0]
	for _, o := range here {
		if o.ID != c.ID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *Runner) pvp(ctx context.Context, c *types.Character, g *types.GuildConfig, name string) (types.Result, error) {
	rivals, err := r.rivals(ctx, c)
	if err != nil {
		return types.Result{}, err
	}
	if name != "" {
		named, err := resolve.Characters(name, rivals)
		var amb *resolve.AmbiguityError
		switch {
		case errors.As(err, &amb):
			return declined(c, "Which %s? (%s)", name, strings.Join(amb.Candidates, ", ")), nil
		case err != nil:
			return declined(c, "There is no %s in %s.", name, c.Map), nil
		}
		rivals = named
	}
	if len(rivals) == 0 {
		return declined(c, "There is no one else in %s to fight.", c.Map), nil
	}
	return r.engine.AttackPlayer(c, rng.Choice(r.engine.RNG(), rivals), g), nil
}

func (r *Runner) join(ctx context.Context, g *types.GuildConfig, id, name string) (types.Result, error) {
	_, err := r.store.LoadCharacter(ctx, id, "name")
	switch {
	case err == nil:
		return r.reply(ctx, g, id, "You already have a character.")
	case !errors.Is(err, persist.ErrNotFound):
		return types.Result{}, fmt.Errorf("load character %s: %w", id, err)
	}
	if name == "" {
		return r.reply(ctx, g, id, "You must give your character a name.")
	}

	c := r.engine.NewCharacter(id, g.GuildID, name)
	res := types.Result{
		Character: c,
		Messages: []types.Message{{
			Broadcast: fmt.Sprintf("%s has joined the world in %s.", c.Name, c.Map),
			Private:   fmt.Sprintf("Welcome %s! Your adventure begins in %s.", c.Name, c.Map),
			To:        c.ID,
		}},
	}
	r.log.Info("character created", zap.String("character", id), zap.String("guild", g.GuildID))
	return res, r.commit(ctx, g.GuildID, res)
}

func (r *Runner) roster(ctx context.Context, g *types.GuildConfig, id string) (types.Result, error) {
	all, err := r.store.ListCharacters(ctx, g.GuildID)
	if err != nil {
		return types.Result{}, fmt.Errorf("list characters: %w", err)
	}
	if len(all) == 0 {
		return r.reply(ctx, g, id, "No characters yet.")
	}
	var b strings.Builder
	for _, c := range all {
		fmt.Fprintf(&b, "%s  level %d  %s  (%d/%d hp)\n", c.Name, c.Level, c.Map, c.Health, stats.MaxHealth(c.Level))
	}
	return r.reply(ctx, g, id, strings.TrimRight(b.String(), "\n"))
}

func (r *Runner) blizzard(ctx context.Context, g *types.GuildConfig) (types.Result, error) {
	res := r.engine.StartBlizzard(g)
	if res.Guild == nil {
		return res, nil
	}
	if err := r.commit(ctx, g.GuildID, res); err != nil {
		return res, err
	}
	r.timers.ScheduleBlizzard(g.GuildID, res.Guild.BlizzardEndsAt, r.engine.BlizzardFarewell())
	r.log.Info("blizzard started", zap.String("guild", g.GuildID), zap.Time("ends_at", res.Guild.BlizzardEndsAt))
	return res, nil
}

func (r *Runner) draw(ctx context.Context, g *types.GuildConfig) (types.Result, error) {
	var entrants []*types.Character
	for _, id := range g.LotteryEntrants {
		c, err := r.store.LoadCharacter(ctx, id)
		if err != nil {
			r.log.Warn("lottery entrant skipped", zap.String("character", id), zap.Error(err))
			continue
		}
		entrants = append(entrants, c)
	}
	res := r.engine.DrawLottery(g, entrants)
	return res, r.commit(ctx, g.GuildID, res)
}

// reply answers id privately without touching any record.
func (r *Runner) reply(ctx context.Context, g *types.GuildConfig, id, text string) (types.Result, error) {
	res := types.Result{Messages: []types.Message{{Private: text, To: id}}}
	return res, r.commit(ctx, g.GuildID, res)
}

// commit saves every record res modified, arms timers for the effects it
// started and delivers its messages.
func (r *Runner) commit(ctx context.Context, guildID string, res types.Result) error {
	if res.Character != nil {
		if err := r.store.SaveCharacter(ctx, res.Character); err != nil {
			return fmt.Errorf("save character %s: %w", res.Character.ID, err)
		}
	}
	for _, o := range res.Others {
		if err := r.store.SaveCharacter(ctx, o); err != nil {
			return fmt.Errorf("save character %s: %w", o.ID, err)
		}
	}
	if res.Guild != nil {
		if err := r.store.SaveGuildConfig(ctx, res.Guild); err != nil {
			return fmt.Errorf("save guild %s: %w", guildID, err)
		}
	}
	if res.Boost != nil && res.Character != nil {
		r.timers.ScheduleBoost(res.Character.ID, *res.Boost)
	}
	if res.Bless != nil {
		r.timers.ScheduleBless(guildID, *res.Bless)
	}
	for _, m := range res.Messages {
		r.deliver(ctx, guildID, m)
	}
	return nil
}

func (r *Runner) deliver(ctx context.Context, guildID string, msg types.Message) {
	if r.out == nil {
		return
	}
	if err := r.out.Send(ctx, guildID, msg); err != nil {
		r.log.Warn("message not delivered", zap.String("guild", guildID), zap.String("to", msg.To), zap.Error(err))
	}
}

var mentionModes = map[string]bool{"off": true, "action": true, "move": true, "on": true}

var genderChoices = map[string]bool{"male": true, "female": true, "neutral": true}

// settings applies a preference command to a copy of c.
func settings(c *types.Character, cmd types.Command) types.Result {
	value := strings.ToLower(parser.Arg(cmd, 0))
	hero := state.Clone(c)
	var text string
	switch cmd.Verb {
	case "mention":
		if !mentionModes[value] {
			return declined(c, "Mention must be one of off, action, move or on.")
		}
		hero.Mention = value
		text = fmt.Sprintf("Mention preference set to %s.", value)
	case "gender":
		if !genderChoices[value] {
			return declined(c, "Gender must be male, female or neutral.")
		}
		hero.Gender = value
		text = fmt.Sprintf("Gender set to %s.", value)
	case "private":
		switch value {
		case "on":
			hero.PrivateMessage = true
		case "off":
			hero.PrivateMessage = false
		default:
			return declined(c, "Private messages must be on or off.")
		}
		text = fmt.Sprintf("Private messages turned %s.", value)
	}
	return types.Result{Character: hero, Messages: []types.Message{{Private: text, To: c.ID}}}
}
