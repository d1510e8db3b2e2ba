package effects

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Store is the persistence the expiry callbacks re-read and write.
type Store interface {
	LoadCharacter(ctx context.Context, id string, fields ...string) (*types.Character, error)
	SaveCharacter(ctx context.Context, c *types.Character) error
	LoadGuildConfig(ctx context.Context, guildID string) (*types.GuildConfig, error)
	SaveGuildConfig(ctx context.Context, g *types.GuildConfig) error
}

// Notify receives the announcement an expiry produces.
type Notify func(guildID string, msg types.Message)

const fireTimeout = 10 * time.Second

// Timers schedules expiries for timed effects.
type Timers struct {
	store  Store
	sched  Scheduler
	log    *zap.Logger
	now    func() time.Time
	notify Notify
}

// NewTimers creates Timers. A nil scheduler uses TimerScheduler and a nil
// logger discards output.
func NewTimers(store Store, sched Scheduler, log *zap.Logger) *Timers {
	if sched == nil {
		sched = TimerScheduler{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Timers{store: store, sched: sched, log: log, now: time.Now}
}

// SetClock overrides the time source used to compute delays.
func (t *Timers) SetClock(now func() time.Time) {
	t.now = now
}

// OnExpire registers a callback for expiry announcements.
func (t *Timers) OnExpire(fn Notify) {
	t.notify = fn
}

func (t *Timers) after(at time.Time, fn func(ctx context.Context) error, fields ...zap.Field) {
	d := at.Sub(t.now())
	if d < 0 {
		d = 0
	}
	t.sched.AfterFunc(d, func() {
		ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			t.log.Warn("expiry skipped", append(fields, zap.Error(err))...)
		}
	})
}

func (t *Timers) announce(guildID, text string) {
	if t.notify != nil && text != "" {
		t.notify(guildID, types.Message{Broadcast: text})
	}
}

// ScheduleBless removes eff from the guild when it expires.
func (t *Timers) ScheduleBless(guildID string, eff types.BlessEffect) {
	t.after(eff.ExpiresAt, func(ctx context.Context) error {
		g, err := t.store.LoadGuildConfig(ctx, guildID)
		if err != nil {
			return fmt.Errorf("load guild: %w", err)
		}
		if !Unbless(g, eff) {
			t.log.Info("bless already gone",
				zap.String("guild", guildID),
				zap.String("bless", eff.ID))
			return nil
		}
		if err := t.store.SaveGuildConfig(ctx, g); err != nil {
			return fmt.Errorf("save guild: %w", err)
		}
		t.log.Info("bless expired",
			zap.String("guild", guildID),
			zap.String("caster", eff.Caster),
			zap.Int("amount", eff.Amount),
			zap.Int("multiplier", g.Multiplier))
		t.announce(guildID, fmt.Sprintf("%s's %dx bless just wore off.\nCurrent Active Bless: %d\nCurrent Multiplier is: %dx",
			eff.Caster, eff.Amount, g.ActiveBless, g.Multiplier))
		return nil
	}, zap.String("guild", guildID), zap.String("effect", "bless"))
}

// ScheduleBoost restores a character's personal multiplier when b expires.
func (t *Timers) ScheduleBoost(characterID string, b types.PersonalBoost) {
	t.after(b.ExpiresAt, func(ctx context.Context) error {
		c, err := t.store.LoadCharacter(ctx, characterID)
		if err != nil {
			return fmt.Errorf("load character: %w", err)
		}
		if !Unboost(c, b.ExpiresAt) {
			t.log.Debug("boost already replaced", zap.String("character", characterID))
			return nil
		}
		if err := t.store.SaveCharacter(ctx, c); err != nil {
			return fmt.Errorf("save character: %w", err)
		}
		t.log.Info("boost expired",
			zap.String("character", characterID),
			zap.Int("multiplier", c.PersonalMultiplier))
		return nil
	}, zap.String("character", characterID), zap.String("effect", "boost"))
}

// ScheduleBlizzard ends the guild's blizzard at endsAt.
func (t *Timers) ScheduleBlizzard(guildID string, endsAt time.Time, farewell string) {
	t.after(endsAt, func(ctx context.Context) error {
		g, err := t.store.LoadGuildConfig(ctx, guildID)
		if err != nil {
			return fmt.Errorf("load guild: %w", err)
		}
		if !EndBlizzard(g, endsAt) {
			return nil
		}
		if err := t.store.SaveGuildConfig(ctx, g); err != nil {
			return fmt.Errorf("save guild: %w", err)
		}
		t.log.Info("blizzard ended", zap.String("guild", guildID))
		t.announce(guildID, farewell)
		return nil
	}, zap.String("guild", guildID), zap.String("effect", "blizzard"))
}
