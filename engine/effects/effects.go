// Package effects applies and expires timed effects: guild bless stacks,
// personal multiplier boosts and the blizzard. Expiry never closes over the
// state it was scheduled from; it re-reads the record at fire time and
// subtracts what the effect added.
package effects

import (
	"slices"
	"time"

	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Bless adds amount stacks to the guild multiplier and records the effect.
func Bless(g *types.GuildConfig, id, caster string, amount int, expiresAt time.Time) types.BlessEffect {
	eff := types.BlessEffect{ID: id, Caster: caster, Amount: amount, ExpiresAt: expiresAt}
	if g.Multiplier < 1 {
		g.Multiplier = 1
	}
	g.Multiplier += amount
	g.ActiveBless += amount
	g.Blessings = append(g.Blessings, eff)
	return eff
}

// Unbless removes a bless effect: the recorded amount comes off the current
// multiplier and active count, floored at 1 and 0. A guild that no longer
// carries the record is left untouched. Reports whether the record was found.
func Unbless(g *types.GuildConfig, eff types.BlessEffect) bool {
	i := slices.IndexFunc(g.Blessings, func(b types.BlessEffect) bool { return b.ID == eff.ID })
	if i < 0 {
		return false
	}
	g.Blessings = slices.Delete(slices.Clone(g.Blessings), i, i+1)
	g.Multiplier -= eff.Amount
	if g.Multiplier < 1 {
		g.Multiplier = 1
	}
	g.ActiveBless -= eff.Amount
	if g.ActiveBless < 0 {
		g.ActiveBless = 0
	}
	return true
}

// Unboost restores the multiplier a boost replaced. It only acts when the
// character still carries the boost that expires at expiresAt; a newer boost
// is left alone. Reports whether anything changed.
func Unboost(c *types.Character, expiresAt time.Time) bool {
	if c.Boost == nil || !c.Boost.ExpiresAt.Equal(expiresAt) {
		return false
	}
	c.PersonalMultiplier = c.Boost.Previous
	c.Boost = nil
	return true
}

// StartBlizzard turns the blizzard on until endsAt. Reports false if one is
// already raging.
func StartBlizzard(g *types.GuildConfig, endsAt time.Time) bool {
	if g.BlizzardActive {
		return false
	}
	g.BlizzardActive = true
	g.BlizzardEndsAt = endsAt
	return true
}

// EndBlizzard turns off the blizzard that was due to end at endsAt.
func EndBlizzard(g *types.GuildConfig, endsAt time.Time) bool {
	if !g.BlizzardActive || !g.BlizzardEndsAt.Equal(endsAt) {
		return false
	}
	g.BlizzardActive = false
	g.BlizzardEndsAt = time.Time{}
	return true
}

// SweepGuild expires every bless and blizzard overdue at now, for effects
// whose timers were lost with a restart. Returns the expired blessings.
func SweepGuild(g *types.GuildConfig, now time.Time) []types.BlessEffect {
	var expired []types.BlessEffect
	for _, b := range append([]types.BlessEffect{}, g.Blessings...) {
		if !b.ExpiresAt.After(now) {
			Unbless(g, b)
			expired = append(expired, b)
		}
	}
	if g.BlizzardActive && !g.BlizzardEndsAt.After(now) {
		EndBlizzard(g, g.BlizzardEndsAt)
	}
	return expired
}

// SweepCharacter expires an overdue personal boost.
func SweepCharacter(c *types.Character, now time.Time) bool {
	if c.Boost == nil || c.Boost.ExpiresAt.After(now) {
		return false
	}
	return Unboost(c, c.Boost.ExpiresAt)
}
