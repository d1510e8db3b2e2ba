package persist

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/save"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/state"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Memory keeps records in maps. Loads and saves copy, so callers never share
// a record with the store. Safe for concurrent use.
type Memory struct {
	mu           sync.RWMutex
	chars        map[string]*types.Character
	guilds       map[string]*types.GuildConfig
	defaultPrize int
}

// NewMemory creates an empty store. defaultPrize fills guild configs that
// lack a lottery prize pool.
func NewMemory(defaultPrize int) *Memory {
	return &Memory{
		chars:        map[string]*types.Character{},
		guilds:       map[string]*types.GuildConfig{},
		defaultPrize: defaultPrize,
	}
}

// LoadCharacter returns a copy of the character. Field projections are
// accepted for interface parity; the in-memory record is always complete.
func (m *Memory) LoadCharacter(_ context.Context, id string, _ ...string) (*types.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chars[id]
	if !ok {
		return nil, fmt.Errorf("character %s: %w", id, ErrNotFound)
	}
	return state.Clone(c), nil
}

// SaveCharacter stores a copy of c.
func (m *Memory) SaveCharacter(_ context.Context, c *types.Character) error {
	cp := state.Clone(c)
	state.Normalize(cp)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chars[c.ID] = cp
	return nil
}

// LoadGuildConfig returns a copy of the guild config.
func (m *Memory) LoadGuildConfig(_ context.Context, guildID string) (*types.GuildConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.guilds[guildID]
	if !ok {
		return nil, fmt.Errorf("guild %s: %w", guildID, ErrNotFound)
	}
	return state.CloneGuild(g), nil
}

// SaveGuildConfig stores a copy of g. The last write wins.
func (m *Memory) SaveGuildConfig(_ context.Context, g *types.GuildConfig) error {
	cp := state.CloneGuild(g)
	state.NormalizeGuild(cp, m.defaultPrize)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guilds[g.GuildID] = cp
	return nil
}

// ListCharacters returns copies of every character in a guild, by ID.
func (m *Memory) ListCharacters(_ context.Context, guildID string) ([]*types.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*types.Character
	for _, c := range m.chars {
		if c.GuildID == guildID {
			out = append(out, state.Clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CharactersOnMap returns copies of the guild's characters standing on
// mapName.
func (m *Memory) CharactersOnMap(ctx context.Context, guildID, mapName string) ([]*types.Character, error) {
	all, err := m.ListCharacters(ctx, guildID)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, c := range all {
		if c.Map == mapName {
			out = append(out, c)
		}
	}
	return out, nil
}

// Snapshot serializes every record.
func (m *Memory) Snapshot(seed int64) ([]byte, error) {
	m.mu.RLock()
	sd := save.SaveData{Seed: seed}
	for _, c := range m.chars {
		sd.Characters = append(sd.Characters, c)
	}
	for _, g := range m.guilds {
		sd.Guilds = append(sd.Guilds, g)
	}
	m.mu.RUnlock()

	sort.Slice(sd.Characters, func(i, j int) bool { return sd.Characters[i].ID < sd.Characters[j].ID })
	sort.Slice(sd.Guilds, func(i, j int) bool { return sd.Guilds[i].GuildID < sd.Guilds[j].GuildID })
	return save.Save(sd)
}

// Restore replaces every record with the snapshot's. Returns the seed the
// snapshot was taken with.
func (m *Memory) Restore(data []byte) (int64, error) {
	sd, err := save.Load(data, m.defaultPrize)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chars = make(map[string]*types.Character, len(sd.Characters))
	for _, c := range sd.Characters {
		m.chars[c.ID] = c
	}
	m.guilds = make(map[string]*types.GuildConfig, len(sd.Guilds))
	for _, g := range sd.Guilds {
		m.guilds[g.GuildID] = g
	}
	return sd.Seed, nil
}

// SaveFile writes a snapshot to path.
func (m *Memory) SaveFile(path string, seed int64) error {
	data, err := m.Snapshot(seed)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// LoadFile restores a snapshot from path. A missing file leaves the store
// empty and is not an error.
func (m *Memory) LoadFile(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return m.Restore(data)
}
