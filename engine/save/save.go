// Package save implements the JSON document format for characters and guild
// configs, and whole-world snapshots for the simulator.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/state"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Version of the snapshot format.
const Version = "1"

// EncodeCharacter serializes a character document.
func EncodeCharacter(c *types.Character) ([]byte, error) {
	return json.Marshal(c)
}

// DecodeCharacter deserializes a character document. With fields set, only
// those top-level keys (plus id and guildId) are kept; everything else is
// left at its default. The result is always normalised.
func DecodeCharacter(data []byte, fields ...string) (*types.Character, error) {
	if len(fields) > 0 {
		projected, err := project(data, fields)
		if err != nil {
			return nil, err
		}
		data = projected
	}
	var c types.Character
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode character: %w", err)
	}
	state.Normalize(&c)
	return &c, nil
}

func project(data []byte, fields []string) ([]byte, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode character: %w", err)
	}
	keep := map[string]bool{"id": true, "guildId": true, "name": true}
	for _, f := range fields {
		keep[f] = true
	}
	for k := range doc {
		if !keep[k] {
			delete(doc, k)
		}
	}
	return json.Marshal(doc)
}

// EncodeGuild serializes a guild config document.
func EncodeGuild(g *types.GuildConfig) ([]byte, error) {
	return json.Marshal(g)
}

// DecodeGuild deserializes a guild config document and applies defaults.
func DecodeGuild(data []byte, defaultPrize int) (*types.GuildConfig, error) {
	var g types.GuildConfig
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode guild config: %w", err)
	}
	state.NormalizeGuild(&g, defaultPrize)
	return &g, nil
}

// SaveData is a snapshot of every record in a store.
type SaveData struct {
	Version    string               `json:"version"`
	Seed       int64                `json:"seed"`
	Characters []*types.Character   `json:"characters"`
	Guilds     []*types.GuildConfig `json:"guilds"`
}

// Save serializes a snapshot.
func Save(sd SaveData) ([]byte, error) {
	if sd.Version == "" {
		sd.Version = Version
	}
	return json.MarshalIndent(sd, "", "  ")
}

// Load deserializes a snapshot, normalising every record.
func Load(data []byte, defaultPrize int) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if sd.Version != "" && sd.Version != Version {
		return nil, fmt.Errorf("load snapshot: unsupported version %q", sd.Version)
	}
	chars := sd.Characters[:0]
	for _, c := range sd.Characters {
		if c == nil {
			continue
		}
		state.Normalize(c)
		chars = append(chars, c)
	}
	sd.Characters = chars
	guilds := sd.Guilds[:0]
	for _, g := range sd.Guilds {
		if g == nil {
			continue
		}
		state.NormalizeGuild(g, defaultPrize)
		guilds = append(guilds, g)
	}
	sd.Guilds = guilds
	if sd.Characters == nil {
		sd.Characters = []*types.Character{}
	}
	if sd.Guilds == nil {
		sd.Guilds = []*types.GuildConfig{}
	}
	return &sd, nil
}
