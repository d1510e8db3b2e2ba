package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/mblgbs/RPG-bot-for-Discord/content"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// rawDef holds a named definition table before compilation.
type rawDef struct {
	name  string
	table *lua.LTable
}

// rawMap holds a map or town table before compilation.
type rawMap struct {
	name  string
	town  bool
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

// getIntDefault returns an int field, or def when missing.
func getIntDefault(tbl *lua.LTable, key string, def int) int {
	if _, ok := tbl.RawGetString(key).(lua.LNumber); !ok {
		return def
	}
	return getInt(tbl, key)
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// getStringList returns the array part of a table field as strings. A
// single string is accepted as a one-element list.
func getStringList(tbl *lua.LTable, key string) []string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return []string{string(s)}
	}
	list, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}
	var out []string
	for i := 1; i <= list.MaxN(); i++ {
		if s, ok := list.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// getStats reads str, dex, end, int and luk from a stats table. nil yields
// zeros.
func getStats(tbl *lua.LTable) types.Stats {
	if tbl == nil {
		return types.Stats{}
	}
	end := getInt(tbl, "end")
	if end == 0 {
		// "end" is a Lua keyword; allow the spelled-out key too.
		end = getInt(tbl, "endurance")
	}
	return types.Stats{
		Str: getInt(tbl, "str"),
		Dex: getInt(tbl, "dex"),
		End: end,
		Int: getInt(tbl, "int"),
		Luk: getInt(tbl, "luk"),
	}
}

// compile converts all collected Lua data into content definitions.
func compile(coll *collector) (*content.Defs, error) {
	defs := &content.Defs{}

	if coll.world == nil {
		return nil, fmt.Errorf("no World{} definition found")
	}
	defs.World = content.WorldDef{
		Name:    getString(coll.world, "name"),
		Respawn: getString(coll.world, "respawn"),
	}

	for _, raw := range coll.maps {
		defs.Maps = append(defs.Maps, content.MapDef{Name: raw.name, Town: raw.town})
	}
	for _, raw := range coll.monsters {
		defs.Monsters = append(defs.Monsters, compileMonster(raw))
	}
	for _, raw := range coll.items {
		item, err := compileItem(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling item %s: %w", raw.name, err)
		}
		defs.Items = append(defs.Items, item)
	}
	for _, raw := range coll.spells {
		defs.Spells = append(defs.Spells, content.SpellDef{
			Name:        raw.name,
			Level:       getIntDefault(raw.table, "level", 1),
			Weight:      getIntDefault(raw.table, "weight", 1),
			Power:       getInt(raw.table, "power"),
			Description: getString(raw.table, "description"),
		})
	}
	for _, raw := range coll.snowflakes {
		defs.Snowflakes = append(defs.Snowflakes, content.ItemDef{
			Name:     raw.name,
			Position: types.PosRelic,
			Level:    1,
			Weight:   1,
			Bonus:    getStats(getTable(raw.table, "bonus")),
		})
	}
	return defs, nil
}

func compileMonster(raw rawDef) content.MonsterDef {
	tbl := raw.table
	maps := getStringList(tbl, "maps")
	sort.Strings(maps)
	return content.MonsterDef{
		Name:       raw.name,
		Level:      getIntDefault(tbl, "level", 1),
		Weight:     getIntDefault(tbl, "weight", 1),
		Stats:      getStats(getTable(tbl, "stats")),
		Power:      getNumber(tbl, "power"),
		Defense:    getNumber(tbl, "defense"),
		Health:     getInt(tbl, "health"),
		Experience: getInt(tbl, "experience"),
		Gold:       getInt(tbl, "gold"),
		Maps:       maps,
	}
}

func compileItem(raw rawDef) (content.ItemDef, error) {
	tbl := raw.table
	pos := types.Position(getString(tbl, "position"))
	if pos == "" {
		return content.ItemDef{}, fmt.Errorf("position is required")
	}
	return content.ItemDef{
		Name:       raw.name,
		Position:   pos,
		AttackType: types.AttackType(getString(tbl, "attack")),
		Level:      getIntDefault(tbl, "level", 1),
		Weight:     getIntDefault(tbl, "weight", 1),
		Power:      getNumber(tbl, "power"),
		Bonus:      getStats(getTable(tbl, "bonus")),
		Gold:       getNumber(tbl, "gold"),
	}, nil
}

// sortedLuaFiles returns .lua files in a directory, with world.lua first
// and the rest sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var worldFile string
	var others []string
	for _, f := range files {
		if f == "world.lua" {
			worldFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if worldFile != "" {
		return append([]string{worldFile}, others...)
	}
	return others
}
