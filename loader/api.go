package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers the Lua constructors as globals.
func registerAPI(L *lua.LState, coll *collector) {
	// World { name = "...", respawn = "..." }
	L.SetGlobal("World", L.NewFunction(func(L *lua.LState) int {
		coll.world = L.CheckTable(1)
		return 0
	}))

	// Monster "name" { ... }, Item "name" { ... } and so on are curried:
	// the first call takes the name and returns a function taking the table.
	L.SetGlobal("Monster", curried(L, func(name string, tbl *lua.LTable) {
		coll.monsters = append(coll.monsters, rawDef{name: name, table: tbl})
	}))
	L.SetGlobal("Item", curried(L, func(name string, tbl *lua.LTable) {
		coll.items = append(coll.items, rawDef{name: name, table: tbl})
	}))
	L.SetGlobal("Spell", curried(L, func(name string, tbl *lua.LTable) {
		coll.spells = append(coll.spells, rawDef{name: name, table: tbl})
	}))
	L.SetGlobal("Snowflake", curried(L, func(name string, tbl *lua.LTable) {
		coll.snowflakes = append(coll.snowflakes, rawDef{name: name, table: tbl})
	}))
	L.SetGlobal("Map", curried(L, func(name string, tbl *lua.LTable) {
		coll.maps = append(coll.maps, rawMap{name: name, table: tbl})
	}))
	L.SetGlobal("Town", curried(L, func(name string, tbl *lua.LTable) {
		coll.maps = append(coll.maps, rawMap{name: name, town: true, table: tbl})
	}))

	// Stats { str = 1, dex = 2 } - pass-through, reads better in monster tables.
	L.SetGlobal("Stats", L.NewFunction(func(L *lua.LState) int {
		L.Push(L.CheckTable(1))
		return 1
	}))
}

func curried(L *lua.LState, collect func(name string, tbl *lua.LTable)) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			collect(name, L.CheckTable(1))
			return 0
		}))
		return 1
	})
}
