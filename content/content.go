// Package content holds the monster, item, spell and map definitions loaded
// from Lua and generates concrete opponents and loot from them. Generators
// are pure functions of the character's level and location plus the shared
// RNG.
package content

import (
	"errors"
	"math"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/rng"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// ErrNoCandidate is returned when no definition fits the character.
var ErrNoCandidate = errors.New("no content candidate")

// WorldDef is the world-wide settings block.
type WorldDef struct {
	Name    string
	Respawn string
}

// MonsterDef is a monster template. Level is the minimum character level it
// appears at; Maps restricts where it spawns (empty means anywhere).
type MonsterDef struct {
	Name       string
	Level      int
	Weight     int
	Stats      types.Stats
	Power      float64
	Defense    float64
	Health     int
	Experience int
	Gold       int
	Maps       []string
}

// ItemDef is an equipment or inventory item template.
type ItemDef struct {
	Name       string
	Position   types.Position
	AttackType types.AttackType
	Level      int
	Weight     int
	Power      float64
	Bonus      types.Stats
	Gold       float64
}

// SpellDef is a spell scroll template.
type SpellDef struct {
	Name        string
	Level       int
	Weight      int
	Power       int
	Description string
}

// MapDef is a location. Towns host the town events and respawns.
type MapDef struct {
	Name string
	Town bool
}

// Defs holds every loaded definition. Immutable after loading.
type Defs struct {
	World      WorldDef
	Monsters   []MonsterDef
	Items      []ItemDef
	Spells     []SpellDef
	Snowflakes []ItemDef
	Maps       []MapDef
}

// Towns returns the names of the town maps.
func (d *Defs) Towns() []string {
	var out []string
	for _, m := range d.Maps {
		if m.Town {
			out = append(out, m.Name)
		}
	}
	return out
}

// MapNames returns the names of every map.
func (d *Defs) MapNames() []string {
	out := make([]string, 0, len(d.Maps))
	for _, m := range d.Maps {
		out = append(out, m.Name)
	}
	return out
}

// IsTown reports whether name is a town.
func (d *Defs) IsTown(name string) bool {
	for _, m := range d.Maps {
		if m.Name == name {
			return m.Town
		}
	}
	return false
}

// Generator produces monsters, items and spells from Defs.
type Generator struct {
	defs *Defs
	rng  *rng.RNG
}

// New creates a Generator over defs.
func New(defs *Defs, r *rng.RNG) *Generator {
	return &Generator{defs: defs, rng: r}
}

// Defs returns the definitions the generator draws from.
func (g *Generator) Defs() *Defs {
	return g.defs
}

// Towns returns the names of the town maps.
func (g *Generator) Towns() []string {
	return g.defs.Towns()
}

// Maps returns the names of every map.
func (g *Generator) Maps() []string {
	return g.defs.MapNames()
}

// IsTown reports whether name is a town.
func (g *Generator) IsTown(name string) bool {
	return g.defs.IsTown(name)
}

func weight(w int) int {
	if w < 1 {
		return 1
	}
	return w
}

// pick selects one of n candidates by weight.
func (g *Generator) pick(weights []int) (int, error) {
	if len(weights) == 0 {
		return 0, ErrNoCandidate
	}
	return g.rng.WeightedSelect(weights), nil
}

func roundTo(v float64, places int) float64 {
	f := math.Pow(10, float64(places))
	return math.Round(v*f) / f
}
