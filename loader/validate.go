package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/mblgbs/RPG-bot-for-Discord/content"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

var validPositions = map[types.Position]bool{
	types.PosHelmet:    true,
	types.PosArmor:     true,
	types.PosWeapon:    true,
	types.PosRelic:     true,
	types.PosInventory: true,
}

var validAttackTypes = map[types.AttackType]bool{
	types.Melee: true,
	types.Range: true,
	types.Magic: true,
}

// validate checks the compiled defs for referential integrity and consistency.
func validate(defs *content.Defs) error {
	ve := &ValidationError{}

	// Maps: unique names, at least one town, respawn is a town.
	maps := map[string]bool{}
	for _, m := range defs.Maps {
		if maps[m.Name] {
			ve.errorf("duplicate map %q", m.Name)
		}
		maps[m.Name] = true
	}
	if len(defs.Towns()) == 0 {
		ve.errorf("at least one Town is required")
	}
	switch {
	case defs.World.Respawn == "":
		ve.errorf("World.respawn is required")
	case !defs.IsTown(defs.World.Respawn):
		ve.errorf("respawn %q is not a defined town", defs.World.Respawn)
	}

	// Monsters.
	seen := map[string]bool{}
	for _, m := range defs.Monsters {
		if seen[m.Name] {
			ve.errorf("duplicate monster %q", m.Name)
		}
		seen[m.Name] = true
		if m.Health < 0 {
			ve.errorf("monster %q has negative health", m.Name)
		}
		for _, name := range m.Maps {
			if !maps[name] {
				ve.errorf("monster %q spawns in undefined map %q", m.Name, name)
			}
		}
	}

	// Items.
	seen = map[string]bool{}
	for _, it := range defs.Items {
		if seen[it.Name] {
			ve.errorf("duplicate item %q", it.Name)
		}
		seen[it.Name] = true
		if !validPositions[it.Position] {
			ve.errorf("item %q has unknown position %q", it.Name, it.Position)
		}
		if it.Power < 0 || it.Gold < 0 {
			ve.errorf("item %q has negative power or gold", it.Name)
		}
		if it.Position == types.PosWeapon {
			if it.AttackType == "" {
				ve.warnf("weapon %q has no attack type, defaulting to melee", it.Name)
			} else if !validAttackTypes[it.AttackType] {
				ve.errorf("weapon %q has unknown attack type %q", it.Name, it.AttackType)
			}
		} else if it.AttackType != "" {
			ve.warnf("item %q is not a weapon but sets attack type", it.Name)
		}
	}

	// Spells: unique names.
	seen = map[string]bool{}
	for _, s := range defs.Spells {
		if seen[s.Name] {
			ve.errorf("duplicate spell %q", s.Name)
		}
		seen[s.Name] = true
	}

	// Warnings: empty tables make the matching events no-ops.
	if len(defs.Monsters) == 0 {
		ve.warnf("no monsters defined, combat will never trigger")
	}
	if len(defs.Items) == 0 {
		ve.warnf("no items defined, loot and town purchases will never trigger")
	}
	if len(defs.Spells) == 0 {
		ve.warnf("no spells defined")
	}
	if len(defs.Snowflakes) == 0 {
		ve.warnf("no snowflakes defined, blizzards yield nothing")
	}

	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}
