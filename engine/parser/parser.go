// Package parser converts command strings into Command structs.
// Intentionally dumb: a verb, aliases and whitespace-separated arguments.
package parser

import (
	"strings"

	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

var verbAliases = map[string]string{
	// Combat
	"fight":  "attack",
	"hunt":   "attack",
	"battle": "pvp",
	"duel":   "pvp",

	// Luck
	"pray":   "gods",
	"search": "luck",
	"dig":    "gold",
	"bet":    "gamble",
	"rest":   "camp",
	"sleep":  "camp",
	"catch":  "snowflake",

	// Town
	"shop":       "buy",
	"purchase":   "buy",
	"quests":     "quest",
	"resetquest": "reroll",
	"cast":       "spell",
	"teleport":   "home",

	// Display
	"s":         "stats",
	"me":        "stats",
	"e":         "equipment",
	"equip":     "equipment",
	"inv":       "inventory",
	"i":         "inventory",
	"spells":    "spellbook",
	"sb":        "spellbook",
	"mult":      "multiplier",
	"chars":     "characters",
	"who":       "characters",
	"character": "use",
	"switch":    "use",
	"create":    "join",
	"new":       "join",
}

// Parse converts a raw command string into a Command. A leading prefix
// (the guild's command prefix, e.g. "!") is stripped when present. The verb
// is lower-cased and resolved through aliases; arguments keep their case.
func Parse(input, prefix string) types.Command {
	input = strings.TrimSpace(input)
	if prefix != "" {
		input = strings.TrimSpace(strings.TrimPrefix(input, prefix))
	}
	if input == "" {
		return types.Command{}
	}

	words := strings.Fields(input)
	words = expandMultiWordVerbs(words)

	verb := strings.ToLower(words[0])
	if alias, ok := verbAliases[verb]; ok {
		verb = alias
	}
	return types.Command{Verb: verb, Args: words[1:]}
}

// expandMultiWordVerbs handles "reset quest", "cast bless" and similar.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}
	first, second := strings.ToLower(words[0]), strings.ToLower(words[1])
	switch first {
	case "reset", "reroll":
		if second == "quest" {
			return append([]string{"reroll"}, words[2:]...)
		}
	case "join":
		if second == "lottery" {
			return append([]string{"lottery"}, words[2:]...)
		}
	case "cast":
		if second == "bless" || second == "home" {
			return append([]string{second}, words[2:]...)
		}
	case "sell":
		if second == "all" {
			return []string{"sell"}
		}
	}
	return words
}

// Arg returns argument i or "" when absent.
func Arg(cmd types.Command, i int) string {
	if i < 0 || i >= len(cmd.Args) {
		return ""
	}
	return cmd.Args[i]
}

// Rest joins the arguments from i onward, for names containing spaces.
func Rest(cmd types.Command, i int) string {
	if i >= len(cmd.Args) {
		return ""
	}
	return strings.Join(cmd.Args[i:], " ")
}
