// Package messages builds the broadcast and private strings that accompany a
// resolved event: token substitution, display names, pronouns and the
// embedded flavour-text catalogue.
package messages

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Tokens holds the values substituted into catalogue templates.
//
//	$$  map name          ##  display name      !!  other party
//	@@  him / her / them  ^^  his / her / their  &&  he / she / they
//	%%  item name         $&  gold amount
type Tokens struct {
	Map    string
	Name   string
	Gender string
	Item   string
	Gold   int
	Victim string
}

// For returns the tokens for c acting in an event broadcast.
func For(c *types.Character) Tokens {
	return Tokens{
		Map:    c.Map,
		Name:   DisplayName(c, true),
		Gender: c.Gender,
	}
}

// Replace substitutes every token in s.
func (t Tokens) Replace(s string) string {
	return strings.NewReplacer(
		"$&", strconv.Itoa(t.Gold),
		"$$", t.Map,
		"##", t.Name,
		"@@", Pronoun(t.Gender, Him),
		"^^", Pronoun(t.Gender, His),
		"&&", Pronoun(t.Gender, He),
		"%%", t.Item,
		"!!", t.Victim,
	).Replace(s)
}

// Apply substitutes tokens into both halves of a template.
func (t Tokens) Apply(tpl Template) types.Message {
	return types.Message{
		Broadcast: t.Replace(tpl.Broadcast),
		Private:   t.Replace(tpl.Private),
	}
}

// Pronoun forms.
const (
	He  = "he"
	His = "his"
	Him = "him"
)

var genders = map[string]map[string]string{
	"male":    {He: "he", His: "his", Him: "him"},
	"female":  {He: "she", His: "her", Him: "her"},
	"neutral": {He: "they", His: "their", Him: "them"},
}

// Pronoun returns the gendered form of word. Unknown genders fall back to
// the neutral forms; unknown words are returned unchanged.
func Pronoun(gender, word string) string {
	forms, ok := genders[gender]
	if !ok {
		forms = genders["neutral"]
	}
	if w, ok := forms[word]; ok {
		return w
	}
	return word
}

// Capitalize upper-cases the first letter of each word in s.
func Capitalize(s string) string {
	return cases.Title(language.English).String(s)
}

// DisplayName formats c's name for a message. action is true for event
// broadcasts and false for movement. The mention preference decides whether
// the character is pinged: off never, action only for events, move only for
// movement, on always. A title other than None is appended.
func DisplayName(c *types.Character, action bool) string {
	name := c.Name
	switch c.Mention {
	case "on":
		name = mention(c)
	case "action":
		if action {
			name = mention(c)
		}
	case "move":
		if !action {
			name = mention(c)
		}
	}
	if c.Title != "" && c.Title != noTitle {
		name += " the " + c.Title
	}
	return name
}

const noTitle = "None"

func mention(c *types.Character) string {
	return "<@!" + c.ID + ">"
}
