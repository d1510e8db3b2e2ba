package messages

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/rng"
)

//go:embed catalogue.yaml
var catalogueYAML []byte

// Template is one broadcast/private pair with unsubstituted tokens.
type Template struct {
	Broadcast string `yaml:"broadcast"`
	Private   string `yaml:"private"`
}

// Catalogue holds flavour-text templates keyed by event kind.
type Catalogue struct {
	entries map[string][]Template
}

// Catalogue keys.
const (
	Camp        = "camp"
	ItemFound   = "item"
	GambleWin   = "gamble_win"
	GambleLose  = "gamble_lose"
	StealItem   = "steal_item"
	Snowflake   = "snowflake"
	BlizzardOn  = "blizzard_on"
	BlizzardOff = "blizzard_off"
)

type catalogueFile struct {
	Messages map[string][]Template `yaml:"messages"`
}

// ParseCatalogue decodes a yaml catalogue.
func ParseCatalogue(raw []byte) (*Catalogue, error) {
	var f catalogueFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse message catalogue: %w", err)
	}
	for key, list := range f.Messages {
		if len(list) == 0 {
			return nil, fmt.Errorf("message catalogue: %q has no templates", key)
		}
	}
	return &Catalogue{entries: f.Messages}, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalogue
)

// Default returns the embedded catalogue. The embedded file is part of the
// binary, so a parse failure is a programming error.
func Default() *Catalogue {
	defaultOnce.Do(func() {
		c, err := ParseCatalogue(catalogueYAML)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// Has reports whether the catalogue has templates for key.
func (c *Catalogue) Has(key string) bool {
	return len(c.entries[key]) > 0
}

// Pick returns a random template for key. A missing key yields an empty
// template so a message-less event still resolves.
func (c *Catalogue) Pick(r *rng.RNG, key string) Template {
	list := c.entries[key]
	if len(list) == 0 {
		return Template{}
	}
	return rng.Choice(r, list)
}
