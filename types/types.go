// Package types defines the shared data structures for the idle RPG engine.
// This package contains only type definitions, no logic and no methods.
package types

import "time"

// Position is the slot an item occupies.
type Position string

const (
	PosHelmet    Position = "helmet"
	PosArmor     Position = "armor"
	PosWeapon    Position = "weapon"
	PosRelic     Position = "relic"
	PosInventory Position = "inventory"
)

// AttackType selects the primary stat a weapon scales with.
type AttackType string

const (
	Melee AttackType = "melee"
	Range AttackType = "range"
	Magic AttackType = "magic"
)

// Outcome is the result of an encounter from the attacker's point of view.
type Outcome int

const (
	OutcomeWin Outcome = iota + 1
	OutcomeFled
	OutcomeLost
)

// NothingName is the name of the sentinel item filling an empty slot.
const NothingName = "Nothing"

// NoQuest is the sentinel quest target meaning "no active quest".
const NoQuest = "None"

// Stats holds the five character attributes. Relics reuse it for bonuses.
type Stats struct {
	Str int `json:"str"`
	Dex int `json:"dex"`
	End int `json:"end"`
	Int int `json:"int"`
	Luk int `json:"luk"`
}

// Item is a piece of equipment or an inventory item.
type Item struct {
	Name           string     `json:"name"`
	Position       Position   `json:"position"`
	Power          float64    `json:"power"`
	AttackType     AttackType `json:"attackType,omitempty"` // weapons only
	Bonus          Stats      `json:"bonus"`                // relics only
	Gold           float64    `json:"gold"`
	PreviousOwners []string   `json:"previousOwners,omitempty"`
}

// Equipment is the four equipped slots.
type Equipment struct {
	Helmet Item `json:"helmet"`
	Armor  Item `json:"armor"`
	Weapon Item `json:"weapon"`
	Relic  Item `json:"relic"`
}

// Inventory holds carried items. Items is bounded; Equipment is the overflow
// list of unequipped gear waiting to be sold.
type Inventory struct {
	Items     []Item `json:"items"`
	Equipment []Item `json:"equipment"`
}

// QuestMob is the active kill-quest target.
type QuestMob struct {
	Name      string `json:"name"`
	Count     int    `json:"count"`
	KillCount int    `json:"killCount"`
}

// Quest is a character's single active quest record.
type Quest struct {
	Mob       QuestMob  `json:"questMob"`
	Completed int       `json:"completed"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Experience counters.
type Experience struct {
	Current int `json:"current"`
	Lost    int `json:"lost"`
	Total   int `json:"total"`
}

// GambleGold tracks gold won and lost gambling.
type GambleGold struct {
	Won  int `json:"won"`
	Lost int `json:"lost"`
}

// Gold counters.
type Gold struct {
	Current      int        `json:"current"`
	Lost         int        `json:"lost"`
	Stolen       int        `json:"stolen"`
	Stole        int        `json:"stole"`
	Total        int        `json:"total"`
	DailyLottery int        `json:"dailyLottery"`
	Gambles      GambleGold `json:"gambles"`
}

// Spell is a scroll in a character's spellbook.
type Spell struct {
	Name        string `json:"name"`
	Power       int    `json:"power"`
	Description string `json:"description"`
}

// PersonalBoost records an active personal multiplier effect.
type PersonalBoost struct {
	Amount    int       `json:"amount"`
	Previous  int       `json:"previous"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Tally is a mob/player pair of counters.
type Tally struct {
	Mob    int `json:"mob"`
	Player int `json:"player"`
}

// FledTally additionally counts encounters where the character fled.
type FledTally struct {
	Mob    int `json:"mob"`
	Player int `json:"player"`
	You    int `json:"you"`
}

// Battles counts won and lost player fights.
type Battles struct {
	Won  int `json:"won"`
	Lost int `json:"lost"`
}

// Lottery is a character's daily lottery entry.
type Lottery struct {
	Joined bool `json:"joined"`
	Amount int  `json:"amount"`
}

// Character is the full persisted record of a player character.
type Character struct {
	ID                 string         `json:"id"`
	GuildID            string         `json:"guildId"`
	Name               string         `json:"name"`
	Title              string         `json:"title"`
	Gender             string         `json:"gender"`
	Mention            string         `json:"mention"` // off, action, move, on
	PrivateMessage     bool           `json:"privateMessage"`
	Level              int            `json:"level"`
	Health             int            `json:"health"`
	Stats              Stats          `json:"stats"`
	Experience         Experience     `json:"experience"`
	Gold               Gold           `json:"gold"`
	Equipment          Equipment      `json:"equipment"`
	Inventory          Inventory      `json:"inventory"`
	Quest              *Quest         `json:"quest,omitempty"`
	Spells             []Spell        `json:"spells"`
	PersonalMultiplier int            `json:"personalMultiplier"`
	Boost              *PersonalBoost `json:"boost,omitempty"`
	Map                string         `json:"map"`
	Kills              Tally          `json:"kills"`
	Deaths             Tally          `json:"deaths"`
	Fled               FledTally      `json:"fled"`
	Battles            Battles        `json:"battles"`
	Stole              int            `json:"stole"`
	Stolen             int            `json:"stolen"`
	Gambles            int            `json:"gambles"`
	SpellCast          int            `json:"spellCast"`
	Events             int            `json:"events"`
	Lottery            Lottery        `json:"lottery"`
}

// Monster is a generated opponent. DmgDealt and DmgReceived are scoped to a
// single encounter.
type Monster struct {
	Name        string    `json:"name"`
	Level       int       `json:"level"`
	Stats       Stats     `json:"stats"`
	Equipment   Equipment `json:"equipment"`
	Experience  int       `json:"experience"`
	Gold        int       `json:"gold"`
	Health      int       `json:"health"`
	MaxHealth   int       `json:"maxHealth"`
	DmgDealt    int       `json:"-"`
	DmgReceived int       `json:"-"`
}

// BlessEffect is one cast of the bless spell on a guild.
type BlessEffect struct {
	ID        string    `json:"id"`
	Caster    string    `json:"caster"`
	Amount    int       `json:"amount"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// GuildConfig is the per-guild shared configuration record.
type GuildConfig struct {
	GuildID         string        `json:"guildId"`
	CommandPrefix   string        `json:"commandPrefix"`
	Multiplier      int           `json:"multiplier"`
	ActiveBless     int           `json:"activeBless"`
	Blessings       []BlessEffect `json:"blessings"`
	BlizzardActive  bool          `json:"blizzardActive"`
	BlizzardEndsAt  time.Time     `json:"blizzardEndsAt"`
	LotteryPrize    int           `json:"lotteryPrizePool"`
	LotteryEntrants []string      `json:"lotteryEntrants"`
}

// MobResult is the per-defender classification of a PVE encounter.
type MobResult struct {
	Name     string
	Outcome  Outcome
	YouFled  bool // on OutcomeFled: true if the attacker is deemed to have fled
	Monster  Monster
	ExpGain  int
	GoldGain int
}

// Message is the pair of strings produced by a resolved event. To names the
// character the private half is for; empty means the acting character.
type Message struct {
	Broadcast string
	Private   string
	To        string
}

// Result is the output of a single engine operation. Character is a modified
// copy for the caller to persist; nil when nothing happened.
type Result struct {
	Character *Character
	Others    []*Character // other modified characters (PVP opponent, lottery entrants)
	Guild     *GuildConfig // modified guild config, nil when untouched
	Outcome   Outcome
	Messages  []Message
	Declined  bool
	Reason    string
	Boost     *PersonalBoost // personal boost whose expiry must be scheduled
	Bless     *BlessEffect   // bless stack whose expiry must be scheduled
}

// Command is a parsed simulator command: a canonical verb and its arguments.
type Command struct {
	Verb string
	Args []string
}
