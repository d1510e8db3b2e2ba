package engine

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/quest"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/state"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

func TestCastBless(t *testing.T) {
	tests := []struct {
		name      string
		gold      int
		amount    string
		wantDecl  string
		wantMult  int
		wantGold  int
		wantCasts int
	}{
		{"default one stack", 1500, "", "", 2, 0, 1},
		{"two stacks", 3500, "2", "", 3, 500, 2},
		{"negative counts as positive", 3000, "-2", "", 3, 0, 2},
		{"all", 4600, "all", "", 4, 100, 3},
		{"not a number", 5000, "lots", "valid amount", 0, 0, 0},
		{"zero", 5000, "0", "valid amount", 0, 0, 0},
		{"too poor", 1000, "1", "lacking 500 gold", 0, 0, 0},
		{"all while poor", 100, "all", "lacking 1400 gold", 0, 0, 0},
		{"amount overflowing the cost", 1000, "6148914691236518", "afford at most 0 casts", 0, 0, 0},
		{"huge amount while rich", 4600, "-6148914691236518", "afford at most 3 casts", 0, 0, 0},
		{"one more than affordable", 4600, "4", "lacking 1400 gold", 0, 0, 0},
		{"smallest int", 5000, "-9223372036854775808", "valid amount", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(1)
			c := hero("p1", "Aria")
			c.Gold.Current = tt.gold
			g := guild()
			gBefore := state.CloneGuild(g)

			res := e.CastBless(c, g, tt.amount)
			if !reflect.DeepEqual(g, gBefore) {
				t.Fatal("caller's guild was modified")
			}
			if tt.wantDecl != "" {
				if !res.Declined || !strings.Contains(res.Reason, tt.wantDecl) {
					t.Errorf("reason = %q, want %q", res.Reason, tt.wantDecl)
				}
				if res.Character != nil || res.Guild != nil || c.Gold.Current != tt.gold {
					t.Errorf("declined cast changed state: %+v", res)
				}
				return
			}
			if res.Guild == nil || res.Bless == nil {
				t.Fatalf("result = %+v", res)
			}
			if res.Guild.Multiplier != tt.wantMult || res.Guild.ActiveBless != tt.wantMult-1 {
				t.Errorf("multiplier %d active %d", res.Guild.Multiplier, res.Guild.ActiveBless)
			}
			if res.Character.Gold.Current != tt.wantGold || res.Character.SpellCast != tt.wantCasts {
				t.Errorf("gold %d casts %d", res.Character.Gold.Current, res.Character.SpellCast)
			}
			if !res.Bless.ExpiresAt.Equal(testNow.Add(time.Hour)) || res.Bless.Amount != tt.wantCasts {
				t.Errorf("bless = %+v", res.Bless)
			}
			if len(res.Guild.Blessings) != 1 {
				t.Errorf("blessings = %+v", res.Guild.Blessings)
			}
		})
	}
}

func TestCastBless_Stacks(t *testing.T) {
	e := newTestEngine(1)
	c := hero("p1", "Aria")
	c.Gold.Current = 3000
	g := guild()

	first := e.CastBless(c, g, "1")
	second := e.CastBless(first.Character, first.Guild, "1")
	if second.Guild.Multiplier != 3 || len(second.Guild.Blessings) != 2 {
		t.Errorf("guild = %+v", second.Guild)
	}
	if first.Bless.ID == second.Bless.ID {
		t.Error("bless effects share an id")
	}
	if !strings.Contains(second.Messages[0].Broadcast, "Current Multiplier is: 3x") {
		t.Errorf("broadcast = %q", second.Messages[0].Broadcast)
	}
}

func TestCastHome(t *testing.T) {
	e := newTestEngine(1)
	c := hero("p1", "Aria")
	c.Map = "Dark Forest"
	c.Gold.Current = 700

	res := e.CastHome(c)
	h := res.Character
	if h.Map != "Kindale" && h.Map != "Norpond" {
		t.Errorf("map = %q", h.Map)
	}
	if h.Gold.Current != 200 || h.SpellCast != 1 {
		t.Errorf("gold %d casts %d", h.Gold.Current, h.SpellCast)
	}

	c.Gold.Current = 499
	if res := e.CastHome(c); !res.Declined || !strings.Contains(res.Reason, "lacking 1 gold") {
		t.Errorf("reason = %q", res.Reason)
	}
}

func TestJoinLottery(t *testing.T) {
	e := newTestEngine(1)
	c := hero("p1", "Aria")
	c.Gold.Current = 150
	g := guild()

	res := e.JoinLottery(c, g)
	if res.Declined {
		t.Fatalf("declined: %s", res.Reason)
	}
	if !res.Character.Lottery.Joined || res.Character.Gold.Current != 50 || res.Character.Lottery.Amount != 100 {
		t.Errorf("character lottery = %+v gold %d", res.Character.Lottery, res.Character.Gold.Current)
	}
	if res.Guild.LotteryPrize != 1600 || len(res.Guild.LotteryEntrants) != 1 {
		t.Errorf("guild = %+v", res.Guild)
	}

	again := e.JoinLottery(res.Character, res.Guild)
	if !again.Declined || !strings.Contains(again.Reason, "already joined") {
		t.Errorf("second join: %+v", again)
	}

	poor := hero("p2", "Bram")
	if res := e.JoinLottery(poor, g); !res.Declined {
		t.Error("joining without gold should be declined")
	}
}

func TestDrawLottery(t *testing.T) {
	e := newTestEngine(4)
	g := guild()
	g.LotteryPrize = 1800
	var entrants []*types.Character
	for _, id := range []string{"p1", "p2", "p3"} {
		c := hero(id, strings.ToUpper(id))
		c.Lottery.Joined = true
		entrants = append(entrants, c)
		g.LotteryEntrants = append(g.LotteryEntrants, id)
	}

	res := e.DrawLottery(g, entrants)
	if res.Character == nil || len(res.Others) != 2 {
		t.Fatalf("result = %+v", res)
	}
	w := res.Character
	if w.Gold.Current != 1800 || w.Gold.DailyLottery != 1800 || w.Gold.Total != 1800 {
		t.Errorf("winner gold = %+v", w.Gold)
	}
	for _, c := range append(res.Others, w) {
		if c.Lottery.Joined {
			t.Errorf("%s still joined", c.ID)
		}
	}
	if res.Guild.LotteryPrize != 1500 || len(res.Guild.LotteryEntrants) != 0 {
		t.Errorf("guild = %+v", res.Guild)
	}
	if len(res.Messages) != 3 {
		t.Errorf("messages = %d", len(res.Messages))
	}
	if entrants[0].Lottery.Joined != true {
		t.Error("caller's entrants were modified")
	}
}

func TestDrawLottery_NoEntrants(t *testing.T) {
	if res := newTestEngine(1).DrawLottery(guild(), nil); res.Guild != nil || len(res.Messages) != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestStartBlizzard(t *testing.T) {
	e := newTestEngine(1)
	g := guild()
	res := e.StartBlizzard(g)
	if res.Guild == nil || !res.Guild.BlizzardActive {
		t.Fatalf("result = %+v", res)
	}
	ends := res.Guild.BlizzardEndsAt
	if ends.Before(testNow.Add(2*time.Hour)) || ends.After(testNow.Add(20*time.Hour)) {
		t.Errorf("ends at %v", ends)
	}
	if g.BlizzardActive {
		t.Error("caller's guild was modified")
	}
	if again := e.StartBlizzard(res.Guild); again.Guild != nil {
		t.Error("a raging blizzard should not restart")
	}
	if e.BlizzardFarewell() == "" {
		t.Error("empty farewell")
	}
}

func TestSnowflake_OnlyDuringBlizzard(t *testing.T) {
	e := newTestEngine(1)
	for i := 0; i < 50; i++ {
		if res := e.Snowflake(hero("p1", "Aria"), guild()); res.Character != nil {
			t.Fatal("snowflake caught without a blizzard")
		}
	}

	g := guild()
	g.BlizzardActive = true
	caught := false
	for i := 0; i < 300 && !caught; i++ {
		if res := e.Snowflake(hero("p1", "Aria"), g); res.Character != nil {
			caught = res.Character.Equipment.Relic.Name == "Snowflake of Frost"
		}
	}
	if !caught {
		t.Error("no snowflake in 300 tries")
	}
}

func TestResetQuest(t *testing.T) {
	e := newTestEngine(1)

	none := hero("p1", "Aria")
	if res := e.ResetQuest(none); !strings.Contains(res.Reason, "no quest") {
		t.Errorf("reason = %q", res.Reason)
	}

	fresh := hero("p1", "Aria")
	quest.Assign(fresh, "Rat", 5, testNow.Add(-time.Hour))
	if res := e.ResetQuest(fresh); !strings.Contains(res.Reason, "at least 2 days old") {
		t.Errorf("reason = %q", res.Reason)
	}

	old := hero("p1", "Aria")
	quest.Assign(old, "Rat", 5, testNow.Add(-72*time.Hour))
	res := e.ResetQuest(old)
	if res.Declined || res.Character == nil {
		t.Fatalf("result = %+v", res)
	}
	if !strings.HasPrefix(res.Messages[0].Private, "Quest Rat has been changed to") {
		t.Errorf("message = %q", res.Messages[0].Private)
	}
	if !res.Character.Quest.UpdatedAt.Equal(testNow) {
		t.Errorf("updated at %v", res.Character.Quest.UpdatedAt)
	}
}

func TestQuest_RespectsActiveQuest(t *testing.T) {
	e := newTestEngine(1)
	c := hero("p1", "Aria")

	res := e.Quest(c, false)
	if res.Character == nil || !quest.Active(res.Character) || res.Character.Events != 1 {
		t.Fatalf("result = %+v", res)
	}
	if again := e.Quest(res.Character, false); again.Character != nil {
		t.Error("an active quest was replaced without force")
	}
	if forced := e.Quest(res.Character, true); forced.Character == nil {
		t.Error("force did not assign a quest")
	}
}

func TestSell(t *testing.T) {
	e := newTestEngine(1)
	c := hero("p1", "Aria")
	c.Inventory.Equipment = []types.Item{
		{Name: "Old Cap", Position: types.PosHelmet, Gold: 10.5},
		{Name: "Old Mail", Position: types.PosArmor, Gold: 20},
	}
	res := e.Sell(c)
	if res.Character.Gold.Current != 30 || len(res.Character.Inventory.Equipment) != 0 {
		t.Errorf("gold %d overflow %d", res.Character.Gold.Current, len(res.Character.Inventory.Equipment))
	}
	if len(c.Inventory.Equipment) != 2 {
		t.Error("caller's inventory was modified")
	}
	if nothing := e.Sell(hero("p2", "Bram")); nothing.Character != nil {
		t.Error("selling nothing should be a no-op")
	}
}

func TestMove(t *testing.T) {
	for seed := int64(1); seed <= 30; seed++ {
		e := newTestEngine(seed)
		c := hero("p1", "Aria")
		before := state.Clone(c)
		res := e.Move(c, guild())
		if !reflect.DeepEqual(c, before) {
			t.Fatalf("seed %d: caller was modified", seed)
		}
		if res.Character == nil || res.Character.Map == "Kindale" {
			// Stayed in town: a quest offer, which always happens for a
			// hero without one.
			if res.Character == nil || !quest.Active(res.Character) {
				t.Fatalf("seed %d: stayed without a quest: %+v", seed, res)
			}
			continue
		}
		if !strings.Contains(res.Messages[0].Private, "arrived in "+res.Character.Map) {
			t.Fatalf("seed %d: message %q", seed, res.Messages[0].Private)
		}
	}
}

func TestTick_AlwaysLeavesHeroAlive(t *testing.T) {
	for seed := int64(1); seed <= 200; seed++ {
		e := newTestEngine(seed)
		c := armed(hero("p1", "Aria"), 5)
		c.Gold.Current = 400
		c.Map = []string{"Kindale", "Dark Forest", "Norpond"}[seed%3]
		rival := hero("p2", "Bram")
		rival.Map = c.Map
		before := state.Clone(c)

		res := e.Tick(c, guild(), []*types.Character{rival})
		if !reflect.DeepEqual(c, before) {
			t.Fatalf("seed %d: caller was modified", seed)
		}
		if res.Character != nil && res.Character.Health <= 0 {
			t.Fatalf("seed %d: hero left at %d health", seed, res.Character.Health)
		}
		for _, o := range res.Others {
			if o.Health <= 0 {
				t.Fatalf("seed %d: rival left at %d health", seed, o.Health)
			}
		}
	}
}

func TestTick_DeadRecordRespawns(t *testing.T) {
	e := newTestEngine(1)
	c := hero("p1", "Aria")
	c.Map = "Dark Forest"
	c.Health = 0

	res := e.Tick(c, guild(), nil)
	if res.Character == nil || res.Character.Health != 105 || res.Character.Map != "Kindale" {
		t.Errorf("result = %+v", res.Character)
	}
}

func TestStatus(t *testing.T) {
	g := guild()
	g.Multiplier, g.ActiveBless = 4, 3
	g.LotteryEntrants = []string{"a", "b"}
	if got := MultiplierStatus(g); got != "Current Multiplier: 4x\nActive Bless: 3x" {
		t.Errorf("multiplier status = %q", got)
	}
	if got := LotteryStatus(g); got != "There are 2 contestants for a prize pool of 1500 gold!" {
		t.Errorf("lottery status = %q", got)
	}
}
