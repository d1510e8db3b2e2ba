package engine

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mblgbs/RPG-bot-for-Discord/content"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/effects"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/parser"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/rng"
	"github.com/mblgbs/RPG-bot-for-Discord/persist"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

type inbox struct {
	mu   sync.Mutex
	msgs []types.Message
}

func (b *inbox) Send(_ context.Context, _ string, m types.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, m)
	return nil
}

func (b *inbox) has(substr string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return hasMessage(b.msgs, substr)
}

type world struct {
	runner *Runner
	store  *persist.Memory
	sched  *effects.ManualScheduler
	inbox  *inbox
}

func newWorld(t *testing.T, seed int64) *world {
	t.Helper()
	r := rng.New(seed)
	sched := effects.NewManualScheduler(testNow)
	store := persist.NewMemory(1500)
	e := New(r, content.New(testDefs(), r), DefaultConfig(), nil)
	e.SetClock(sched.Now)
	timers := effects.NewTimers(store, sched, nil)
	timers.SetClock(sched.Now)
	out := &inbox{}
	return &world{
		runner: NewRunner(e, store, timers, out, 0, nil),
		store:  store,
		sched:  sched,
		inbox:  out,
	}
}

func (w *world) do(t *testing.T, id, input string) types.Result {
	t.Helper()
	res, err := w.runner.Do(context.Background(), "g1", id, parser.Parse(input, "!"))
	if err != nil {
		t.Fatalf("%s: %v", input, err)
	}
	return res
}

func (w *world) character(t *testing.T, id string) *types.Character {
	t.Helper()
	c, err := w.store.LoadCharacter(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func (w *world) guild(t *testing.T) *types.GuildConfig {
	t.Helper()
	g, err := w.store.LoadGuildConfig(context.Background(), "g1")
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func (w *world) setGold(t *testing.T, id string, gold int) {
	t.Helper()
	c := w.character(t, id)
	c.Gold.Current = gold
	if err := w.store.SaveCharacter(context.Background(), c); err != nil {
		t.Fatal(err)
	}
}

func TestRunner_Join(t *testing.T) {
	w := newWorld(t, 1)
	w.do(t, "p1", "!join Aria Stormborn")

	c := w.character(t, "p1")
	if c.Name != "Aria Stormborn" || c.GuildID != "g1" || c.Map != "Kindale" {
		t.Errorf("character = %+v", c)
	}
	if !w.inbox.has("Welcome Aria Stormborn") {
		t.Error("no welcome message")
	}

	res := w.do(t, "p1", "join Someone")
	if !strings.Contains(res.Messages[0].Private, "already have a character") {
		t.Errorf("second join: %+v", res.Messages)
	}
	if res := w.do(t, "p2", "join"); !strings.Contains(res.Messages[0].Private, "name") {
		t.Errorf("nameless join: %+v", res.Messages)
	}
}

func TestRunner_NoCharacter(t *testing.T) {
	w := newWorld(t, 1)
	res := w.do(t, "ghost", "attack")
	if !strings.Contains(res.Messages[0].Private, "don't have a character") {
		t.Errorf("messages = %+v", res.Messages)
	}
}

func TestRunner_Displays(t *testing.T) {
	w := newWorld(t, 1)
	w.do(t, "p1", "join Aria")

	tests := []struct {
		input string
		want  string
	}{
		{"stats", "Here are your stats!"},
		{"multiplier", "Current Multiplier: 1x"},
		{"pool", "prize pool of 1500 gold"},
		{"characters", "Aria  level 1  Kindale"},
		{"dance", `Unknown command "dance"`},
	}
	for _, tt := range tests {
		res := w.do(t, "p1", tt.input)
		if len(res.Messages) != 1 || !strings.Contains(res.Messages[0].Private, tt.want) {
			t.Errorf("%s: messages = %+v, want %q", tt.input, res.Messages, tt.want)
		}
		if res.Character != nil {
			t.Errorf("%s: display command returned a character", tt.input)
		}
	}
}

func TestRunner_Settings(t *testing.T) {
	w := newWorld(t, 1)
	w.do(t, "p1", "join Aria")

	w.do(t, "p1", "mention on")
	w.do(t, "p1", "gender female")
	w.do(t, "p1", "private on")
	c := w.character(t, "p1")
	if c.Mention != "on" || c.Gender != "female" || !c.PrivateMessage {
		t.Errorf("settings = %q %q %v", c.Mention, c.Gender, c.PrivateMessage)
	}

	if res := w.do(t, "p1", "gender robot"); !res.Declined {
		t.Error("unknown gender accepted")
	}
	if res := w.do(t, "p1", "mention sometimes"); !res.Declined {
		t.Error("unknown mention mode accepted")
	}
}

func TestRunner_BlessExpires(t *testing.T) {
	w := newWorld(t, 1)
	w.do(t, "p1", "join Aria")
	w.setGold(t, "p1", 3000)

	res := w.do(t, "p1", "cast bless 2")
	if res.Declined {
		t.Fatalf("declined: %s", res.Reason)
	}
	if g := w.guild(t); g.Multiplier != 3 || g.ActiveBless != 2 {
		t.Fatalf("guild = %+v", g)
	}
	if w.sched.Pending() != 1 {
		t.Fatalf("pending = %d", w.sched.Pending())
	}

	w.sched.Advance(61 * time.Minute)
	g := w.guild(t)
	if g.Multiplier != 1 || g.ActiveBless != 0 || len(g.Blessings) != 0 {
		t.Errorf("after expiry: %+v", g)
	}
	if !w.inbox.has("bless just wore off") {
		t.Error("no expiry announcement")
	}
}

func TestRunner_OverlappingBlessesExpireSeparately(t *testing.T) {
	w := newWorld(t, 1)
	w.do(t, "p1", "join Aria")
	w.do(t, "p2", "join Bram")
	w.setGold(t, "p1", 1500)
	w.setGold(t, "p2", 1500)

	w.do(t, "p1", "cast bless")
	w.sched.Advance(30 * time.Minute)
	w.do(t, "p2", "cast bless")
	if g := w.guild(t); g.Multiplier != 3 {
		t.Fatalf("multiplier = %d", g.Multiplier)
	}

	w.sched.Advance(31 * time.Minute)
	if g := w.guild(t); g.Multiplier != 2 || g.ActiveBless != 1 {
		t.Errorf("after first expiry: %+v", g)
	}
	w.sched.Advance(30 * time.Minute)
	if g := w.guild(t); g.Multiplier != 1 || g.ActiveBless != 0 {
		t.Errorf("after second expiry: %+v", g)
	}
}

func TestRunner_BoostExpires(t *testing.T) {
	w := newWorld(t, 1)
	w.do(t, "p1", "join Aria")
	c := w.character(t, "p1")
	c.PersonalMultiplier = 2
	b := types.PersonalBoost{Amount: 2, Previous: 0, ExpiresAt: testNow.Add(2 * time.Minute)}
	c.Boost = &b

	if err := w.runner.commit(context.Background(), "g1", types.Result{Character: c, Boost: &b}); err != nil {
		t.Fatal(err)
	}
	w.sched.Advance(3 * time.Minute)
	c = w.character(t, "p1")
	if c.PersonalMultiplier != 0 || c.Boost != nil {
		t.Errorf("after expiry: multiplier %d boost %+v", c.PersonalMultiplier, c.Boost)
	}
}

func TestRunner_ExpiryOfDeletedRecordIsSkipped(t *testing.T) {
	w := newWorld(t, 1)
	b := types.PersonalBoost{Amount: 2, ExpiresAt: testNow.Add(time.Minute)}
	w.runner.timers.ScheduleBoost("nobody", b)
	if n := w.sched.Advance(2 * time.Minute); n != 1 {
		t.Errorf("fired = %d", n)
	}
}

func TestRunner_Lottery(t *testing.T) {
	w := newWorld(t, 2)
	for _, p := range []struct{ id, name string }{{"p1", "Aria"}, {"p2", "Bram"}, {"p3", "Cato"}} {
		w.do(t, p.id, "join "+p.name)
		w.setGold(t, p.id, 200)
		w.do(t, p.id, "join lottery")
	}
	g := w.guild(t)
	if g.LotteryPrize != 1800 || len(g.LotteryEntrants) != 3 {
		t.Fatalf("guild = %+v", g)
	}

	res := w.do(t, "p1", "draw")
	if res.Character == nil {
		t.Fatal("no winner")
	}
	if got := w.character(t, res.Character.ID).Gold.Current; got != 1900 {
		t.Errorf("winner gold = %d", got)
	}
	g = w.guild(t)
	if g.LotteryPrize != 1500 || len(g.LotteryEntrants) != 0 {
		t.Errorf("guild after draw = %+v", g)
	}
	for _, id := range []string{"p1", "p2", "p3"} {
		if w.character(t, id).Lottery.Joined {
			t.Errorf("%s still joined", id)
		}
	}
}

func TestRunner_Blizzard(t *testing.T) {
	w := newWorld(t, 1)
	w.do(t, "p1", "blizzard")
	g := w.guild(t)
	if !g.BlizzardActive {
		t.Fatal("no blizzard")
	}
	w.sched.Advance(21 * time.Hour)
	if w.guild(t).BlizzardActive {
		t.Error("blizzard outlived its timer")
	}
	if len(w.inbox.msgs) < 2 {
		t.Errorf("messages = %+v", w.inbox.msgs)
	}
}

func TestRunner_PVP(t *testing.T) {
	w := newWorld(t, 1)
	w.do(t, "p1", "join Aria")

	if res := w.do(t, "p1", "pvp"); !res.Declined {
		t.Error("fight with nobody around should be declined")
	}
	w.do(t, "p2", "join Bram")
	if res := w.do(t, "p1", "pvp Cato"); !res.Declined || !strings.Contains(res.Reason, "no Cato") {
		t.Errorf("unknown rival: %+v", res)
	}

	res := w.do(t, "p1", "duel bram")
	if res.Outcome == 0 || len(res.Others) != 1 {
		t.Fatalf("result = %+v", res)
	}
	a, d := w.character(t, "p1"), w.character(t, "p2")
	if a.Events != 1 {
		t.Errorf("attacker events = %d", a.Events)
	}
	if a.Battles.Won+a.Battles.Lost+a.Fled.You+a.Fled.Player != 1 {
		t.Errorf("attacker tallies: %+v %+v", a.Battles, a.Fled)
	}
	if d.Experience.Total == 0 && d.Level == 1 {
		t.Error("defender record was not saved")
	}

	w.do(t, "p3", "join Cato Hill")
	w.do(t, "p4", "join Cato Vale")
	if res := w.do(t, "p1", "pvp cato"); !res.Declined || !strings.Contains(res.Reason, "Which cato? (Cato Hill, Cato Vale)") {
		t.Errorf("ambiguous rival: %+v", res)
	}
}

func TestRunner_Tick(t *testing.T) {
	w := newWorld(t, 7)
	for _, p := range []struct{ id, name string }{{"p1", "Aria"}, {"p2", "Bram"}, {"p3", "Cato"}} {
		w.do(t, p.id, "join "+p.name)
	}
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		if err := w.runner.Tick(ctx, "g1"); err != nil {
			t.Fatal(err)
		}
	}
	all, _ := w.store.ListCharacters(ctx, "g1")
	for _, c := range all {
		if c.Health <= 0 {
			t.Errorf("%s has %d health", c.ID, c.Health)
		}
	}
}

func TestRunner_TickStartsBlizzard(t *testing.T) {
	w := newWorld(t, 1)
	w.runner.blizzardChance = 100
	if err := w.runner.Tick(context.Background(), "g1"); err != nil {
		t.Fatal(err)
	}
	if !w.guild(t).BlizzardActive {
		t.Error("certain blizzard did not start")
	}
}

func TestRunner_TickHonoursCancel(t *testing.T) {
	w := newWorld(t, 1)
	w.do(t, "p1", "join Aria")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.runner.Tick(ctx, "g1"); err == nil {
		t.Error("cancelled tick returned nil")
	}
}

func TestRunner_Sweep(t *testing.T) {
	w := newWorld(t, 1)
	ctx := context.Background()

	g := &types.GuildConfig{
		GuildID:     "g1",
		Multiplier:  3,
		ActiveBless: 2,
		Blessings: []types.BlessEffect{
			{ID: "old", Caster: "Aria", Amount: 1, ExpiresAt: testNow.Add(-time.Minute)},
			{ID: "new", Caster: "Bram", Amount: 1, ExpiresAt: testNow.Add(30 * time.Minute)},
		},
		BlizzardActive: true,
		BlizzardEndsAt: testNow.Add(time.Hour),
	}
	w.store.SaveGuildConfig(ctx, g)

	stale := hero("p1", "Aria")
	stale.PersonalMultiplier = 2
	stale.Boost = &types.PersonalBoost{Amount: 2, Previous: 1, ExpiresAt: testNow.Add(-time.Minute)}
	live := hero("p2", "Bram")
	live.PersonalMultiplier = 3
	live.Boost = &types.PersonalBoost{Amount: 3, ExpiresAt: testNow.Add(time.Minute)}
	w.store.SaveCharacter(ctx, stale)
	w.store.SaveCharacter(ctx, live)

	if err := w.runner.Sweep(ctx, "g1"); err != nil {
		t.Fatal(err)
	}
	got := w.guild(t)
	if got.Multiplier != 2 || got.ActiveBless != 1 || len(got.Blessings) != 1 {
		t.Errorf("guild after sweep = %+v", got)
	}
	if c := w.character(t, "p1"); c.PersonalMultiplier != 1 || c.Boost != nil {
		t.Errorf("stale boost: multiplier %d boost %+v", c.PersonalMultiplier, c.Boost)
	}
	// Remaining bless, blizzard and boost are armed again.
	if w.sched.Pending() != 3 {
		t.Errorf("pending = %d", w.sched.Pending())
	}

	w.sched.Advance(2 * time.Hour)
	got = w.guild(t)
	if got.Multiplier != 1 || got.BlizzardActive {
		t.Errorf("guild after timers = %+v", got)
	}
	if c := w.character(t, "p2"); c.PersonalMultiplier != 0 {
		t.Errorf("live boost multiplier = %d", c.PersonalMultiplier)
	}
}

func TestRunner_SweepUnknownGuild(t *testing.T) {
	w := newWorld(t, 1)
	if err := w.runner.Sweep(context.Background(), "nowhere"); err != nil {
		t.Error(err)
	}
}
