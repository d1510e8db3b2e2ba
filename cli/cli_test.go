package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mblgbs/RPG-bot-for-Discord/content"
	"github.com/mblgbs/RPG-bot-for-Discord/engine"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/effects"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/rng"
	"github.com/mblgbs/RPG-bot-for-Discord/persist"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// testDefs returns a small world for CLI testing.
func testDefs() *content.Defs {
	return &content.Defs{
		World: content.WorldDef{Name: "Test", Respawn: "Kindale"},
		Monsters: []content.MonsterDef{
			{Name: "Rat", Level: 1, Weight: 1, Stats: types.Stats{Str: 1, Dex: 1, End: 1}, Power: 1, Health: 5, Experience: 5, Gold: 2},
		},
		Items: []content.ItemDef{
			{Name: "Short Sword", Position: types.PosWeapon, AttackType: types.Melee, Level: 1, Weight: 1, Power: 3, Gold: 20},
		},
		Spells: []content.SpellDef{{Name: "Minor Fireball", Level: 1, Weight: 1, Power: 2}},
		Maps: []content.MapDef{
			{Name: "Kindale", Town: true},
			{Name: "Dark Forest"},
		},
	}
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer, *persist.Memory) {
	t.Helper()
	c, out, store, _ := newScheduledCLI(t, input)
	return c, out, store
}

func newScheduledCLI(t *testing.T, input string) (*CLI, *bytes.Buffer, *persist.Memory, *effects.ManualScheduler) {
	t.Helper()
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	r := rng.New(1)
	sched := effects.NewManualScheduler(start)
	store := persist.NewMemory(1500)
	eng := engine.New(r, content.New(testDefs(), r), engine.DefaultConfig(), nil)
	eng.SetClock(sched.Now)
	timers := effects.NewTimers(store, sched, nil)
	timers.SetClock(sched.Now)

	var out bytes.Buffer
	c := &CLI{
		GuildID:   "local",
		Player:    "p1",
		Prefix:    "!",
		In:        strings.NewReader(input),
		Out:       &out,
		SaveDir:   t.TempDir(),
		Seed:      1,
		Snapshots: store,
	}
	c.Runner = engine.NewRunner(eng, store, timers, c, 0, nil)
	return c, &out, store, sched
}

func TestCLI_JoinAndStats(t *testing.T) {
	c, out, store := newTestCLI(t, "join Aria\n!stats\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "Aria has joined the world in Kindale.") {
		t.Error("expected join broadcast")
	}
	if !strings.Contains(output, "(to p1) Here are your stats!") {
		t.Error("expected private stats sheet")
	}
	if _, err := store.LoadCharacter(context.Background(), "p1"); err != nil {
		t.Errorf("character not stored: %v", err)
	}
}

func TestCLI_HelpCommand(t *testing.T) {
	c, out, _ := newTestCLI(t, "/help\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	for _, want := range []string{"/save", "/load", "/quit", "/tick", "cast bless"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in help output", want)
		}
	}
}

func TestCLI_PrivateMessagesFiltered(t *testing.T) {
	c, out, _ := newTestCLI(t, "join Aria\n/as p2\njoin Bram\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "(to p2) Welcome Bram!") {
		t.Error("expected p2's welcome after switching")
	}
	if !strings.Contains(output, "Now playing as p2.") {
		t.Error("expected switch confirmation")
	}

	var buf bytes.Buffer
	c.Out = &buf
	c.Player = "p1"
	c.Send(context.Background(), "local", types.Message{Private: "secret", To: "p2"})
	if strings.Contains(buf.String(), "secret") {
		t.Error("another character's private message was shown")
	}
	c.ShowAll = true
	c.Send(context.Background(), "local", types.Message{Private: "secret", To: "p2"})
	if !strings.Contains(buf.String(), "(to p2) secret") {
		t.Error("ShowAll did not show the private message")
	}
}

func TestCLI_Tick(t *testing.T) {
	c, out, _ := newTestCLI(t, "join Aria\n/tick 3\n/tick zero\n/quit\n")
	c.Run(context.Background())

	output := out.String()
	if !strings.Contains(output, "3 tick(s) done.") {
		t.Error("expected tick confirmation")
	}
	if !strings.Contains(output, "Usage: /tick") {
		t.Error("expected usage for a bad count")
	}
}

func TestCLI_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	c, out, _ := newTestCLI(t, "join Aria\n/save test\n/quit\n")
	c.SaveDir = dir
	c.Run(context.Background())
	if !strings.Contains(out.String(), "World saved to test.") {
		t.Fatal("expected save confirmation")
	}

	c2, out2, store2 := newTestCLI(t, "/load test\nstats\n/quit\n")
	c2.SaveDir = dir
	c2.Run(context.Background())

	output := out2.String()
	if !strings.Contains(output, "World loaded from test (seed 1).") {
		t.Error("expected load confirmation")
	}
	if strings.Contains(output, "don't have a character") {
		t.Error("character missing after load")
	}
	if _, err := store2.LoadCharacter(context.Background(), "p1"); err != nil {
		t.Errorf("character not restored: %v", err)
	}
}

func TestCLI_LoadRestartsEffectTimers(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c, out, store, sched := newScheduledCLI(t, "/save blessed\n/quit\n")
	c.SaveDir = dir
	store.SaveGuildConfig(ctx, &types.GuildConfig{
		GuildID:     "local",
		Multiplier:  3,
		ActiveBless: 2,
		Blessings:   []types.BlessEffect{{ID: "b1", Caster: "Aria", Amount: 2, ExpiresAt: sched.Now().Add(time.Hour)}},
	})
	c.Run(ctx)
	if !strings.Contains(out.String(), "World saved to blessed.") {
		t.Fatal("expected save confirmation")
	}

	c2, out2, store2, sched2 := newScheduledCLI(t, "/load blessed\n/quit\n")
	c2.SaveDir = dir
	c2.Run(ctx)
	if !strings.Contains(out2.String(), "World loaded from blessed (seed 1).") {
		t.Fatalf("output = %s", out2.String())
	}
	if sched2.Pending() != 1 {
		t.Fatalf("pending timers = %d, want 1", sched2.Pending())
	}

	sched2.Advance(time.Hour)
	g, err := store2.LoadGuildConfig(ctx, "local")
	if err != nil {
		t.Fatal(err)
	}
	if g.Multiplier != 1 || g.ActiveBless != 0 || len(g.Blessings) != 0 {
		t.Errorf("guild after expiry = %+v", g)
	}
}

func TestCLI_LoadNonexistent(t *testing.T) {
	c, out, _ := newTestCLI(t, "/load nonexistent\n/quit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "Load failed") {
		t.Error("expected load failure message")
	}
}

func TestCLI_NoSnapshots(t *testing.T) {
	c, out, _ := newTestCLI(t, "/save\n/quit\n")
	c.Snapshots = nil
	c.Run(context.Background())

	if !strings.Contains(out.String(), "does not support snapshots") {
		t.Error("expected snapshot failure")
	}
}

func TestCLI_UnknownMetaCommand(t *testing.T) {
	c, out, _ := newTestCLI(t, "/bogus\n/quit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "Unknown command") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_Again_RepeatsLastCommand(t *testing.T) {
	c, out, _ := newTestCLI(t, "join Aria\nmultiplier\nagain\ng\n/quit\n")
	c.Run(context.Background())

	if n := strings.Count(out.String(), "Current Multiplier: 1x"); n != 3 {
		t.Errorf("expected the multiplier 3 times, got %d", n)
	}
}

func TestCLI_Again_NothingToRepeat(t *testing.T) {
	c, out, _ := newTestCLI(t, "again\n/quit\n")
	c.Run(context.Background())

	if !strings.Contains(out.String(), "Nothing to repeat") {
		t.Error("expected 'Nothing to repeat' when no prior command")
	}
}

func TestCLI_CommentsAndBlankLinesSkipped(t *testing.T) {
	c, out, _ := newTestCLI(t, "\n# a comment\n\n/quit\n")
	c.Run(context.Background())

	if strings.Contains(out.String(), "a comment") || strings.Contains(out.String(), "Unknown command") {
		t.Error("comments should be ignored")
	}
}
