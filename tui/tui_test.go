package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mblgbs/RPG-bot-for-Discord/content"
	"github.com/mblgbs/RPG-bot-for-Discord/engine"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/effects"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/parser"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/rng"
	"github.com/mblgbs/RPG-bot-for-Discord/persist"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

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
		Maps:   []content.MapDef{{Name: "Kindale", Town: true}, {Name: "Dark Forest"}},
	}
}

type session struct {
	model  Model
	runner *engine.Runner
	store  *persist.Memory
	feed   *Feed
	sched  *effects.ManualScheduler
}

func newSession(t *testing.T) *session {
	t.Helper()
	r := rng.New(1)
	sched := effects.NewManualScheduler(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	store := persist.NewMemory(1500)
	eng := engine.New(r, content.New(testDefs(), r), engine.DefaultConfig(), nil)
	eng.SetClock(sched.Now)
	timers := effects.NewTimers(store, sched, nil)
	timers.SetClock(sched.Now)
	feed := NewFeed(64)
	t.Cleanup(feed.Close)

	runner := engine.NewRunner(eng, store, timers, feed, 0, nil)
	m := New(context.Background(), runner, store, feed, Options{
		GuildID:   "local",
		Player:    "p1",
		Seed:      1,
		SaveDir:   t.TempDir(),
		Snapshots: store,
	})
	return &session{model: m, runner: runner, store: store, feed: feed, sched: sched}
}

// drain reads every queued message into the model.
func (s *session) drain() {
	for {
		select {
		case msg := <-s.feed.ch:
			next, _ := s.model.Update(worldMsg{msg: msg})
			s.model = next.(Model)
		default:
			return
		}
	}
}

func (s *session) log() string {
	var b strings.Builder
	for _, rl := range s.model.rawLines {
		b.WriteString(rl.text)
		b.WriteString("\n")
	}
	return b.String()
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"Aria has joined the world in Kindale.", 20, "Aria has joined the\nworld in Kindale."},
		{"", 80, ""},
		{"a b c d e", 3, "a b\nc d\ne"},
	}
	for _, tt := range tests {
		if got := wordWrap(tt.text, tt.width); got != tt.want {
			t.Errorf("wordWrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"[World saved to test.]", kindSystem},
		{"You don't have a character yet. Use join <name> to create one.", kindError},
		{"There is no one else in Kindale to fight.", kindError},
		{"Aria died and was carried back to Kindale.", kindDeath},
		{"Aria was slain by Wolf and carried back to Kindale.", kindDeath},
		{"Aria is now level 3!", kindHighlight},
		{"(to p1) Here are your stats!", kindPrivate},
		{"Aria killed a Rat.", kindBroadcast},
	}
	for _, tt := range tests {
		if got := classifyLine(tt.line); got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory(2)
	h.Push("attack")
	h.Push("attack")
	h.Push("move")
	h.Push("stats")
	if h.Len() != 2 {
		t.Fatalf("len = %d", h.Len())
	}

	for _, want := range []string{"stats", "move", "move"} {
		if got, ok := h.Prev(); !ok || got != want {
			t.Errorf("Prev = %q, %v; want %q", got, ok, want)
		}
	}
	if got, ok := h.Next(); !ok || got != "stats" {
		t.Errorf("Next = %q, %v", got, ok)
	}
	if _, ok := h.Next(); ok {
		t.Error("expected false past the newest entry")
	}
	if _, ok := NewHistory(5).Prev(); ok {
		t.Error("expected false on empty history")
	}
}

func TestFormat_PrivateFiltering(t *testing.T) {
	s := newSession(t)
	msg := types.Message{Broadcast: "Bram found gold.", Private: "You found 5 gold.", To: "p2"}

	if got := s.model.format(msg); len(got) != 1 || got[0] != "Bram found gold." {
		t.Errorf("format = %v", got)
	}
	s.model.showAll = true
	got := s.model.format(msg)
	if len(got) != 2 || got[1] != "(to p2) You found 5 gold." {
		t.Errorf("format with showAll = %v", got)
	}
	own := s.model.format(types.Message{Private: "Here are your stats!\nLevel: 1"})
	if len(own) != 2 || own[0] != "(to p1) Here are your stats!" || own[1] != "Level: 1" {
		t.Errorf("own private = %v", own)
	}
}

func TestDo_JoinUpdatesLogAndStatus(t *testing.T) {
	s := newSession(t)
	msg := s.model.do("!join Aria")()
	if done, ok := msg.(doneMsg); !ok || done.err != nil {
		t.Fatalf("do = %#v", msg)
	}
	s.drain()
	if !strings.Contains(s.log(), "(to p1) Welcome Aria!") {
		t.Errorf("log missing welcome:\n%s", s.log())
	}

	st := s.model.refreshStatus()().(statusMsg)
	if st.err != nil || !st.st.known || st.st.name != "Aria" || st.st.mapName != "Kindale" {
		t.Errorf("status = %+v", st)
	}
	if line := st.st.line(80); !strings.Contains(line, "Aria | Lv 1 | Kindale") || !strings.Contains(line, "x1") {
		t.Errorf("status line = %q", line)
	}
}

func TestStatus_NoCharacterAndBlizzard(t *testing.T) {
	s := newSession(t)
	st := s.model.refreshStatus()().(statusMsg)
	if st.err != nil || st.st.known {
		t.Fatalf("status = %+v", st)
	}
	if line := st.st.line(80); !strings.Contains(line, "no character") {
		t.Errorf("line = %q", line)
	}

	if _, err := s.runner.Do(context.Background(), "local", "p1", parser.Parse("blizzard", "!")); err != nil {
		t.Fatal(err)
	}
	st = s.model.refreshStatus()().(statusMsg)
	if !st.st.blizzard || !strings.Contains(st.st.line(80), "Blizzard") {
		t.Errorf("blizzard not shown: %+v", st.st)
	}
}

func TestHandleEnter_AgainAndMeta(t *testing.T) {
	s := newSession(t)

	s.model.input.SetValue("g")
	next, cmd := s.model.handleEnter()
	s.model = next.(Model)
	if cmd != nil || !strings.Contains(s.log(), "Nothing to repeat.") {
		t.Errorf("again with no history: cmd=%v log=%s", cmd, s.log())
	}

	s.model.input.SetValue("/quit")
	next, cmd = s.model.handleEnter()
	if !next.(Model).quitting || cmd == nil {
		t.Error("expected quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.Quit")
	}
}

func TestHandleMeta(t *testing.T) {
	s := newSession(t)
	m := &s.model

	if out, _, quit := m.handleMeta("/help"); quit || !strings.Contains(strings.Join(out, "\n"), "/tick") {
		t.Errorf("help = %v", out)
	}
	if out, _, _ := m.handleMeta("/bogus"); !strings.Contains(out[0], "Unknown command") {
		t.Errorf("unknown = %v", out)
	}
	if out, _, _ := m.handleMeta("/as p2"); m.player != "p2" || !strings.Contains(out[0], "p2") {
		t.Errorf("as = %v, player %q", out, m.player)
	}
	if out, _, _ := m.handleMeta("/tick nope"); !strings.Contains(out[0], "Usage") {
		t.Errorf("tick usage = %v", out)
	}
	if _, cmd, _ := m.handleMeta("/tick 2"); cmd == nil {
		t.Error("expected a tick command")
	} else if done := cmd().(doneMsg); done.err != nil || done.lines[0] != "2 tick(s) done." {
		t.Errorf("tick = %+v", done)
	}
	if out, _, _ := m.handleMeta("/all"); !m.showAll || !strings.Contains(out[0], "every") {
		t.Errorf("all = %v", out)
	}
}

func TestHandleMeta_SaveAndLoad(t *testing.T) {
	s := newSession(t)
	m := &s.model
	if _, err := s.runner.Do(context.Background(), "local", "p1", parser.Parse("join Aria", "!")); err != nil {
		t.Fatal(err)
	}

	if out, _, _ := m.handleMeta("/save test"); !strings.Contains(out[0], "World saved to test.") {
		t.Fatalf("save = %v", out)
	}
	if out, _, _ := m.handleMeta("/load test"); !strings.Contains(out[0], "World loaded from test (seed 1).") {
		t.Errorf("load = %v", out)
	}
	if out, _, _ := m.handleMeta("/load nonexistent"); !strings.Contains(out[0], "Load failed") {
		t.Errorf("load missing = %v", out)
	}

	m.opts.Snapshots = nil
	if out, _, _ := m.handleMeta("/save"); !strings.Contains(out[0], "does not support snapshots") {
		t.Errorf("save without snapshots = %v", out)
	}
}

func TestHandleMeta_LoadRestartsEffectTimers(t *testing.T) {
	s := newSession(t)
	m := &s.model
	ctx := context.Background()
	s.store.SaveGuildConfig(ctx, &types.GuildConfig{
		GuildID:     "local",
		Multiplier:  3,
		ActiveBless: 2,
		Blessings:   []types.BlessEffect{{ID: "b1", Caster: "Aria", Amount: 2, ExpiresAt: s.sched.Now().Add(time.Hour)}},
	})

	if out, _, _ := m.handleMeta("/save blessed"); !strings.Contains(out[0], "World saved to blessed.") {
		t.Fatalf("save = %v", out)
	}
	if out, _, _ := m.handleMeta("/load blessed"); !strings.Contains(out[0], "World loaded from blessed (seed 1).") {
		t.Fatalf("load = %v", out)
	}
	if n := s.sched.Pending(); n != 1 {
		t.Fatalf("pending timers = %d, want 1", n)
	}

	s.sched.Advance(time.Hour)
	g, err := s.store.LoadGuildConfig(ctx, "local")
	if err != nil {
		t.Fatal(err)
	}
	if g.Multiplier != 1 || len(g.Blessings) != 0 {
		t.Errorf("guild after expiry = %+v", g)
	}
}

func TestFeed_SendAfterClose(t *testing.T) {
	f := NewFeed(0)
	f.Close()
	f.Close()
	if err := f.Send(context.Background(), "g1", types.Message{Broadcast: "x"}); err != ErrClosed {
		t.Errorf("err = %v", err)
	}
}

func TestAppendLines_Bounded(t *testing.T) {
	s := newSession(t)
	lines := make([]string, maxLines+10)
	for i := range lines {
		lines[i] = "line"
	}
	m := s.model.appendLines(lines, false)
	if len(m.rawLines) != maxLines {
		t.Errorf("len = %d", len(m.rawLines))
	}
}
