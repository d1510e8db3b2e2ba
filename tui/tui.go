// Package tui is a Bubble Tea front end for the idle world: a scrolling event
// log, a status bar for the active character and a command line.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mblgbs/RPG-bot-for-Discord/engine"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/parser"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// maxLines bounds the event log.
const maxLines = 2000

// Store is the read side the status bar needs.
type Store interface {
	LoadCharacter(ctx context.Context, id string, fields ...string) (*types.Character, error)
	LoadGuildConfig(ctx context.Context, guildID string) (*types.GuildConfig, error)
}

// Snapshotter saves and restores the whole world.
type Snapshotter interface {
	SaveFile(path string, seed int64) error
	LoadFile(path string) (int64, error)
}

// Feed is the world's messenger while the TUI runs. Messages queue until the
// program reads them; after Close, Send fails instead of blocking.
type Feed struct {
	ch   chan types.Message
	done chan struct{}
	once sync.Once
}

// ErrClosed is returned by Send once the feed is closed.
var ErrClosed = errors.New("feed closed")

// NewFeed creates a feed buffering up to size messages.
func NewFeed(size int) *Feed {
	return &Feed{ch: make(chan types.Message, size), done: make(chan struct{})}
}

// Send implements engine.Messenger.
func (f *Feed) Send(ctx context.Context, _ string, msg types.Message) error {
	select {
	case f.ch <- msg:
		return nil
	case <-f.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting messages.
func (f *Feed) Close() {
	f.once.Do(func() { close(f.done) })
}

// Options configure a TUI session.
type Options struct {
	GuildID   string
	Player    string
	Prefix    string
	Seed      int64
	SaveDir   string
	Snapshots Snapshotter // nil disables /save and /load
}

type rawLine struct {
	text    string
	kind    lineKind
	isInput bool
}

// Model is the Bubble Tea model.
type Model struct {
	ctx    context.Context
	runner *engine.Runner
	store  Store
	feed   *Feed
	opts   Options

	guildID string
	player  string
	showAll bool

	viewport viewport.Model
	input    textinput.Model
	history  *History
	rawLines []rawLine
	status   status

	width    int
	height   int
	ready    bool
	quitting bool
	lastCmd  string
}

// worldMsg carries one delivered message into Update.
type worldMsg struct{ msg types.Message }

// doneMsg reports a finished command.
type doneMsg struct {
	lines []string
	err   error
}

// systemMsg carries meta-command output.
type systemMsg struct{ lines []string }

// New creates a model. The runner must deliver through feed.
func New(ctx context.Context, runner *engine.Runner, store Store, feed *Feed, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	if opts.Prefix == "" {
		opts.Prefix = "!"
	}
	if opts.SaveDir == "" {
		home, _ := os.UserHomeDir()
		opts.SaveDir = filepath.Join(home, ".idlerpg", "saves")
	}
	return Model{
		ctx:     ctx,
		runner:  runner,
		store:   store,
		feed:    feed,
		opts:    opts,
		guildID: opts.GuildID,
		player:  opts.Player,
		input:   ti,
		history: NewHistory(100),
		status:  status{player: opts.Player, multiplier: 1, personal: 1},
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, runner *engine.Runner, store Store, feed *Feed, opts Options) error {
	defer feed.Close()
	m := New(ctx, runner, store, feed, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init starts listening to the feed and loads the status bar.
func (m Model) Init() tea.Cmd {
	intro := fmt.Sprintf("Playing as %s in %s. Type /help for commands.", m.player, m.guildID)
	return tea.Batch(
		textinput.Blink,
		m.listen(),
		m.refreshStatus(),
		func() tea.Msg { return systemMsg{lines: []string{intro}} },
	)
}

// listen waits for the next delivered message.
func (m Model) listen() tea.Cmd {
	feed := m.feed
	return func() tea.Msg {
		select {
		case msg := <-feed.ch:
			return worldMsg{msg: msg}
		case <-feed.done:
			return nil
		}
	}
}

// Update handles keys, resizes and world output.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // status bar and input line
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case worldMsg:
		m = m.appendLines(m.format(msg.msg), false)
		return m, tea.Batch(m.listen(), m.refreshStatus())

	case doneMsg:
		lines := msg.lines
		if msg.err != nil {
			lines = append(lines, fmt.Sprintf("Command failed: %v", msg.err))
		}
		m = m.appendLines(lines, true)
		return m, m.refreshStatus()

	case systemMsg:
		m = m.appendLines(msg.lines, true)
		return m, nil

	case statusMsg:
		if msg.err != nil {
			m = m.appendLines([]string{fmt.Sprintf("Status unavailable: %v", msg.err)}, true)
			return m, nil
		}
		m.status = msg.st
		return m, nil
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}
	m.history.Push(input)

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.echo(input)
			m = m.appendLines([]string{"Nothing to repeat."}, true)
			return m, nil
		}
		input = m.lastCmd
	} else if !strings.HasPrefix(input, "/") {
		m.lastCmd = input
	}

	m = m.echo(input)
	if strings.HasPrefix(input, "/") {
		output, cmd, quit := m.handleMeta(input)
		m = m.appendLines(output, true)
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, cmd
	}
	return m, m.do(input)
}

// do runs a game command off the update loop; its messages arrive through
// the feed.
func (m Model) do(input string) tea.Cmd {
	ctx, runner, guildID, player := m.ctx, m.runner, m.guildID, m.player
	cmd := parser.Parse(input, m.opts.Prefix)
	return func() tea.Msg {
		if cmd.Verb == "" {
			return doneMsg{}
		}
		_, err := runner.Do(ctx, guildID, player, cmd)
		return doneMsg{err: err}
	}
}

func (m Model) tick(n int) tea.Cmd {
	ctx, runner, guildID := m.ctx, m.runner, m.guildID
	return func() tea.Msg {
		for i := 0; i < n; i++ {
			if err := runner.Tick(ctx, guildID); err != nil {
				return doneMsg{err: err}
			}
		}
		return doneMsg{lines: []string{fmt.Sprintf("%d tick(s) done.", n)}}
	}
}

// format turns a delivered message into log lines, hiding private halves
// meant for someone else.
func (m Model) format(msg types.Message) []string {
	var lines []string
	if msg.Broadcast != "" {
		lines = append(lines, strings.Split(msg.Broadcast, "\n")...)
	}
	if msg.Private == "" {
		return lines
	}
	to := msg.To
	if to == "" {
		to = m.player
	}
	if to != m.player && !m.showAll {
		return lines
	}
	for i, line := range strings.Split(msg.Private, "\n") {
		if i == 0 {
			line = fmt.Sprintf("(to %s) %s", to, line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m Model) echo(input string) Model {
	m.rawLines = append(m.rawLines, rawLine{text: "> " + input, isInput: true})
	return m
}

// appendLines adds lines to the log and refreshes the viewport.
func (m Model) appendLines(lines []string, system bool) Model {
	if len(lines) == 0 {
		return m
	}
	for _, line := range lines {
		if system {
			line = "[" + line + "]"
		}
		m.rawLines = append(m.rawLines, rawLine{text: line, kind: classifyLine(line)})
	}
	if extra := len(m.rawLines) - maxLines; extra > 0 {
		m.rawLines = append([]rawLine(nil), m.rawLines[extra:]...)
	}
	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles the log at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := m.width
	if width < 10 {
		width = 10
	}

	styled := make([]string, 0, len(m.rawLines))
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		wrapped := wordWrap(rl.text, width)
		if rl.isInput {
			styled = append(styled, stylePlayerInput.Render(wrapped))
			continue
		}
		styled = append(styled, renderLineKind(wrapped, rl.kind))
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text at word boundaries to fit width.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		switch {
		case i == 0:
			lineLen = len(word)
		case lineLen+1+len(word) > width:
			result.WriteString("\n")
			lineLen = len(word)
		default:
			result.WriteString(" ")
			lineLen += 1 + len(word)
		}
		result.WriteString(word)
	}
	return result.String()
}

// View renders the log, the status bar and the input line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. It returns output lines, an optional
// command to run and whether the session should end.
func (m *Model) handleMeta(input string) ([]string, tea.Cmd, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, nil, true

	case "/as":
		if arg == "" {
			return []string{fmt.Sprintf("Playing as %s.", m.player)}, nil, false
		}
		m.player = arg
		m.status = status{player: arg, multiplier: m.status.multiplier, personal: 1, blizzard: m.status.blizzard}
		return []string{fmt.Sprintf("Now playing as %s.", arg)}, m.refreshStatus(), false

	case "/tick":
		n := 1
		if arg != "" {
			v, err := strconv.Atoi(arg)
			if err != nil || v < 1 {
				return []string{"Usage: /tick [count]"}, nil, false
			}
			n = v
		}
		return nil, m.tick(n), false

	case "/all":
		m.showAll = !m.showAll
		if m.showAll {
			return []string{"Showing every private message."}, nil, false
		}
		return []string{fmt.Sprintf("Showing private messages for %s only.", m.player)}, nil, false

	case "/save":
		return m.cmdSave(arg), nil, false

	case "/load":
		lines := m.cmdLoad(arg)
		return lines, m.refreshStatus(), false

	case "/help":
		return m.cmdHelp(), nil, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, nil, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if m.opts.Snapshots == nil {
		return []string{"Save failed: the store does not support snapshots"}
	}
	if name == "" {
		name = "quicksave"
	}
	if err := os.MkdirAll(m.opts.SaveDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	if err := m.opts.Snapshots.SaveFile(filepath.Join(m.opts.SaveDir, name+".json"), m.opts.Seed); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("World saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if m.opts.Snapshots == nil {
		return []string{"Load failed: the store does not support snapshots"}
	}
	if name == "" {
		name = "quicksave"
	}
	path := filepath.Join(m.opts.SaveDir, name+".json")
	if _, err := os.Stat(path); err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	seed, err := m.opts.Snapshots.LoadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	if err := m.runner.Sweep(m.ctx, m.guildID); err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	return []string{fmt.Sprintf("World loaded from %s (seed %d).", name, seed)}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /as <id>      Act as another character",
		"  /tick [n]     Advance every character n idle steps",
		"  /all          Toggle showing every private message",
		"  /save [name]  Save the world (default: quicksave)",
		"  /load [name]  Load the world (default: quicksave)",
		"  /quit         Exit",
		"  /help         Show this help",
		"",
		"Game commands:",
		"  join <name>, stats, equipment, inventory, spellbook",
		"  attack, pvp [name], move, tick",
		"  gods, luck, gold, gamble, camp, snowflake, sell, buy",
		"  quest [new], reset quest, cast bless [n|all], cast home",
		"  join lottery, pool, draw, multiplier, blizzard, characters",
		"  mention, gender, private",
		"  again (g)     Repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

// viewportKeyMap leaves Up/Down to the input history.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
