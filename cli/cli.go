// Package cli is the line-driven simulator: it reads commands, runs them for
// the active character and prints the messages the world produces.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/mblgbs/RPG-bot-for-Discord/engine"
	"github.com/mblgbs/RPG-bot-for-Discord/engine/parser"
	"github.com/mblgbs/RPG-bot-for-Discord/types"
)

// Snapshotter saves and restores the whole world. The in-memory store
// implements it.
type Snapshotter interface {
	SaveFile(path string, seed int64) error
	LoadFile(path string) (int64, error)
}

// CLI handles terminal interaction. It is also the world's messenger: every
// broadcast is printed, private messages only for the active character
// unless ShowAll is set.
type CLI struct {
	Runner    *engine.Runner
	Snapshots Snapshotter // nil disables /save and /load
	GuildID   string
	Player    string // character commands act as
	Prefix    string
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Seed      int64
	ShowAll   bool
	EchoInput bool // echo each input line after the prompt (for script playback)

	mu      sync.Mutex
	lastCmd string // for "again"/"g" repeat
}

// New creates a CLI for guildID acting as player. Set Runner before Run.
func New(guildID, player string) *CLI {
	home, _ := os.UserHomeDir()
	return &CLI{
		GuildID: guildID,
		Player:  player,
		Prefix:  "!",
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: filepath.Join(home, ".idlerpg", "saves"),
	}
}

// Send implements engine.Messenger.
func (c *CLI) Send(_ context.Context, _ string, msg types.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg.Broadcast != "" {
		fmt.Fprintln(c.Out, msg.Broadcast)
	}
	if msg.Private != "" && (c.ShowAll || msg.To == "" || msg.To == c.Player) {
		to := msg.To
		if to == "" {
			to = c.Player
		}
		fmt.Fprintf(c.Out, "(to %s) %s\n", to, msg.Private)
	}
	return nil
}

// Run loops prompt → input → dispatch until /quit or end of input.
func (c *CLI) Run(ctx context.Context) {
	c.printSystem(fmt.Sprintf("Playing as %s in %s. Type /help for commands.", c.Player, c.GuildID))

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return // /quit
			}
			continue
		}

		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		c.do(ctx, input)
	}
}

func (c *CLI) do(ctx context.Context, input string) {
	cmd := parser.Parse(input, c.Prefix)
	if cmd.Verb == "" {
		return
	}
	if _, err := c.Runner.Do(ctx, c.GuildID, c.Player, cmd); err != nil {
		c.printSystem(fmt.Sprintf("Command failed: %v", err))
	}
}

// handleMeta dispatches meta-commands. Returns true if the session should end.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/as":
		if arg == "" {
			c.printSystem(fmt.Sprintf("Playing as %s.", c.Player))
			break
		}
		c.Player = arg
		c.printSystem(fmt.Sprintf("Now playing as %s.", arg))

	case "/tick":
		c.cmdTick(ctx, arg)

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(ctx, arg)

	case "/help":
		c.cmdHelp()

	case "/all":
		c.ShowAll = !c.ShowAll
		if c.ShowAll {
			c.printSystem("Showing every private message.")
		} else {
			c.printSystem(fmt.Sprintf("Showing private messages for %s only.", c.Player))
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdTick(ctx context.Context, arg string) {
	n := 1
	if arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v < 1 {
			c.printSystem("Usage: /tick [count]")
			return
		}
		n = v
	}
	for i := 0; i < n; i++ {
		if err := c.Runner.Tick(ctx, c.GuildID); err != nil {
			c.printSystem(fmt.Sprintf("Tick failed: %v", err))
			return
		}
	}
	c.printSystem(fmt.Sprintf("%d tick(s) done.", n))
}

func (c *CLI) cmdSave(name string) {
	if c.Snapshots == nil {
		c.printSystem("Save failed: the store does not support snapshots")
		return
	}
	if name == "" {
		name = "quicksave"
	}
	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	if err := c.Snapshots.SaveFile(filepath.Join(c.SaveDir, name+".json"), c.Seed); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("World saved to %s.", name))
}

// cmdLoad replaces the world with a snapshot and restarts the timers of the
// effects it carries.
func (c *CLI) cmdLoad(ctx context.Context, name string) {
	if c.Snapshots == nil {
		c.printSystem("Load failed: the store does not support snapshots")
		return
	}
	if name == "" {
		name = "quicksave"
	}
	path := filepath.Join(c.SaveDir, name+".json")
	if _, err := os.Stat(path); err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	seed, err := c.Snapshots.LoadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	if err := c.Runner.Sweep(ctx, c.GuildID); err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("World loaded from %s (seed %d).", name, seed))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /as <id>      Act as another character",
		"  /tick [n]     Advance every character n idle steps",
		"  /all          Toggle showing every private message",
		"  /save [name]  Save the world (default: quicksave)",
		"  /load [name]  Load the world (default: quicksave)",
		"  /quit         Exit",
		"  /help         Show this help",
		"",
		"Game commands (the ! prefix is optional):",
		"  join <name>            Create your character",
		"  stats (s), equipment (e), inventory (i), spellbook (sb)",
		"  attack (fight)         Fight monsters where you stand",
		"  pvp [name] (duel)      Fight another character on your map",
		"  move, tick             Walk somewhere, or take one idle step",
		"  gods, luck, gold, gamble, camp, snowflake",
		"  sell, buy, quest [new], reset quest",
		"  cast bless [n|all], cast home",
		"  join lottery, pool, draw",
		"  multiplier, blizzard, characters",
		"  mention off|action|move|on, gender male|female|neutral, private on|off",
		"  again (g)              Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
