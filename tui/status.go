package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mblgbs/RPG-bot-for-Discord/engine/stats"
	"github.com/mblgbs/RPG-bot-for-Discord/persist"
)

// status is what the bar at the bottom of the screen shows.
type status struct {
	player     string
	known      bool
	name       string
	mapName    string
	level      int
	health     int
	maxHealth  int
	gold       int
	multiplier int
	personal   int
	blizzard   bool
}

type statusMsg struct {
	st  status
	err error
}

// refreshStatus reads the active character and its guild off the store.
func (m Model) refreshStatus() tea.Cmd {
	ctx, store, guildID, player := m.ctx, m.store, m.guildID, m.player
	return func() tea.Msg {
		st := status{player: player, multiplier: 1, personal: 1}
		g, err := store.LoadGuildConfig(ctx, guildID)
		switch {
		case err == nil:
			st.multiplier = g.Multiplier
			st.blizzard = g.BlizzardActive
		case !errors.Is(err, persist.ErrNotFound):
			return statusMsg{err: err}
		}

		c, err := store.LoadCharacter(ctx, player)
		if errors.Is(err, persist.ErrNotFound) {
			return statusMsg{st: st}
		}
		if err != nil {
			return statusMsg{err: err}
		}
		st.known = true
		st.name = c.Name
		st.mapName = c.Map
		st.level = c.Level
		st.health = c.Health
		st.maxHealth = stats.MaxHealth(c.Level)
		st.gold = c.Gold.Current
		st.personal = c.PersonalMultiplier
		return statusMsg{st: st}
	}
}

// line lays out the status bar text for the given width.
func (s status) line(width int) string {
	var left string
	if s.known {
		left = fmt.Sprintf(" %s | Lv %d | %s | HP %d/%d", s.name, s.level, s.mapName, s.health, s.maxHealth)
	} else {
		left = fmt.Sprintf(" %s | no character, type join <name>", s.player)
	}
	personal := s.personal
	if personal < 1 {
		personal = 1
	}
	right := fmt.Sprintf("x%d ", s.multiplier*personal)
	if s.known {
		right = fmt.Sprintf("Gold %d | %s", s.gold, right)
	}
	if s.blizzard {
		right = "Blizzard | " + right
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderStatusBar() string {
	style := styleStatusBar
	if m.status.blizzard {
		style = styleBlizzard
	}
	return style.Width(m.width).Render(m.status.line(m.width))
}

