package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleBlizzard = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("117")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleBroadcast = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	stylePrivate = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleHighlight = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleDeath = lipgloss.NewStyle().
			Foreground(lipgloss.Color("160"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

type lineKind int

const (
	kindBroadcast lineKind = iota
	kindPrivate
	kindHighlight
	kindDeath
	kindSystem
	kindError
)

// classifyLine picks the style of an event log line.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "You don't"),
		strings.HasPrefix(line, "You can't"),
		strings.HasPrefix(line, "You must"),
		strings.HasPrefix(line, "There is no"),
		strings.HasPrefix(line, "Unknown command"):
		return kindError
	case strings.Contains(line, " died"),
		strings.Contains(line, " was slain by "),
		strings.HasPrefix(line, "You died."):
		return kindDeath
	case strings.Contains(line, "is now level"),
		strings.Contains(line, "won the lottery"),
		strings.Contains(line, "blizzard"),
		strings.Contains(line, "Blizzard"),
		strings.Contains(line, "Snowflake"):
		return kindHighlight
	case strings.HasPrefix(line, "(to "):
		return kindPrivate
	default:
		return kindBroadcast
	}
}

func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindPrivate:
		return stylePrivate.Render(line)
	case kindHighlight:
		return styleHighlight.Render(line)
	case kindDeath:
		return styleDeath.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	default:
		return styleBroadcast.Render(line)
	}
}

func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
