package tui

// History keeps the most recent commands typed into the input line and lets
// Up/Down walk through them.
type History struct {
	entries []string
	max     int
	cursor  int // -1 when not navigating
}

// NewHistory creates a history holding at most max commands.
func NewHistory(max int) *History {
	if max < 1 {
		max = 1
	}
	return &History{entries: make([]string, 0, max), max: max, cursor: -1}
}

// Push records cmd and stops any navigation in progress. A repeat of the
// newest entry is not stored twice.
func (h *History) Push(cmd string) {
	h.cursor = -1
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	if len(h.entries) == h.max {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:h.max-1]
	}
	h.entries = append(h.entries, cmd)
}

// Len reports how many commands are stored.
func (h *History) Len() int { return len(h.entries) }

// Prev steps back to an older command, stopping at the oldest one.
func (h *History) Prev() (string, bool) {
	switch {
	case len(h.entries) == 0:
		return "", false
	case h.cursor == -1:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next steps forward to a newer command. Past the newest one it returns
// false and the input goes back to blank.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.entries) {
		h.cursor = -1
		return "", false
	}
	return h.entries[h.cursor], true
}

// ResetCursor stops navigating.
func (h *History) ResetCursor() { h.cursor = -1 }
