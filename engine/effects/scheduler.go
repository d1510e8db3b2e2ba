package effects

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs deferred callbacks. Scheduled callbacks always fire; there
// is no cancellation.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

// TimerScheduler schedules on the runtime timer heap.
type TimerScheduler struct{}

// AfterFunc implements Scheduler.
func (TimerScheduler) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

type task struct {
	due time.Time
	seq int
	fn  func()
}

// ManualScheduler fires callbacks only when its clock is advanced.
// Safe for concurrent use.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []task
}

// NewManualScheduler creates a scheduler whose clock starts at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// AfterFunc implements Scheduler.
func (m *ManualScheduler) AfterFunc(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.tasks = append(m.tasks, task{due: m.now.Add(d), seq: m.seq, fn: fn})
}

// Now returns the scheduler's clock.
func (m *ManualScheduler) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of callbacks not yet fired.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Advance moves the clock forward by d and runs every callback now due, in
// due order. Callbacks run without the lock held and may schedule more.
func (m *ManualScheduler) Advance(d time.Duration) int {
	m.mu.Lock()
	m.now = m.now.Add(d)
	var due, rest []task
	for _, t := range m.tasks {
		if !t.due.After(m.now) {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	m.tasks = rest
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})
	for _, t := range due {
		t.fn()
	}
	return len(due)
}
