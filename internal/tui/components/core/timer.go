package core

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
)

// TickMsg is sent every interval while a Timer runs.
type TickMsg struct {
	Time    time.Time
	Elapsed time.Duration
	ID      string
}

// Timer measures how long something has been running and ticks so the
// display refreshes.
type Timer struct {
	id       string
	interval time.Duration
	start    time.Time
	running  bool
	elapsed  time.Duration
	now      func() time.Time
}

// NewTimer creates a stopped timer. A non-positive interval means one second.
func NewTimer(id string, interval time.Duration) *Timer {
	if interval <= 0 {
		interval = time.Second
	}
	return &Timer{id: id, interval: interval, now: time.Now}
}

// Start resets and starts the timer.
func (t *Timer) Start() tea.Cmd {
	t.start = t.now()
	t.running = true
	t.elapsed = 0
	return t.tick()
}

// Stop freezes the elapsed time.
func (t *Timer) Stop() {
	if t.running {
		t.elapsed = t.now().Sub(t.start)
		t.running = false
	}
}

func (t *Timer) Running() bool {
	return t.running
}

func (t *Timer) Elapsed() time.Duration {
	if t.running {
		return t.now().Sub(t.start)
	}
	return t.elapsed
}

// Update keeps a running timer ticking.
func (t *Timer) Update(msg tea.Msg) tea.Cmd {
	if tick, ok := msg.(TickMsg); ok && tick.ID == t.id && t.running {
		return t.tick()
	}
	return nil
}

func (t *Timer) tick() tea.Cmd {
	return tea.Tick(t.interval, func(tm time.Time) tea.Msg {
		return TickMsg{Time: tm, Elapsed: t.Elapsed(), ID: t.id}
	})
}

// FormatHMS formats d as "01:23" or "01:02:03".
func FormatHMS(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
