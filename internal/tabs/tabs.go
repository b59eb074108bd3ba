// Package tabs tracks the front end's ordered tabs and which one is active.
package tabs

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/billie-coop/mark/internal/events"
)

// Fixed tab names.
const (
	Input     = "Input"
	Output    = "Output"
	Dashboard = "Dashboard"
	Assistant = "LLM Assistant"
)

// Fallback is selected after a tab is removed.
const Fallback = Output

// FixedTabs are always present, in display order.
var FixedTabs = []string{Input, Output, Dashboard, Assistant}

var (
	// ErrUnknownTab is returned for names that have no tab.
	ErrUnknownTab = errors.New("unknown tab")
	// ErrFixedTab is returned when removing one of FixedTabs.
	ErrFixedTab = errors.New("fixed tabs cannot be removed")
)

// Publisher receives tab notifications.
type Publisher interface {
	Publish(event events.Event)
}

// Manager owns the tab list. Exactly one tab is active at a time.
type Manager struct {
	mu      sync.RWMutex
	names   []string
	content map[string]any
	active  string
	pub     Publisher
}

// NewManager creates the fixed tabs and selects Input. pub may be nil.
func NewManager(pub Publisher) *Manager {
	m := &Manager{
		names:   slices.Clone(FixedTabs),
		content: make(map[string]any),
		active:  Input,
		pub:     pub,
	}
	return m
}

// Create adds a tab after the existing ones and selects it. When the name
// already exists its content is kept and it is only selected.
func (m *Manager) Create(name string, content any) error {
	m.mu.Lock()
	created := false
	if !slices.Contains(m.names, name) {
		m.names = append(m.names, name)
		m.content[name] = content
		created = true
	}
	m.mu.Unlock()

	if created {
		m.publish(events.TabCreatedEvent, name)
	}
	return m.Select(name)
}

// Select makes name the active tab and publishes TabChangedEvent.
func (m *Manager) Select(name string) error {
	m.mu.Lock()
	if !slices.Contains(m.names, name) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownTab, name)
	}
	m.active = name
	m.mu.Unlock()

	m.publish(events.TabChangedEvent, name)
	return nil
}

// Remove drops a tab with its content and selects Fallback.
func (m *Manager) Remove(name string) error {
	if slices.Contains(FixedTabs, name) {
		return fmt.Errorf("%w: %q", ErrFixedTab, name)
	}

	m.mu.Lock()
	i := slices.Index(m.names, name)
	if i < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownTab, name)
	}
	m.names = slices.Delete(m.names, i, i+1)
	delete(m.content, name)
	m.mu.Unlock()

	m.publish(events.TabRemovedEvent, name)
	return m.Select(Fallback)
}

// SetContent replaces the content of an existing tab.
func (m *Manager) SetContent(name string, content any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.names, name) {
		return fmt.Errorf("%w: %q", ErrUnknownTab, name)
	}
	m.content[name] = content
	return nil
}

// Active returns the selected tab.
func (m *Manager) Active() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// Names returns the tabs in display order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.names)
}

// Content returns what was stored for name.
func (m *Manager) Content(name string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !slices.Contains(m.names, name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTab, name)
	}
	return m.content[name], nil
}

// Next selects the tab after the active one, wrapping around.
func (m *Manager) Next() string {
	return m.step(1)
}

// Prev selects the tab before the active one, wrapping around.
func (m *Manager) Prev() string {
	return m.step(-1)
}

func (m *Manager) step(delta int) string {
	m.mu.RLock()
	i := slices.Index(m.names, m.active)
	n := len(m.names)
	next := m.names[((i+delta)%n+n)%n]
	m.mu.RUnlock()

	_ = m.Select(next)
	return next
}

func (m *Manager) publish(t events.EventType, name string) {
	if m.pub == nil {
		return
	}
	m.pub.Publish(events.Event{Type: t, Payload: events.TabPayload{Name: name}})
}
