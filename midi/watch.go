package midi

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// PortEvent is emitted when an output port appears or goes away
type PortEvent struct {
	Type PortEventType
	Name string
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

func (t PortEventType) String() string {
	if t == PortConnected {
		return "connected"
	}
	return "disconnected"
}

// Watcher polls the output ports and reports hot-plug changes. A non-empty
// filter limits it to ports whose name contains filter (case-insensitive).
type Watcher struct {
	list     func() ([]string, error)
	filter   string
	pollRate time.Duration

	mu     sync.RWMutex
	ports  map[string]bool
	events chan PortEvent
}

// NewWatcher watches the system output ports
func NewWatcher(filter string) *Watcher {
	return newWatcher(OutPorts, filter)
}

func newWatcher(list func() ([]string, error), filter string) *Watcher {
	return &Watcher{
		list:     list,
		filter:   strings.ToLower(filter),
		pollRate: time.Second,
		ports:    make(map[string]bool),
		events:   make(chan PortEvent, 16),
	}
}

// Events returns the change channel. It is closed when Run returns.
func (w *Watcher) Events() <-chan PortEvent {
	return w.events
}

// Ports returns the currently known port names, sorted
func (w *Watcher) Ports() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, len(w.ports))
	for name := range w.ports {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Run starts the polling loop (blocking - run in goroutine)
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()

	// Initial scan
	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *Watcher) scan(ctx context.Context) {
	names, err := w.list()
	if err != nil {
		// hung driver; try again next tick
		return
	}

	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if w.filter == "" || strings.Contains(strings.ToLower(n), w.filter) {
			seen[n] = true
		}
	}

	var changes []PortEvent
	w.mu.Lock()
	for n := range seen {
		if !w.ports[n] {
			w.ports[n] = true
			changes = append(changes, PortEvent{Type: PortConnected, Name: n})
		}
	}
	for n := range w.ports {
		if !seen[n] {
			delete(w.ports, n)
			changes = append(changes, PortEvent{Type: PortDisconnected, Name: n})
		}
	}
	w.mu.Unlock()

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Type != changes[j].Type {
			return changes[i].Type > changes[j].Type // disconnects first
		}
		return changes[i].Name < changes[j].Name
	})
	for _, ev := range changes {
		select {
		case w.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
