package catalog

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Memory is an in-process catalog.
type Memory struct {
	mu      sync.Mutex
	entries map[string]Entry
	now     func() time.Time
}

// NewMemory creates an empty catalog.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry), now: time.Now}
}

func (m *Memory) Add(_ context.Context, e Entry) (Entry, bool, error) {
	if err := validate(e); err != nil {
		return Entry{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if stored, ok := m.entries[e.Hash]; ok {
		stored = seen(stored, m.now())
		m.entries[e.Hash] = stored
		return stored, false, nil
	}
	e = created(e, m.now())
	m.entries[e.Hash] = e
	return e, true, nil
}

func (m *Memory) Get(_ context.Context, hash string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[hash]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (m *Memory) List(_ context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	m.mu.Unlock()

	sortEntries(out)
	return slices.Clip(out[:min(len(out), listLimit(limit))]), nil
}

func (m *Memory) Close() error { return nil }

var _ Catalog = (*Memory)(nil)
