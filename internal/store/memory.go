package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory keeps everything in maps. It is the default when no database is configured.
type Memory struct {
	mu        sync.Mutex
	positions map[string]Position
	libraries map[string]Library
}

func NewMemory() *Memory {
	return &Memory{
		positions: make(map[string]Position),
		libraries: make(map[string]Library),
	}
}

func (m *Memory) SavePosition(_ context.Context, p Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[p.ID] = p.Clone()
	return nil
}

func (m *Memory) LoadPosition(_ context.Context, id string) (Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[id]
	if !ok {
		return Position{}, fmt.Errorf("%w: position %s", ErrNotFound, id)
	}
	return p.Clone(), nil
}

func (m *Memory) DeletePosition(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.positions[id]; !ok {
		return fmt.Errorf("%w: position %s", ErrNotFound, id)
	}
	delete(m.positions, id)
	return nil
}

func (m *Memory) ListPositions(_ context.Context) ([]Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Position, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out, nil
}

func (m *Memory) SaveLibrary(_ context.Context, l Library) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.Data = append([]byte(nil), l.Data...)
	m.libraries[l.ID] = l
	return nil
}

func (m *Memory) LoadLibrary(_ context.Context, id string) (Library, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.libraries[id]
	if !ok {
		return Library{}, fmt.Errorf("%w: library %s", ErrNotFound, id)
	}
	l.Data = append([]byte(nil), l.Data...)
	return l, nil
}

func (m *Memory) ListLibraries(_ context.Context) ([]Library, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Library, 0, len(m.libraries))
	for _, l := range m.libraries {
		l.Data = nil
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out, nil
}

func (m *Memory) Close() error { return nil }
