package registry

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Registry. Nothing survives the process.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewMemory creates an empty in-memory registry.
func NewMemory(fileIDs ...string) *Memory {
	m := &Memory{entries: make(map[string]time.Time)}
	for _, id := range fileIDs {
		m.entries[id] = time.Now()
	}
	return m
}

func (m *Memory) Has(_ context.Context, fileID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[fileID]
	return ok, nil
}

func (m *Memory) Add(_ context.Context, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[fileID]; !ok {
		m.entries[fileID] = time.Now()
	}
	return nil
}

func (m *Memory) Remove(_ context.Context, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, fileID)
	return nil
}

func (m *Memory) List(_ context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]Entry, 0, len(m.entries))
	for id, at := range m.entries {
		entries = append(entries, Entry{FileID: id, AddedAt: at})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AddedAt.Equal(entries[j].AddedAt) {
			return entries[i].FileID < entries[j].FileID
		}
		return entries[i].AddedAt.Before(entries[j].AddedAt)
	})
	return entries, nil
}

func (m *Memory) Close() error { return nil }
