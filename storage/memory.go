package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Memory is a Storage that keeps blocks in memory.
//
// It is safe for concurrent use. Nothing is persisted.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemory returns an empty memory storage.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string][]byte),
	}
}

// Len returns the number of stored blocks.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

func (m *Memory) Has(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.values[key]
	return ok, nil
}

func (m *Memory) Put(ctx context.Context, key string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return nil
	}
	m.values[key] = bytes.Clone(content)
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(content), nil
}

func (m *Memory) GetStream(ctx context.Context, key string) (io.ReadCloser, error) {
	content, err := m.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}
