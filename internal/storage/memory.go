package storage

import (
	"context"
	"fmt"
	"sync"
)

// Memory хранит значения в памяти процесса. Используется по умолчанию и в тестах.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory создаёт пустое in-memory хранилище.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get возвращает значение по ключу.
func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	const op = "storage.Memory.Get"
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

// Set сохраняет значение по ключу.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	const op = "storage.Memory.Set"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete удаляет ключ.
func (m *Memory) Delete(ctx context.Context, key string) error {
	const op = "storage.Memory.Delete"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Ping всегда успешен.
func (m *Memory) Ping(_ context.Context) error {
	return nil
}
