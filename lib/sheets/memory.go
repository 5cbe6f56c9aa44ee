package sheets

import (
	"context"
	"sync"
)

// Memory is an in-memory Writer for tests.
type Memory struct {
	mu     sync.Mutex
	Tables map[string]Table
}

func NewMemory() *Memory {
	return &Memory{Tables: map[string]Table{}}
}

func (m *Memory) WriteTable(_ context.Context, sheet string, table Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tables[sheet] = table
	return nil
}
