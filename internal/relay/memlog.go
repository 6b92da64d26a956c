package relay

import (
	"context"
	"sync"
)

// MemoryLog is an in-memory EventLog. It backs tests and single-device
// operation when no remote relay is configured.
type MemoryLog struct {
	mu      sync.Mutex
	records []Record
}

// NewMemoryLog creates an empty in-memory log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Publish appends a record.
func (m *MemoryLog) Publish(_ context.Context, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

// Query returns all records with the given tag by the given author.
func (m *MemoryLog) Query(_ context.Context, tag, author string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Record
	for _, r := range m.records {
		if r.Tag == tag && r.Author == author {
			out = append(out, r)
		}
	}
	return out, nil
}

// Len reports the number of stored records.
func (m *MemoryLog) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
