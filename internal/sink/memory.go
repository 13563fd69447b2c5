package sink

import (
	"context"
	"sync"

	"rras-datagen/internal/entities"
)

// Memory keeps every record it is given. It backs the preview command and
// tests.
type Memory struct {
	mu      sync.Mutex
	kinds   map[entities.Kind]bool
	records map[entities.Kind][]entities.Record
	seen    map[string]bool
	closed  bool
}

// NewMemory returns a sink accepting kinds, or every kind when none are given.
func NewMemory(kinds ...entities.Kind) *Memory {
	m := &Memory{
		records: make(map[entities.Kind][]entities.Record),
		seen:    make(map[string]bool),
	}
	if len(kinds) > 0 {
		m.kinds = make(map[entities.Kind]bool, len(kinds))
		for _, k := range kinds {
			m.kinds[k] = true
		}
	}
	return m
}

func (m *Memory) Supports(kind entities.Kind) bool {
	return m.kinds == nil || m.kinds[kind]
}

// Put stores rec keyed by its natural key. A repeated key is reported as a
// duplicate and not stored again.
func (m *Memory) Put(ctx context.Context, rec entities.Record) Result {
	kind := rec.RecordKind()
	if err := ctx.Err(); err != nil {
		return Failed(kind, err)
	}
	if !m.Supports(kind) {
		return Unsupported(kind)
	}

	key := NaturalKey(rec)
	m.mu.Lock()
	defer m.mu.Unlock()
	seenKey := string(kind) + "|" + key
	if m.seen[seenKey] {
		return Result{Kind: kind, Key: key, Duplicate: true}
	}
	m.seen[seenKey] = true
	m.records[kind] = append(m.records[kind], rec)
	return Result{Kind: kind, Key: key}
}

// Records returns what was stored for kind, in arrival order.
func (m *Memory) Records(kind entities.Kind) []entities.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entities.Record(nil), m.records[kind]...)
}

// Count returns how many records of kind were stored.
func (m *Memory) Count(kind entities.Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records[kind])
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
