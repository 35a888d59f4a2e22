// SPDX-License-Identifier: MIT

package registry

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/checkings/checkings/internal/schema"
)

// MemoryStore keeps schemas as marshaled JSON, so reads hand out private
// copies the same way the durable backends do. Not durable.
type MemoryStore struct {
	mu      sync.RWMutex
	schemas map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{schemas: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, s *schema.Schema) error {
	buf, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.schemas[s.ID] = buf
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*schema.Schema, error) {
	m.mu.RLock()
	buf, ok := m.schemas[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var out schema.Schema
	if err := json.Unmarshal(buf, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (m *MemoryStore) GetByName(ctx context.Context, name string) (*schema.Schema, error) {
	list, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	return pickByName(list, name)
}

func (m *MemoryStore) List(ctx context.Context) ([]*schema.Schema, error) {
	m.mu.RLock()
	snapshot := make([][]byte, 0, len(m.schemas))
	for _, buf := range m.schemas {
		snapshot = append(snapshot, buf)
	}
	m.mu.RUnlock()

	list := make([]*schema.Schema, 0, len(snapshot))
	for _, buf := range snapshot {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var s schema.Schema
		if err := json.Unmarshal(buf, &s); err != nil {
			return nil, err
		}
		list = append(list, &s)
	}
	sortSchemas(list)
	return list, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schemas[id]; !ok {
		return ErrNotFound
	}
	delete(m.schemas, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func sortSchemas(list []*schema.Schema) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
}

func pickByName(list []*schema.Schema, name string) (*schema.Schema, error) {
	var best *schema.Schema
	for _, s := range list {
		if s.Name != name {
			continue
		}
		if best == nil || s.Version > best.Version {
			best = s
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}

var _ Store = (*MemoryStore)(nil)
