package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps documents in process memory. Used when no database is
// reachable in dev and by the service tests.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*MemoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*MemoryCollection)}
}

func (s *MemoryStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = NewMemoryCollection()
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// MemoryCollection stores JSON-normalized documents in insertion order.
type MemoryCollection struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]map[string]any
}

func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{docs: make(map[string]map[string]any)}
}

var _ Collection = (*MemoryCollection)(nil)

func (c *MemoryCollection) Get(ctx context.Context, id string, out any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	return remarshal(doc, out)
}

func (c *MemoryCollection) Latest(ctx context.Context, out any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.order) == 0 {
		return ErrNotFound
	}
	return remarshal(c.docs[c.order[len(c.order)-1]], out)
}

func (c *MemoryCollection) Recent(ctx context.Context, limit int, out any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	docs := make([]map[string]any, 0, min(max(limit, 0), len(c.order)))
	for i := len(c.order) - 1; i >= 0 && len(docs) < limit; i-- {
		docs = append(docs, c.docs[c.order[i]])
	}
	return remarshal(docs, out)
}

func (c *MemoryCollection) List(ctx context.Context, limit int, out any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	docs := make([]map[string]any, 0, min(max(limit, 0), len(c.order)))
	for _, id := range c.order {
		if len(docs) >= limit {
			break
		}
		docs = append(docs, c.docs[id])
	}
	return remarshal(docs, out)
}

func (c *MemoryCollection) Insert(ctx context.Context, doc any) (string, error) {
	m, err := toMap(doc)
	if err != nil {
		return "", err
	}
	id := NewID()
	m["_id"] = id

	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[id] = m
	c.order = append(c.order, id)
	return id, nil
}

func (c *MemoryCollection) Update(ctx context.Context, id string, fields map[string]any) (int64, error) {
	set, err := toMap(fields)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[id]
	if !ok {
		return 0, nil
	}
	for k, v := range set {
		doc[k] = v
	}
	return 1, nil
}

func (c *MemoryCollection) Upsert(ctx context.Context, id string, fields map[string]any) error {
	set, err := toMap(fields)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.docs[id]
	if !ok {
		doc = map[string]any{"_id": id}
		c.docs[id] = doc
		c.order = append(c.order, id)
	}
	for k, v := range set {
		doc[k] = v
	}
	return nil
}

func (c *MemoryCollection) Delete(ctx context.Context, id string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		return 0, nil
	}
	delete(c.docs, id)
	c.order = removeID(c.order, id)
	return 1, nil
}

func (c *MemoryCollection) DeleteExcept(ctx context.Context, id string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var deleted int64
	kept := c.order[:0]
	for _, other := range c.order {
		if other == id {
			kept = append(kept, other)
			continue
		}
		delete(c.docs, other)
		deleted++
	}
	c.order = kept
	return deleted, nil
}

// Len returns the number of stored documents.
func (c *MemoryCollection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("document is not an object: %w", err)
	}
	delete(m, "_id")
	return m, nil
}

func remarshal(in any, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}
