// Package memory provides an in-memory catalog store. It backs the
// "memory" storage driver and the engine's tests.
package memory

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/systiva/accessctl/pkg/domain/shared"
)

// collection is a map-backed catalog partitioned by tenant key. Values are
// deep-copied through JSON on the way in and out so callers can never alias
// stored state, matching the isolation a networked key-value store gives.
type collection[T any] struct {
	mu    sync.RWMutex
	items map[string]map[string][]byte // tenant key -> id -> encoded record
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{items: make(map[string]map[string][]byte)}
}

func (c *collection[T]) put(tenantKey, id string, value *T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode record: %v", shared.ErrStore, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	partition, ok := c.items[tenantKey]
	if !ok {
		partition = make(map[string][]byte)
		c.items[tenantKey] = partition
	}
	partition[id] = data
	return nil
}

func (c *collection[T]) get(tenantKey, id string) (*T, error) {
	c.mu.RLock()
	data, ok := c.items[tenantKey][id]
	c.mu.RUnlock()
	if !ok {
		return nil, shared.ErrNotFound
	}
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("%w: decode record: %v", shared.ErrStore, err)
	}
	return &value, nil
}

func (c *collection[T]) delete(tenantKey, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[tenantKey][id]; !ok {
		return shared.ErrNotFound
	}
	delete(c.items[tenantKey], id)
	return nil
}

// scan returns every record in one tenant's partition, unordered.
func (c *collection[T]) scan(tenantKey string) ([]*T, error) {
	c.mu.RLock()
	encoded := make([][]byte, 0, len(c.items[tenantKey]))
	for _, data := range c.items[tenantKey] {
		encoded = append(encoded, data)
	}
	c.mu.RUnlock()

	result := make([]*T, 0, len(encoded))
	for _, data := range encoded {
		var value T
		if err := json.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("%w: decode record: %v", shared.ErrStore, err)
		}
		result = append(result, &value)
	}
	return result, nil
}

func (c *collection[T]) exists(tenantKey, id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[tenantKey][id]
	return ok
}

// Store bundles the three in-memory catalogs.
type Store struct {
	Users  *UserRepository
	Groups *GroupRepository
	Roles  *RoleRepository
}

// NewStore creates an empty in-memory catalog store.
func NewStore() *Store {
	return &Store{
		Users:  NewUserRepository(),
		Groups: NewGroupRepository(),
		Roles:  NewRoleRepository(),
	}
}
