// Package memory is the in-process backing store shared by the memory repositories.
// Every repository runs its check-and-apply inside one Update call, so the store's
// mutex plays the role of the database's row lock.
package memory

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// Data is the state guarded by Store. Callers must not retain pointers into it after
// their View or Update function returns.
type Data struct {
	Entries     map[string]*model.CatalogEntry
	Categories  map[string]*model.Category
	TicketTypes map[string]*model.TicketType
	Movements   []model.InventoryMovement
}

type Store struct {
	mu   sync.RWMutex
	data *Data
}

func NewStore() *Store {
	return &Store{
		data: &Data{
			Entries:     make(map[string]*model.CatalogEntry),
			Categories:  make(map[string]*model.Category),
			TicketTypes: make(map[string]*model.TicketType),
		},
	}
}

// View runs fn under the read lock.
func (s *Store) View(ctx context.Context, fn func(d *Data) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

// Update runs fn under the write lock. fn must validate before it mutates: a returned
// error does not roll anything back.
func (s *Store) Update(ctx context.Context, fn func(d *Data) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// Page slices items the way LIMIT/OFFSET would. A non-positive pageSize returns everything.
func Page[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
