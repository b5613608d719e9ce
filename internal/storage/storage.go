// Package storage picks the repository backend for every domain at startup.
package storage

import (
	"fmt"

	"github.com/fekuna/omnipos-catalog-service/internal/catalog"
	catalogRepo "github.com/fekuna/omnipos-catalog-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-catalog-service/internal/category"
	categoryRepo "github.com/fekuna/omnipos-catalog-service/internal/category/repository"
	"github.com/fekuna/omnipos-catalog-service/internal/inventory"
	inventoryRepo "github.com/fekuna/omnipos-catalog-service/internal/inventory/repository"
	"github.com/fekuna/omnipos-catalog-service/internal/storage/memory"
	"github.com/fekuna/omnipos-catalog-service/internal/ticket"
	ticketRepo "github.com/fekuna/omnipos-catalog-service/internal/ticket/repository"
	"github.com/jmoiron/sqlx"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Repositories struct {
	Catalog    catalog.Repository
	Categories category.Repository
	Inventory  inventory.Repository
	Tickets    ticket.Repository
}

// New builds the repositories for driver. db is only used by the postgres driver; the memory
// driver gives every repository one shared store so ledger writes and catalog reads agree.
func New(driver string, db *sqlx.DB) (*Repositories, error) {
	switch driver {
	case DriverPostgres:
		if db == nil {
			return nil, fmt.Errorf("storage driver %q needs a database connection", driver)
		}
		return &Repositories{
			Catalog:    catalogRepo.NewPGRepository(db),
			Categories: categoryRepo.NewPGRepository(db),
			Inventory:  inventoryRepo.NewPGRepository(db),
			Tickets:    ticketRepo.NewPGRepository(db),
		}, nil
	case DriverMemory:
		store := memory.NewStore()
		return &Repositories{
			Catalog:    catalogRepo.NewMemoryRepository(store),
			Categories: categoryRepo.NewMemoryRepository(store),
			Inventory:  inventoryRepo.NewMemoryRepository(store),
			Tickets:    ticketRepo.NewMemoryRepository(store),
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
