// Package uniqueness checks tenant-scoped name and SKU collisions before a catalog write commits.
package uniqueness

import (
	"context"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

// Finder returns ids of live (not soft-deleted) entries whose value matches
// case-insensitively within the tenant.
type Finder interface {
	FindIDsByName(ctx context.Context, tenantID, name string) ([]string, error)
	FindIDsBySKU(ctx context.Context, tenantID, sku string) ([]string, error)
}

type Validator struct {
	finder Finder
}

func NewValidator(finder Finder) *Validator {
	return &Validator{finder: finder}
}

// CheckNameUnique fails with a ConflictError when another entry already uses name.
// excludeID lets an update keep its own name.
func (v *Validator) CheckNameUnique(ctx context.Context, tenantID, name, excludeID string) error {
	ids, err := v.finder.FindIDsByName(ctx, tenantID, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("find entries by name: %w", err)
	}
	if conflicts(ids, excludeID) {
		return model.NewConflictError("name", name)
	}
	return nil
}

// CheckSKUUnique applies the same rule to simple-entry SKUs. Variant SKUs are only
// unique within their entry and are checked by model.ValidateEntry.
func (v *Validator) CheckSKUUnique(ctx context.Context, tenantID, sku, excludeID string) error {
	ids, err := v.finder.FindIDsBySKU(ctx, tenantID, strings.TrimSpace(sku))
	if err != nil {
		return fmt.Errorf("find entries by sku: %w", err)
	}
	if conflicts(ids, excludeID) {
		return model.NewConflictError("sku", sku)
	}
	return nil
}

func conflicts(ids []string, excludeID string) bool {
	for _, id := range ids {
		if excludeID == "" || id != excludeID {
			return true
		}
	}
	return false
}
