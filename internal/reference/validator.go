// Package reference validates batches of ids that other subsystems hold against this catalog.
package reference

import (
	"context"
	"fmt"
	"sort"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/google/uuid"
)

// Source answers which of ids exist for the tenant, excluding soft-deleted rows, in one lookup.
type Source interface {
	ExistingIDs(ctx context.Context, tenantID string, ids []string) ([]string, error)
}

type Validator struct {
	sources map[model.ReferenceKind]Source
}

func NewValidator(sources map[model.ReferenceKind]Source) *Validator {
	return &Validator{sources: sources}
}

// CheckAllExist returns a MissingReferencesError listing every id that is malformed,
// absent, soft-deleted or owned by another tenant. Ids are compared in canonical uuid
// form; missing ones are reported as the caller spelled them.
func (v *Validator) CheckAllExist(ctx context.Context, tenantID string, ids []model.ReferenceID) error {
	byKind := make(map[model.ReferenceKind][]string)
	original := make(map[model.ReferenceID]string, len(ids))
	seenRaw := make(map[model.ReferenceID]struct{}, len(ids))
	var missing []model.ReferenceID

	for _, ref := range ids {
		parsed, err := uuid.Parse(ref.ID)
		if err != nil {
			if _, dup := seenRaw[ref]; !dup {
				seenRaw[ref] = struct{}{}
				missing = append(missing, ref)
			}
			continue
		}
		canon := model.ReferenceID{Kind: ref.Kind, ID: parsed.String()}
		if _, dup := original[canon]; dup {
			continue
		}
		original[canon] = ref.ID
		byKind[ref.Kind] = append(byKind[ref.Kind], canon.ID)
	}

	for kind, kindIDs := range byKind {
		src, ok := v.sources[kind]
		if !ok {
			for _, id := range kindIDs {
				missing = append(missing, model.ReferenceID{Kind: kind, ID: original[model.ReferenceID{Kind: kind, ID: id}]})
			}
			continue
		}

		found, err := src.ExistingIDs(ctx, tenantID, kindIDs)
		if err != nil {
			return fmt.Errorf("lookup %s references: %w", kind, err)
		}
		foundSet := make(map[string]struct{}, len(found))
		for _, id := range found {
			if parsed, err := uuid.Parse(id); err == nil {
				id = parsed.String()
			}
			foundSet[id] = struct{}{}
		}
		for _, id := range kindIDs {
			if _, ok := foundSet[id]; !ok {
				missing = append(missing, model.ReferenceID{Kind: kind, ID: original[model.ReferenceID{Kind: kind, ID: id}]})
			}
		}
	}

	if len(missing) == 0 {
		return nil
	}
	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Kind != missing[j].Kind {
			return missing[i].Kind < missing[j].Kind
		}
		return missing[i].ID < missing[j].ID
	})
	return model.NewMissingReferencesError(missing)
}
