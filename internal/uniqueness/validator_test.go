package uniqueness

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
)

type fakeFinder struct {
	names map[string][]string
	skus  map[string][]string
	err   error
}

func (f *fakeFinder) FindIDsByName(ctx context.Context, tenantID, name string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.names[tenantID+"|"+strings.ToLower(name)], nil
}

func (f *fakeFinder) FindIDsBySKU(ctx context.Context, tenantID, sku string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.skus[tenantID+"|"+strings.ToLower(sku)], nil
}

func TestCheckNameUnique(t *testing.T) {
	f := &fakeFinder{names: map[string][]string{"t1|hoodie": {"e1"}}}
	v := NewValidator(f)
	ctx := context.Background()

	tests := []struct {
		name      string
		tenant    string
		value     string
		excludeID string
		conflict  bool
	}{
		{"free name", "t1", "Tee", "", false},
		{"taken, different case", "t1", "HOODIE", "", true},
		{"taken by the entry being updated", "t1", "Hoodie", "e1", false},
		{"taken, other entry updating", "t1", "Hoodie", "e2", true},
		{"other tenant", "t2", "Hoodie", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.CheckNameUnique(ctx, tt.tenant, tt.value, tt.excludeID)
			if tt.conflict {
				var ce *model.ConflictError
				if !errors.As(err, &ce) {
					t.Fatalf("expected ConflictError, got %v", err)
				}
				if ce.Field != "name" {
					t.Fatalf("expected name conflict, got %s", ce.Field)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCheckSKUUnique(t *testing.T) {
	f := &fakeFinder{skus: map[string][]string{"t1|red-m": {"e1", "e3"}}}
	v := NewValidator(f)

	err := v.CheckSKUUnique(context.Background(), "t1", "Red-M", "e1")
	if !model.IsConflictError(err) {
		t.Fatalf("expected ConflictError when another entry shares the sku, got %v", err)
	}
	if err := v.CheckSKUUnique(context.Background(), "t1", "BLUE-M", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFinderErrorIsNotAConflict(t *testing.T) {
	boom := errors.New("db down")
	v := NewValidator(&fakeFinder{err: boom})

	err := v.CheckNameUnique(context.Background(), "t1", "Tee", "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped finder error, got %v", err)
	}
	if model.IsConflictError(err) {
		t.Fatal("finder failure must not be reported as a conflict")
	}
}
