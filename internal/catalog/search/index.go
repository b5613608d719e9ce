// Package search keeps an Elasticsearch projection of catalog entries for free-text lookup.
// Only identity fields are indexed; counters and prices are always read from the database.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/catalog"
	"github.com/fekuna/omnipos-catalog-service/internal/catalog/dto"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	es "github.com/fekuna/omnipos-catalog-service/internal/pkg/search"
)

const IndexName = "catalog_entries"

const mapping = `{
	"mappings": {
		"properties": {
			"tenant_id": { "type": "keyword" },
			"category_id": { "type": "keyword" },
			"kind": { "type": "keyword" },
			"name": { "type": "text" },
			"skus": { "type": "keyword" },
			"attributes": { "type": "text" },
			"is_active": { "type": "boolean" },
			"created_at": { "type": "date" }
		}
	}
}`

type document struct {
	TenantID   string          `json:"tenant_id"`
	CategoryID string          `json:"category_id,omitempty"`
	Kind       model.EntryKind `json:"kind"`
	Name       string          `json:"name"`
	SKUs       []string        `json:"skus"`
	Attributes []string        `json:"attributes,omitempty"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  string          `json:"created_at"`
}

type EntryIndex struct {
	client *es.Client
}

func NewEntryIndex(client *es.Client) *EntryIndex {
	return &EntryIndex{client: client}
}

var _ catalog.Index = (*EntryIndex)(nil)

// EnsureIndex creates the index on startup.
func (x *EntryIndex) EnsureIndex(ctx context.Context) error {
	return x.client.CreateIndex(ctx, IndexName, mapping)
}

func toDocument(e *model.CatalogEntry) document {
	doc := document{
		TenantID:   e.TenantID,
		CategoryID: e.CategoryID,
		Kind:       e.Kind(),
		Name:       e.Name,
		IsActive:   e.IsActive,
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
	}
	switch it := e.Item.(type) {
	case *model.SimpleItem:
		doc.SKUs = []string{it.SKU}
	case *model.VariableItem:
		for _, v := range it.Variants {
			doc.SKUs = append(doc.SKUs, v.SKU)
			for _, a := range v.Attributes {
				doc.Attributes = append(doc.Attributes, a.Value)
			}
		}
	}
	return doc
}

func (x *EntryIndex) IndexEntry(ctx context.Context, e *model.CatalogEntry) error {
	return x.client.Index(ctx, IndexName, e.ID, toDocument(e))
}

func (x *EntryIndex) RemoveEntry(ctx context.Context, id string) error {
	return x.client.Delete(ctx, IndexName, id)
}

func buildQuery(f *dto.EntryFilters) map[string]interface{} {
	filter := []map[string]interface{}{
		{"term": map[string]interface{}{"tenant_id": f.TenantID}},
	}
	if f.CategoryID != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"category_id": f.CategoryID}})
	}
	if f.Kind != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"kind": f.Kind}})
	}
	if f.IsActive != nil {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"is_active": *f.IsActive}})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"query_string": map[string]interface{}{
							"query":  fmt.Sprintf("*%s*", escape(f.SearchQuery)),
							"fields": []string{"name^3", "skus", "attributes"},
						},
					},
				},
				"filter": filter,
			},
		},
		"_source": false,
	}
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		q["from"] = (page - 1) * f.PageSize
		q["size"] = f.PageSize
	}
	return q
}

var reserved = strings.NewReplacer(
	`\`, `\\`, `+`, `\+`, `-`, `\-`, `=`, `\=`, `&`, `\&`, `|`, `\|`, `>`, `\>`, `<`, `\<`,
	`!`, `\!`, `(`, `\(`, `)`, `\)`, `{`, `\{`, `}`, `\}`, `[`, `\[`, `]`, `\]`, `^`, `\^`,
	`"`, `\"`, `~`, `\~`, `*`, `\*`, `?`, `\?`, `:`, `\:`, `/`, `\/`,
)

func escape(s string) string {
	return reserved.Replace(s)
}

func (x *EntryIndex) Search(ctx context.Context, f *dto.EntryFilters) ([]string, int, error) {
	res, err := x.client.Search(ctx, IndexName, buildQuery(f))
	if err != nil {
		return nil, 0, err
	}
	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, res.Hits.Total.Value, nil
}
