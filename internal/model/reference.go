package model

type ReferenceKind string

const (
	ReferenceKindCategory     ReferenceKind = "category"
	ReferenceKindCatalogEntry ReferenceKind = "catalog_entry"
)

// ReferenceID names a record owned by this service from another subsystem.
type ReferenceID struct {
	Kind ReferenceKind `json:"kind"`
	ID   string        `json:"id"`
}
