package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// StructuralError is returned when a payload breaks a field rule.
type StructuralError struct {
	Field  string
	Reason string
	Value  interface{}
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error: field=%s, reason=%s, value=%v", e.Field, e.Reason, e.Value)
}

func (e *StructuralError) Is(target error) bool {
	_, ok := target.(*StructuralError)
	return ok
}

// ConflictError is returned when a name or SKU is already taken in its scope.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s %q already exists", e.Field, e.Value)
}

func (e *ConflictError) Is(target error) bool {
	_, ok := target.(*ConflictError)
	return ok
}

// InsufficientInventoryError is returned when a reservation asks for more than is left.
type InsufficientInventoryError struct {
	Ref       CounterRef
	Requested int64
	Available int64
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory: ref=%s, requested=%d, available=%d", e.Ref, e.Requested, e.Available)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	_, ok := target.(*InsufficientInventoryError)
	return ok
}

// OverReleaseError is returned when a release asks for more than was sold.
type OverReleaseError struct {
	Ref       CounterRef
	Requested int64
	Sold      int64
}

func (e *OverReleaseError) Error() string {
	return fmt.Sprintf("over release: ref=%s, requested=%d, sold=%d", e.Ref, e.Requested, e.Sold)
}

func (e *OverReleaseError) Is(target error) bool {
	_, ok := target.(*OverReleaseError)
	return ok
}

// NotFoundError covers absent, soft-deleted and foreign-tenant records alike.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: id=%s", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// MissingReferencesError lists every reference that failed a batch existence check.
type MissingReferencesError struct {
	Missing []ReferenceID
}

func (e *MissingReferencesError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		parts[i] = string(m.Kind) + ":" + m.ID
	}
	sort.Strings(parts)
	return fmt.Sprintf("missing references: %s", strings.Join(parts, ","))
}

func (e *MissingReferencesError) Is(target error) bool {
	_, ok := target.(*MissingReferencesError)
	return ok
}

func NewStructuralError(field, reason string, value interface{}) error {
	return &StructuralError{Field: field, Reason: reason, Value: value}
}

func NewConflictError(field, value string) error {
	return &ConflictError{Field: field, Value: value}
}

func NewInsufficientInventoryError(ref CounterRef, requested, available int64) error {
	return &InsufficientInventoryError{Ref: ref, Requested: requested, Available: available}
}

func NewOverReleaseError(ref CounterRef, requested, sold int64) error {
	return &OverReleaseError{Ref: ref, Requested: requested, Sold: sold}
}

func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func NewMissingReferencesError(missing []ReferenceID) error {
	return &MissingReferencesError{Missing: missing}
}

func IsStructuralError(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

func IsConflictError(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsInsufficientInventoryError(err error) bool {
	var ie *InsufficientInventoryError
	return errors.As(err, &ie)
}

func IsOverReleaseError(err error) bool {
	var oe *OverReleaseError
	return errors.As(err, &oe)
}

func IsNotFoundError(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsMissingReferencesError(err error) bool {
	var mr *MissingReferencesError
	return errors.As(err, &mr)
}
