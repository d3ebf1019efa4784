package models

import (
	"encoding/json"
)

// Well-known resourceType categories. The field is free-form in stored
// documents; these are the values the ingestion pipeline emits.
const (
	ResourceTypeStorage = "STORAGE"
	ResourceTypeCompute = "COMPUTE"
)

// Variant tags which shape a resource payload resolved to.
type Variant int

const (
	// VariantInvalid is the zero value: no single shape could be selected.
	VariantInvalid Variant = iota

	// VariantStorage selects the Storage shape.
	VariantStorage

	// VariantCompute selects the Compute shape.
	VariantCompute
)

// String returns the lowercase variant name used in logs and metrics.
func (v Variant) String() string {
	switch v {
	case VariantStorage:
		return "storage"
	case VariantCompute:
		return "compute"
	default:
		return "invalid"
	}
}

// ResourcePayload is the tagged union held in Resource.Resource.
// Exactly one of Storage or Compute is non-nil, matching Variant.
type ResourcePayload struct {
	Variant Variant
	Storage *Storage
	Compute *Compute
}

// NewStoragePayload wraps a Storage value in a payload.
func NewStoragePayload(s *Storage) ResourcePayload {
	return ResourcePayload{Variant: VariantStorage, Storage: s}
}

// NewComputePayload wraps a Compute value in a payload.
func NewComputePayload(c *Compute) ResourcePayload {
	return ResourcePayload{Variant: VariantCompute, Compute: c}
}

// MarshalJSON renders only the selected variant's fields.
func (p ResourcePayload) MarshalJSON() ([]byte, error) {
	switch p.Variant {
	case VariantStorage:
		return json.Marshal(p.Storage)
	case VariantCompute:
		return json.Marshal(p.Compute)
	default:
		return []byte("null"), nil
	}
}

// Resource is a catalog record: an infrastructure resource with its
// category-specific payload.
type Resource struct {
	// ID is assigned by the ingestion pipeline. It is not guaranteed unique
	// in the store.
	ID string `json:"id"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// ResourceType is the category, e.g. "STORAGE" or "COMPUTE".
	ResourceType string `json:"resourceType"`

	// Resource is the category-specific payload.
	Resource ResourcePayload `json:"resource"`

	Hosts       []Host       `json:"hosts,omitempty"`
	Connections []Connection `json:"connections,omitempty"`
}
