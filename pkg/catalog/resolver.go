package catalog

import (
	"fmt"

	"sgci.io/catalog/models"
)

// Payload marker keys. Their presence, not their value, selects the variant.
const (
	StorageMarker = "storageType"
	ComputeMarker = "schedulerType"
)

// ResolveVariant decides which shape a resource payload conforms to.
//
// The storage marker is checked before the compute marker. A payload that
// carries neither marker, or both, is ambiguous and yields
// models.ErrTypeResolution together with models.VariantInvalid.
//
// A marker counts as present when its key exists with a non-null value.
func ResolveVariant(payload map[string]any) (models.Variant, error) {
	hasStorage := hasMarker(payload, StorageMarker)
	hasCompute := hasMarker(payload, ComputeMarker)

	switch {
	case hasStorage && hasCompute:
		return models.VariantInvalid, fmt.Errorf("%w: both %s and %s are set",
			models.ErrTypeResolution, StorageMarker, ComputeMarker)
	case hasStorage:
		return models.VariantStorage, nil
	case hasCompute:
		return models.VariantCompute, nil
	default:
		return models.VariantInvalid, fmt.Errorf("%w: neither %s nor %s is set",
			models.ErrTypeResolution, StorageMarker, ComputeMarker)
	}
}

func hasMarker(payload map[string]any, key string) bool {
	v, ok := payload[key]
	return ok && v != nil
}
