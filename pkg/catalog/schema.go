package catalog

import (
	"encoding/json"
	"errors"
	"fmt"

	"sgci.io/catalog/models"
)

// Document is a loosely-typed stored record as read from the document store.
type Document map[string]any

// Top-level document keys.
const (
	keyID           = "id"
	keyName         = "name"
	keyDescription  = "description"
	keyResourceType = "resourceType"
	keyResource     = "resource"
	keyHosts        = "hosts"
	keyConnections  = "connections"
)

// ID returns the document's id when it is a string.
func (d Document) ID() string {
	id, _ := d[keyID].(string)
	return id
}

// Record is one row read back from a document store. Err is set when the
// stored value could not be parsed as a document, in which case Doc is nil.
// A store keeps scanning past such rows so that callers decide, record by
// record, whether a bad row fails the read.
type Record struct {
	Doc Document
	Err error
}

// ID returns the id of the parsed document, or "" for an unparsable row.
func (r Record) ID() string {
	return r.Doc.ID()
}

// Decode maps the record onto a Resource. A row that could not be parsed is
// reported as models.ErrSchemaViolation.
func (r Record) Decode() (models.Resource, error) {
	if r.Err != nil {
		if errors.Is(r.Err, models.ErrSchemaViolation) {
			return models.Resource{}, r.Err
		}
		return models.Resource{}, fmt.Errorf("%w: %v", models.ErrSchemaViolation, r.Err)
	}
	return Decode(r.Doc)
}

// Records wraps parsed documents as records.
func Records(docs ...Document) []Record {
	out := make([]Record, len(docs))
	for i, d := range docs {
		out[i] = Record{Doc: d}
	}
	return out
}

// Decode maps a raw document onto a typed models.Resource.
//
// The id and resourceType fields are required strings; when either is
// absent the result is models.ErrSchemaViolation. The resource payload is
// resolved with ResolveVariant and decoded into exactly one variant, so
// models.ErrTypeResolution is returned for ambiguous or unmarked payloads.
func Decode(doc Document) (models.Resource, error) {
	var res models.Resource

	id, err := requiredString(doc, keyID)
	if err != nil {
		return res, err
	}
	resourceType, err := requiredString(doc, keyResourceType)
	if err != nil {
		return res, err
	}
	name, err := optionalString(doc, keyName)
	if err != nil {
		return res, err
	}
	description, err := optionalString(doc, keyDescription)
	if err != nil {
		return res, err
	}

	res.ID = id
	res.ResourceType = resourceType
	res.Name = name
	res.Description = description

	payload, err := payloadOf(doc)
	if err != nil {
		return res, err
	}
	res.Resource, err = DecodePayload(payload)
	if err != nil {
		return res, err
	}

	if err := decodeField(doc, keyHosts, &res.Hosts); err != nil {
		return res, err
	}
	if err := decodeField(doc, keyConnections, &res.Connections); err != nil {
		return res, err
	}

	return res, nil
}

// DecodePayload resolves and decodes a resource payload into the tagged union.
func DecodePayload(payload map[string]any) (models.ResourcePayload, error) {
	variant, err := ResolveVariant(payload)
	if err != nil {
		return models.ResourcePayload{}, err
	}

	switch variant {
	case models.VariantStorage:
		var s models.Storage
		if err := remarshal(payload, &s); err != nil {
			return models.ResourcePayload{}, fmt.Errorf("%w: storage payload: %v", models.ErrSchemaViolation, err)
		}
		return models.NewStoragePayload(&s), nil
	case models.VariantCompute:
		var c models.Compute
		if err := remarshal(payload, &c); err != nil {
			return models.ResourcePayload{}, fmt.Errorf("%w: compute payload: %v", models.ErrSchemaViolation, err)
		}
		return models.NewComputePayload(&c), nil
	default:
		return models.ResourcePayload{}, fmt.Errorf("%w: unknown variant %v", models.ErrTypeResolution, variant)
	}
}

// payloadOf extracts the resource sub-document. A missing or null payload
// is treated as empty so that it fails variant resolution rather than the
// schema check.
func payloadOf(doc Document) (map[string]any, error) {
	raw, ok := doc[keyResource]
	if !ok || raw == nil {
		return map[string]any{}, nil
	}

	switch p := raw.(type) {
	case map[string]any:
		return p, nil
	case Document:
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %s must be an object, got %T", models.ErrSchemaViolation, keyResource, raw)
	}
}

func requiredString(doc Document, key string) (string, error) {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return "", fmt.Errorf("%w: missing required field %s", models.ErrSchemaViolation, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %s must be a string, got %T", models.ErrSchemaViolation, key, raw)
	}
	return s, nil
}

func optionalString(doc Document, key string) (string, error) {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %s must be a string, got %T", models.ErrSchemaViolation, key, raw)
	}
	return s, nil
}

func decodeField(doc Document, key string, dst any) error {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return nil
	}
	if err := remarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: field %s: %v", models.ErrSchemaViolation, key, err)
	}
	return nil
}

// remarshal converts a generic value into a typed one through JSON.
func remarshal(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
