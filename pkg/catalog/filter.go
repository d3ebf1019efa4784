package catalog

// Field is a top-level document field that can be constrained by a query.
type Field string

// Queryable document fields.
const (
	FieldID           Field = "id"
	FieldName         Field = "name"
	FieldResourceType Field = "resourceType"
)

// Query holds the optional arguments of a catalog lookup. Empty strings mean
// the argument was not supplied.
type Query struct {
	ID           string `json:"id,omitempty" form:"id"`
	Name         string `json:"name,omitempty" form:"name"`
	ResourceType string `json:"resourceType,omitempty" form:"resourceType"`
}

// Constraint is a single equality test on a document field.
type Constraint struct {
	Field Field
	Value string
}

// Filter is an immutable conjunction of equality constraints.
// The zero value matches every document.
type Filter struct {
	constraints []Constraint
}

// BuildFilter converts a query into a filter. Every non-empty argument adds
// one equality constraint; values are not validated, so an unknown
// resourceType simply matches nothing.
//
// Each call allocates a new constraint slice, so filters built for
// concurrent queries never share state.
func BuildFilter(q Query) Filter {
	constraints := make([]Constraint, 0, 3)

	if q.ID != "" {
		constraints = append(constraints, Constraint{Field: FieldID, Value: q.ID})
	}
	if q.Name != "" {
		constraints = append(constraints, Constraint{Field: FieldName, Value: q.Name})
	}
	if q.ResourceType != "" {
		constraints = append(constraints, Constraint{Field: FieldResourceType, Value: q.ResourceType})
	}

	return Filter{constraints: constraints}
}

// Constraints returns a copy of the filter's constraints in a stable order
// (id, name, resourceType).
func (f Filter) Constraints() []Constraint {
	out := make([]Constraint, len(f.constraints))
	copy(out, f.constraints)
	return out
}

// IsEmpty reports whether the filter matches every document.
func (f Filter) IsEmpty() bool {
	return len(f.constraints) == 0
}

// Matches evaluates the filter against a raw document. A constrained field
// matches only when it is present as a string equal to the constraint value.
func (f Filter) Matches(doc Document) bool {
	for _, c := range f.constraints {
		v, ok := doc[string(c.Field)].(string)
		if !ok || v != c.Value {
			return false
		}
	}
	return true
}
