// Package logging provides structured logging for the catalog server.
//
// Loggers travel with the request context so the service layer can log with
// the request ID the HTTP middleware attached.
package logging

import (
	"time"

	"go.uber.org/zap"
)

// Standard field names for consistent logging across the application.
const (
	// FieldRequestID is a unique identifier for each HTTP request.
	FieldRequestID = "request_id"

	// FieldInstanceID identifies the server process emitting the log.
	FieldInstanceID = "instance_id"

	// FieldResourceID is the id of a catalog resource document.
	FieldResourceID = "resource_id"

	// FieldResourceType is the resourceType of a catalog resource document.
	FieldResourceType = "resource_type"

	// FieldVariant is the union variant a record resolved to.
	FieldVariant = "variant"

	// FieldRecordIndex is the position of a record in a query result.
	FieldRecordIndex = "record_index"

	// FieldRecordPolicy is the policy applied to records that fail to map.
	FieldRecordPolicy = "record_policy"

	// FieldFilter describes the constraints of a query.
	FieldFilter = "filter"

	// FieldCount is the number of items an operation produced.
	FieldCount = "count"

	FieldDuration   = "duration_ms"
	FieldStatusCode = "status_code"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldRemoteAddr = "remote_addr"
	FieldUserAgent  = "user_agent"
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldFile       = "file"
)

// ResourceID returns a field carrying a resource id.
func ResourceID(id string) zap.Field { return zap.String(FieldResourceID, id) }

// RecordIndex returns a field carrying the position of a record.
func RecordIndex(i int) zap.Field { return zap.Int(FieldRecordIndex, i) }

// Component returns a field naming the subsystem that logs.
func Component(name string) zap.Field { return zap.String(FieldComponent, name) }

// Duration returns a field carrying an elapsed time in milliseconds.
func Duration(d time.Duration) zap.Field {
	return zap.Float64(FieldDuration, float64(d.Microseconds())/1000)
}
