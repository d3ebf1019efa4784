// Package service implements the catalog's read path: filter construction,
// the bounded store lookup, and mapping stored documents onto the typed
// Resource model.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sgci.io/catalog/internal/logging"
	"sgci.io/catalog/internal/metrics"
	"sgci.io/catalog/models"
	"sgci.io/catalog/pkg/catalog"
)

// DefaultStoreTimeout bounds a single store lookup when none is configured.
const DefaultStoreTimeout = 5 * time.Second

// RecordPolicy decides what a query does with a record that cannot be mapped.
type RecordPolicy string

const (
	// RecordPolicyStrict fails the whole query on the first bad record.
	RecordPolicyStrict RecordPolicy = "strict"

	// RecordPolicyLenient drops bad records, logging and counting each one.
	RecordPolicyLenient RecordPolicy = "lenient"
)

// ParseRecordPolicy validates a policy name. An empty name selects strict.
func ParseRecordPolicy(s string) (RecordPolicy, error) {
	switch RecordPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", RecordPolicyStrict:
		return RecordPolicyStrict, nil
	case RecordPolicyLenient:
		return RecordPolicyLenient, nil
	default:
		return "", fmt.Errorf("invalid record policy %q: want strict or lenient", s)
	}
}

// ResourceStore is the document collection the service reads from.
type ResourceStore interface {
	// Find returns a record per document matching f, in store-native order.
	// Rows the store could not parse come back as records carrying an error.
	Find(ctx context.Context, f catalog.Filter) ([]catalog.Record, error)
}

// ResourceService answers catalog queries.
type ResourceService struct {
	store   ResourceStore
	logger  *zap.Logger
	timeout time.Duration
	policy  RecordPolicy
}

// Option configures a ResourceService.
type Option func(*ResourceService)

// WithTimeout bounds each store lookup. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(s *ResourceService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRecordPolicy selects how unmappable records are handled.
func WithRecordPolicy(p RecordPolicy) Option {
	return func(s *ResourceService) {
		if p != "" {
			s.policy = p
		}
	}
}

// NewResourceService creates a resource service over store.
func NewResourceService(store ResourceStore, logger *zap.Logger, opts ...Option) *ResourceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ResourceService{
		store:   store,
		logger:  logger,
		timeout: DefaultStoreTimeout,
		policy:  RecordPolicyStrict,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the configured record policy.
func (s *ResourceService) Policy() RecordPolicy {
	return s.policy
}

// Query returns every resource matching q, in store order.
//
// The store lookup runs under ctx bounded by the configured timeout; an
// unreachable store, an expired timeout, or a cancelled ctx all yield
// models.ErrStoreUnavailable. Under the strict policy a record that fails to
// map aborts the query with a *models.RecordError and no partial result.
func (s *ResourceService) Query(ctx context.Context, q catalog.Query) ([]models.Resource, error) {
	filter := catalog.BuildFilter(q)
	ctx = logging.WithLogger(ctx, s.loggerFor(ctx).With(
		zap.String(logging.FieldFilter, describe(filter)),
		zap.String(logging.FieldRecordPolicy, string(s.policy)),
	))

	start := time.Now()
	records, err := s.find(ctx, filter)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(metrics.OutcomeStoreUnavailable).Inc()
		logging.Warn(ctx, "Resource lookup failed", zap.Error(err), logging.Duration(time.Since(start)))
		return nil, err
	}

	resources := make([]models.Resource, 0, len(records))
	for i, rec := range records {
		res, err := rec.Decode()
		if err != nil {
			recErr := &models.RecordError{Index: i, ID: rec.ID(), Err: err}
			recCtx := logging.AddFields(ctx, logging.RecordIndex(i), logging.ResourceID(recErr.ID))
			if s.policy == RecordPolicyStrict {
				metrics.QueriesTotal.WithLabelValues(metrics.OutcomeInvalidRecord).Inc()
				logging.Error(recCtx, "Record could not be mapped to a resource", zap.Error(err))
				return nil, recErr
			}

			metrics.RecordsSkipped.WithLabelValues(skipReason(err)).Inc()
			logging.Warn(recCtx, "Skipping record that could not be mapped to a resource", zap.Error(err))
			continue
		}

		metrics.RecordsResolved.WithLabelValues(res.Resource.Variant.String()).Inc()
		logging.Debug(ctx, "Resolved record",
			logging.RecordIndex(i),
			logging.ResourceID(res.ID),
			zap.String(logging.FieldResourceType, res.ResourceType),
			zap.Stringer(logging.FieldVariant, res.Resource.Variant))
		resources = append(resources, res)
	}

	metrics.QueriesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.QueryResults.Observe(float64(len(resources)))
	logging.Debug(ctx, "Resource query completed",
		zap.Int(logging.FieldCount, len(resources)),
		logging.Duration(time.Since(start)))

	return resources, nil
}

// find runs the store lookup under the configured timeout. Every failure
// it returns wraps models.ErrStoreUnavailable.
func (s *ResourceService) find(ctx context.Context, filter catalog.Filter) ([]catalog.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.store.Find(ctx, filter)
	if ctxErr := ctx.Err(); ctxErr != nil {
		// The lookup is abandoned once the deadline passes or the client
		// goes away, even if the store returned in the meantime.
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, ctxErr)
	}
	if err != nil {
		if errors.Is(err, models.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return records, nil
}

// loggerFor prefers the request-scoped logger over the service logger.
func (s *ResourceService) loggerFor(ctx context.Context) *zap.Logger {
	if l, ok := logging.FromContextOK(ctx); ok {
		return l
	}
	return s.logger
}

func skipReason(err error) string {
	if errors.Is(err, models.ErrTypeResolution) {
		return "type_resolution"
	}
	return "schema_violation"
}

// describe renders a filter for logs, e.g. "resourceType=STORAGE".
func describe(f catalog.Filter) string {
	if f.IsEmpty() {
		return "*"
	}
	parts := make([]string, 0, 3)
	for _, c := range f.Constraints() {
		parts = append(parts, string(c.Field)+"="+c.Value)
	}
	return strings.Join(parts, ",")
}
