// Package ingest loads SGCI resource data files into the document store.
//
// A data directory holds JSON or YAML files, each with a top-level
// "sgciResources" array. Every load replaces the whole collection with the
// union of all files, so the store always mirrors the directory.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"sgci.io/catalog/internal/logging"
	"sgci.io/catalog/internal/metrics"
	"sgci.io/catalog/models"
	"sgci.io/catalog/pkg/catalog"
)

// ResourcesKey is the top-level key holding the resource array in a data file.
const ResourcesKey = "sgciResources"

// ErrInvalidData indicates a data file or document that cannot be loaded.
var ErrInvalidData = errors.New("invalid resource data")

// Replacer atomically swaps the stored collection.
type Replacer interface {
	ReplaceAll(ctx context.Context, docs []catalog.Document) (int, error)
}

// Report summarizes one load.
type Report struct {
	// Files lists the data files read, in load order.
	Files []string

	// Documents is the number of documents written to the store.
	Documents int

	// Invalid holds the documents that failed Decode. In strict mode a
	// non-empty list aborts the load before the store is touched.
	Invalid []*models.RecordError

	// Matched holds, for a dry run, the parsed documents the preview
	// filter selects.
	Matched []catalog.Document
}

// Loader reads a data directory into a store.
type Loader struct {
	store  Replacer
	logger *zap.Logger
	strict bool
}

// NewLoader creates a loader. In strict mode a load with any document that
// fails Decode is rejected and the store keeps its previous contents.
func NewLoader(store Replacer, logger *zap.Logger, strict bool) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{store: store, logger: logger.With(logging.Component("ingest")), strict: strict}
}

// Load reads every data file in dir and replaces the collection with their
// documents.
func (l *Loader) Load(ctx context.Context, dir string) (*Report, error) {
	report, docs, err := l.read(dir)
	if err != nil {
		metrics.LoadsTotal.WithLabelValues("error").Inc()
		return report, err
	}

	if len(report.Invalid) > 0 {
		for _, recErr := range report.Invalid {
			l.logger.Warn("document does not map to a resource",
				logging.RecordIndex(recErr.Index),
				logging.ResourceID(recErr.ID),
				zap.Error(recErr.Err))
		}
		if l.strict {
			metrics.LoadsTotal.WithLabelValues("rejected").Inc()
			return report, fmt.Errorf("%w: %d of %d documents failed validation",
				ErrInvalidData, len(report.Invalid), len(docs))
		}
	}

	n, err := l.store.ReplaceAll(ctx, docs)
	if err != nil {
		metrics.LoadsTotal.WithLabelValues("error").Inc()
		return report, fmt.Errorf("failed to replace collection: %w", err)
	}
	report.Documents = n

	metrics.LoadsTotal.WithLabelValues("success").Inc()
	metrics.DocumentsLoaded.Set(float64(n))
	l.logger.Info("loaded resource data",
		zap.String("dir", dir),
		zap.Int("files", len(report.Files)),
		zap.Int(logging.FieldCount, n),
		zap.Int("invalid", len(report.Invalid)))

	return report, nil
}

// DryRun parses and validates dir like Load but leaves the store alone. The
// documents matching q are returned in Report.Matched, so an operator can
// preview what a query would see after the load. Strict mode is not
// applied; invalid documents are only reported.
func (l *Loader) DryRun(dir string, q catalog.Query) (*Report, error) {
	report, docs, err := l.read(dir)
	if err != nil {
		return report, err
	}

	filter := catalog.BuildFilter(q)
	for _, doc := range docs {
		if filter.Matches(doc) {
			report.Matched = append(report.Matched, doc)
		}
	}
	report.Documents = len(docs)
	return report, nil
}

// read parses the directory and validates every document.
func (l *Loader) read(dir string) (*Report, []catalog.Document, error) {
	report := &Report{}

	files, err := DataFiles(dir)
	if err != nil {
		return report, nil, err
	}

	var docs []catalog.Document
	for _, path := range files {
		fileDocs, err := ParseFile(path)
		if err != nil {
			l.logger.Warn("data file rejected", zap.String(logging.FieldFile, path), zap.Error(err))
			return report, nil, err
		}
		l.logger.Debug("read data file", zap.String(logging.FieldFile, path), zap.Int(logging.FieldCount, len(fileDocs)))
		report.Files = append(report.Files, path)
		docs = append(docs, fileDocs...)
	}

	seen := make(map[string]int, len(docs))
	for i, doc := range docs {
		if _, err := catalog.Decode(doc); err != nil {
			report.Invalid = append(report.Invalid, &models.RecordError{Index: i, ID: doc.ID(), Err: err})
		}
		if id := doc.ID(); id != "" {
			if first, dup := seen[id]; dup {
				l.logger.Warn("duplicate resource id", logging.ResourceID(id),
					zap.Int("first_index", first), logging.RecordIndex(i))
			} else {
				seen[id] = i
			}
		}
	}

	return report, docs, nil
}

// IsDataFile reports whether path has a supported data file extension.
func IsDataFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// DataFiles lists the data files directly inside dir, sorted by name.
// Hidden files are ignored.
func DataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !IsDataFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ParseFile reads the sgciResources array of one data file.
func ParseFile(path string) ([]catalog.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&raw)
	default:
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidData, path, err)
	}

	value, ok := raw[ResourcesKey]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %q array", ErrInvalidData, path, ResourcesKey)
	}
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: %q is not an array", ErrInvalidData, path, ResourcesKey)
	}

	docs := make([]catalog.Document, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s: %s[%d] is not an object", ErrInvalidData, path, ResourcesKey, i)
		}
		docs = append(docs, catalog.Document(obj))
	}
	return docs, nil
}
