// Package curriculum loads the course definition and answers ordering
// and chapter-resolution queries against it.
package curriculum

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Loader loads and caches the course catalog from a curriculum
// document. The document is parsed on first access; a successful load
// is cached for the process lifetime, a failed one leaves nothing
// cached so a later access retries.
type Loader struct {
	path    string
	mu      sync.Mutex
	catalog *Catalog
}

// NewLoader creates a loader for the curriculum document at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Catalog returns the cached catalog, loading the document on first
// use. Concurrent first accesses perform at most one load.
func (l *Loader) Catalog() (*Catalog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.catalog != nil {
		return l.catalog, nil
	}

	catalog, err := load(l.path)
	if err != nil {
		return nil, err
	}

	l.catalog = catalog
	slog.Info("curriculum loaded", "path", l.path, "chapters", catalog.Len())
	return catalog, nil
}

func load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	doc, err := toJSON(path, raw)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	if err := validate(doc); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	var unit Unit
	if err := json.Unmarshal(doc, &unit); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("decoding document: %w", err)}
	}

	catalog, err := buildCatalog(unit)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return catalog, nil
}

// toJSON returns the document as JSON bytes, converting from YAML when
// the file extension calls for it.
func toJSON(path string, raw []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("converting YAML document: %w", err)
		}
		return out, nil
	default:
		if !json.Valid(raw) {
			return nil, fmt.Errorf("parsing JSON: document is not valid JSON")
		}
		return raw, nil
	}
}

func validate(doc []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(unitSchema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validating document: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("invalid document: %s", strings.Join(msgs, "; "))
	}
	return nil
}
