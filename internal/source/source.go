// Package source loads table rows from a JSON or YAML file and watches the
// file for rewrites.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hostpanel/panelview/internal/tabview"
	"gopkg.in/yaml.v3"
)

// DefaultIdentity is the identity field used when none is configured.
const DefaultIdentity = "id"

// ErrNotFound is returned by Load when the file does not exist.
var ErrNotFound = errors.New("source file not found")

// Load reads path and returns one record per row. The document is either a
// list of rows or an object whose "items" key holds the list. Rows that are
// not objects become single-field records under "value".
func Load(path, identity string) ([]tabview.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read source: %w", err)
	}
	doc, err := decode(path, data)
	if err != nil {
		return nil, err
	}
	rows, err := rowsOf(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return toItems(rows, identity), nil
}

// FileProvider implements tabview.Provider over a file.
type FileProvider struct {
	Path     string
	Identity string
}

// Ensure FileProvider implements tabview.Provider at compile time.
var _ tabview.Provider = FileProvider{}

// Fetch implements tabview.Provider.
func (p FileProvider) Fetch(ctx context.Context) ([]tabview.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(p.Path, p.Identity)
}

func decode(path string, data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var doc any
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return doc, nil
}

func rowsOf(doc any) ([]any, error) {
	switch typed := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		return typed, nil
	case map[string]any:
		items, ok := typed["items"]
		if !ok {
			return nil, fmt.Errorf("object document needs an \"items\" list")
		}
		if items == nil {
			return nil, nil
		}
		list, ok := items.([]any)
		if !ok {
			return nil, fmt.Errorf("\"items\" must be a list, got %T", items)
		}
		return list, nil
	}
	return nil, fmt.Errorf("document must be a list or an object, got %T", doc)
}

func toItems(rows []any, identity string) []tabview.Item {
	if identity = strings.TrimSpace(identity); identity == "" {
		identity = DefaultIdentity
	}
	items := make([]tabview.Item, 0, len(rows))
	for i, row := range rows {
		values, ok := row.(map[string]any)
		if !ok {
			values = map[string]any{"value": row}
		}
		id := ""
		if v, ok := values[identity]; ok {
			id = strings.TrimSpace(tabview.FormatValue(v))
		}
		if id == "" {
			id = fmt.Sprintf("#%d", i)
		}
		items = append(items, tabview.NewRecord(id, values))
	}
	return items
}
