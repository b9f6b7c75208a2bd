package tabview

import (
	"encoding/json"
	"sort"
)

// Item is one record in the collection being displayed.
type Item interface {
	// Identity returns the stable key used for selection tracking.
	Identity() string
	// Value returns the value stored under field.
	Value(field string) (any, bool)
	// Fields lists the field names carried by the item.
	Fields() []string
}

// Record is the Item produced by every data provider in panelview.
type Record struct {
	ID     string         `json:"id" yaml:"id"`
	Values map[string]any `json:"values" yaml:"values"`
}

// Ensure Record implements Item at compile time.
var _ Item = Record{}

// NewRecord builds a Record. The values map is used as-is.
func NewRecord(id string, values map[string]any) Record {
	if values == nil {
		values = map[string]any{}
	}
	return Record{ID: id, Values: values}
}

// Identity implements Item.
func (r Record) Identity() string {
	return r.ID
}

// Value implements Item.
func (r Record) Value(field string) (any, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// Fields implements Item. Names are returned sorted.
func (r Record) Fields() []string {
	names := make([]string, 0, len(r.Values))
	for name := range r.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns the field value rendered for display.
func (r Record) String(field string) string {
	v, ok := r.Values[field]
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// MarshalJSON flattens the record so render surfaces see plain objects.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		out[k] = v
	}
	if _, exists := out["id"]; !exists {
		out["id"] = r.ID
	}
	return json.Marshal(out)
}

// MarshalYAML mirrors MarshalJSON for the yaml encoder.
func (r Record) MarshalYAML() (any, error) {
	out := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		out[k] = v
	}
	if _, exists := out["id"]; !exists {
		out["id"] = r.ID
	}
	return out, nil
}
