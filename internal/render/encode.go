package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hostpanel/panelview/internal/tabview"
	"gopkg.in/yaml.v3"
)

// JSON writes vm as indented JSON.
func JSON(w io.Writer, vm tabview.ViewModel) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(vm); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// YAML writes vm as YAML.
func YAML(w io.Writer, vm tabview.ViewModel) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(vm); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
