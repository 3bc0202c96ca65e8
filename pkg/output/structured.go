package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iwvelando/proforma/internal/forecast"
	"gopkg.in/yaml.v3"
)

// JSONFormat outputs the full forecast as indented JSON.
func JSONFormat(w io.Writer, f *forecast.Forecast) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// YAMLFormat outputs the full forecast as YAML.
func YAMLFormat(w io.Writer, f *forecast.Forecast) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
