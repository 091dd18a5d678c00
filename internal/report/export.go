package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned by Export for extensions other than .json,
// .yaml and .yml.
var ErrUnknownFormat = errors.New("unknown report format")

// Export writes rep to path as JSON or YAML, chosen by extension. Parent
// directories are created as needed.
func Export(path string, rep BatchReport) error {
	data, err := Marshal(filepath.Ext(path), rep)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	return nil
}

// Marshal encodes rep for the given file extension.
func Marshal(ext string, rep BatchReport) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".json":
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
		return append(data, '\n'), nil
	case ".yaml", ".yml":
		data, err := yaml.Marshal(rep)
		if err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w %q (use .json, .yaml or .yml)", ErrUnknownFormat, ext)
	}
}
