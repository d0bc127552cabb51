// package formatter writes the pipeline's output files: per-playlist raw
// payloads, the processed dataset, and the script-loadable dataset for the
// browser dashboard.
package formatter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tobiolu/afrocharts/internal/dataset"
	"github.com/tobiolu/afrocharts/internal/shared"
)

// WriteRawPayload writes a playlist's raw audit payload as indented JSON.
// Returns the number of bytes written.
func WriteRawPayload(payload *dataset.RawPayload, path string) (int, error) {
	return writeJSONFile(payload, path)
}

// WriteDataset writes the processed dataset as indented JSON.
func WriteDataset(ds *dataset.Dataset, path string) (int, error) {
	return writeJSONFile(ds, path)
}

// WriteScriptDataset writes the dataset assigned to a window-scoped global,
// for direct inclusion by the dashboard:
//
//	window.<global> = { ... };
func WriteScriptDataset(ds *dataset.Dataset, global, path string) (int, error) {
	data, err := shared.MarshalJSON(ds, true)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal dataset: %w", err)
	}

	script := make([]byte, 0, len(data)+len(global)+16)
	script = append(script, []byte("window."+global+" = ")...)
	script = append(script, data...)
	script = append(script, []byte(";\n")...)

	if err := writeFile(script, path); err != nil {
		return 0, err
	}
	return len(script), nil
}

func writeJSONFile(data any, path string) (int, error) {
	out, err := shared.MarshalJSON(data, true)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := writeFile(out, path); err != nil {
		return 0, err
	}
	return len(out), nil
}

// writeFile overwrites path with data, creating parent directories as needed.
func writeFile(data []byte, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
