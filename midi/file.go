package midi

import (
	"fmt"
	"os"
	"path/filepath"

	"go-industrial/song"
)

// WriteFile writes an encoded file to path, creating parent directories.
// Failures wrap song.ErrFileWriteFailed.
func WriteFile(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("empty output path: %w", song.ErrFileWriteFailed)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %v", song.ErrFileWriteFailed, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", song.ErrFileWriteFailed, err)
	}
	return nil
}

// Export encodes and writes in one step
func Export(path string, sections []song.Section, p song.Params) (int, error) {
	data, err := Encode(sections, p)
	if err != nil {
		return 0, err
	}
	if err := WriteFile(path, data); err != nil {
		return 0, err
	}
	return len(data), nil
}
