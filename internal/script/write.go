package script

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/robottwo/llmscript/internal/filesystem"
)

var ErrWrite = errors.New("failed to write script")

// ResolvePath turns the configured script filename into an absolute path
// relative to the current working directory.
func ResolvePath(name string) (string, error) {
	path, err := filepath.Abs(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return path, nil
}

// Write replaces the file at path with content. Nothing is added, stripped
// or normalized.
func Write(fs filesystem.FileSystem, path string, content string) error {
	if err := fs.WriteFile(path, content); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
