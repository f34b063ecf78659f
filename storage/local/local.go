package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Dir saves downloaded files into a directory on disk
type Dir struct {
	path string
}

// New creates a Dir saver, creating the directory if needed
func New(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}
	return &Dir{path: path}, nil
}

// Save writes data to the directory. Only the base of name is used so a
// server-suggested filename cannot escape the directory.
func (d *Dir) Save(_ context.Context, name string, data []byte) error {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		return fmt.Errorf("invalid filename %q", name)
	}
	return os.WriteFile(filepath.Join(d.path, base), data, 0644)
}
