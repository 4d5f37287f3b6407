// Package fsutil is the CLI's filesystem plumbing: reading workflow
// description files and writing exported reports atomically.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReadFileScoped reads path with access confined to its parent directory.
// The os.Root guard keeps a symlinked workflow file from leading the read
// outside the directory the user named.
func ReadFileScoped(path string) ([]byte, error) {
	cleaned := filepath.Clean(path)
	base := filepath.Base(cleaned)
	switch base {
	case "", ".", string(filepath.Separator):
		return nil, fmt.Errorf("not a file path: %q", path)
	}

	root, err := os.OpenRoot(filepath.Dir(cleaned))
	if err != nil {
		return nil, err
	}
	defer root.Close()

	f, err := root.Open(base)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
