// Package filex resolves client data files on disk.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates dir (and parents) if needed and returns its absolute
// path. A relative dir is resolved against the working directory.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// DataFile returns the path of name inside dir, creating dir first.
func DataFile(dir, name string) (string, error) {
	abs, err := EnsureDir(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(abs, name), nil
}
