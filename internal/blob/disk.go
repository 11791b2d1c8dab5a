package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps objects as plain files under a root directory. It backs
// the "local" storage type and the package tests.
type DiskStore struct {
	Root string
}

func NewDisk(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create blob root %s, %w", root, err)
	}

	return &DiskStore{Root: root}, nil
}

// resolve maps an object path onto the filesystem and rejects anything
// that would escape the root
func (d *DiskStore) resolve(path string) (string, error) {
	p := filepath.Join(d.Root, filepath.FromSlash(path))
	if !strings.HasPrefix(p, filepath.Clean(d.Root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid object path %q", path)
	}

	return p, nil
}

func (d *DiskStore) Put(_ context.Context, path string, data []byte, _ string) error {
	p, err := d.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("failed to create object dir, %w", err)
	}

	if err := os.WriteFile(p, data, 0o600); err != nil {
		return fmt.Errorf("failed to write object %s, %w", path, err)
	}

	return nil
}

func (d *DiskStore) Get(_ context.Context, path string) ([]byte, bool, error) {
	p, err := d.resolve(path)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("failed to read object %s, %w", path, err)
	}

	return data, true, nil
}

func (d *DiskStore) Delete(_ context.Context, path string) error {
	p, err := d.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete object %s, %w", path, err)
	}

	return nil
}
