package repositories

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tripmate/internal/agent"
	"tripmate/pkg/utils"
)

// FileHistoryRepository stores each transcript as an indented JSON array.
// The empty key maps to the configured path itself; any other key gets a
// sibling file named "<stem>-<key><ext>".
type FileHistoryRepository struct {
	path string
}

func NewFileHistoryRepository(path string) *FileHistoryRepository {
	return &FileHistoryRepository{path: path}
}

func (r *FileHistoryRepository) Describe(key string) string {
	p, err := r.pathFor(key)
	if err != nil {
		return r.path
	}
	return p
}

func (r *FileHistoryRepository) Load(ctx context.Context, key string) ([]agent.Item, error) {
	p, err := r.pathFor(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", utils.ErrSessionNotFound, p)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", utils.ErrHistoryStore, p, err)
	}
	return decodeItems(data)
}

func (r *FileHistoryRepository) Save(ctx context.Context, key string, items []agent.Item) error {
	p, err := r.pathFor(key)
	if err != nil {
		return err
	}
	data, err := encodeItems(items)
	if err != nil {
		return err
	}
	return writeFileAtomic(p, data)
}

func (r *FileHistoryRepository) pathFor(key string) (string, error) {
	if key == "" {
		return r.path, nil
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: bad session key %q", utils.ErrInvalidInput, key)
	}
	ext := filepath.Ext(r.path)
	stem := strings.TrimSuffix(r.path, ext)
	return stem + "-" + key + ext, nil
}

// writeFileAtomic writes through a temp file in the same directory so a
// crash never leaves a truncated transcript behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", utils.ErrHistoryStore, dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", utils.ErrHistoryStore, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", utils.ErrHistoryStore, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", utils.ErrHistoryStore, path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", utils.ErrHistoryStore, path, err)
	}
	return nil
}
