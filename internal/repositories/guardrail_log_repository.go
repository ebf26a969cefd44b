package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"tripmate/internal/models/response_models"
	"tripmate/pkg/utils"
)

type GuardrailLogRepository interface {
	Append(ctx context.Context, entries ...response_models.GuardrailLogEntry) error
	List(ctx context.Context) ([]response_models.GuardrailLogEntry, error)
	Clear(ctx context.Context) error
}

// FileGuardrailLogRepository keeps the whole log in one JSON file.
type FileGuardrailLogRepository struct {
	mu   sync.Mutex
	path string
}

func NewFileGuardrailLogRepository(path string) *FileGuardrailLogRepository {
	return &FileGuardrailLogRepository{path: path}
}

func (r *FileGuardrailLogRepository) Append(ctx context.Context, entries ...response_models.GuardrailLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.read()
	if err != nil {
		// A corrupt log is replaced rather than blocking new entries.
		current = nil
	}
	return r.write(append(current, entries...))
}

func (r *FileGuardrailLogRepository) List(ctx context.Context) ([]response_models.GuardrailLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

func (r *FileGuardrailLogRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(nil)
}

func (r *FileGuardrailLogRepository) read() ([]response_models.GuardrailLogEntry, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", utils.ErrHistoryStore, r.path, err)
	}
	var entries []response_models.GuardrailLogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", utils.ErrHistoryStore, r.path, err)
	}
	return entries, nil
}

func (r *FileGuardrailLogRepository) write(entries []response_models.GuardrailLogEntry) error {
	if entries == nil {
		entries = []response_models.GuardrailLogEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode guardrail log: %v", utils.ErrHistoryStore, err)
	}
	return writeFileAtomic(r.path, data)
}
