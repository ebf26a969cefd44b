package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"tripmate/internal/agent"
	"tripmate/pkg/utils"
)

// HistoryRepository persists conversation transcripts by session key.
// Load returns utils.ErrSessionNotFound when nothing is stored under key;
// other failures wrap utils.ErrHistoryStore.
type HistoryRepository interface {
	Load(ctx context.Context, key string) ([]agent.Item, error)
	Save(ctx context.Context, key string, items []agent.Item) error
	Describe(key string) string
}

func encodeItems(items []agent.Item) ([]byte, error) {
	if items == nil {
		items = []agent.Item{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encode history: %v", utils.ErrHistoryStore, err)
	}
	return b, nil
}

func decodeItems(data []byte) ([]agent.Item, error) {
	var items []agent.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: decode history: %v", utils.ErrHistoryStore, err)
	}
	return items, nil
}
