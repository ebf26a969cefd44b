package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"tripmate/internal/agent"
	"tripmate/internal/models/db_models"
	"tripmate/pkg/utils"
)

// PostgresHistoryRepository keeps one row per transcript item.
type PostgresHistoryRepository struct {
	db *gorm.DB
}

func NewPostgresHistoryRepository(db *gorm.DB) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

func (r *PostgresHistoryRepository) Describe(key string) string {
	return "postgres:conversation_items/" + key
}

func (r *PostgresHistoryRepository) Load(ctx context.Context, key string) ([]agent.Item, error) {
	var rows []db_models.ConversationItem
	err := r.db.WithContext(ctx).
		Where("session_key = ?", key).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrHistoryStore, err)
	}
	if len(rows) == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&db_models.ConversationSession{}).
			Where("session_key = ?", key).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrHistoryStore, err)
		}
		if count == 0 {
			return nil, fmt.Errorf("%w: %s", utils.ErrSessionNotFound, key)
		}
		return []agent.Item{}, nil
	}

	items := make([]agent.Item, 0, len(rows))
	for _, row := range rows {
		var it agent.Item
		if err := json.Unmarshal([]byte(row.Payload), &it); err != nil {
			return nil, fmt.Errorf("%w: decode item %d: %v", utils.ErrHistoryStore, row.Position, err)
		}
		items = append(items, it)
	}
	return items, nil
}

// Save replaces the stored transcript in one transaction.
func (r *PostgresHistoryRepository) Save(ctx context.Context, key string, items []agent.Item) error {
	rows := make([]db_models.ConversationItem, 0, len(items))
	for i, it := range items {
		payload, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("%w: encode item %d: %v", utils.ErrHistoryStore, i, err)
		}
		rows = append(rows, db_models.ConversationItem{
			SessionKey: key,
			Position:   i,
			Role:       string(it.Role),
			Payload:    string(payload),
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session := db_models.ConversationSession{SessionKey: key, ItemCount: len(items)}
		if err := tx.Where(db_models.ConversationSession{SessionKey: key}).
			Assign(db_models.ConversationSession{ItemCount: len(items)}).
			FirstOrCreate(&session).Error; err != nil {
			return err
		}
		if err := tx.Where("session_key = ?", key).Delete(&db_models.ConversationItem{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 100).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrHistoryStore, err)
	}
	return nil
}
