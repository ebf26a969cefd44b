package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tripmate/internal/agent"
	"tripmate/pkg/utils"
)

const mongoConversationCollection = "conversations"

type conversationDocument struct {
	Key       string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	ItemCount int       `bson:"item_count"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoHistoryRepository stores one document per session. The transcript is
// kept as its JSON encoding so items round-trip byte for byte.
type MongoHistoryRepository struct {
	coll *mongo.Collection
}

func NewMongoHistoryRepository(db *mongo.Database) *MongoHistoryRepository {
	return &MongoHistoryRepository{coll: db.Collection(mongoConversationCollection)}
}

func (r *MongoHistoryRepository) Describe(key string) string {
	return "mongo:" + mongoConversationCollection + "/" + key
}

func (r *MongoHistoryRepository) Load(ctx context.Context, key string) ([]agent.Item, error) {
	var doc conversationDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", utils.ErrSessionNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrHistoryStore, err)
	}
	return decodeItems([]byte(doc.Payload))
}

func (r *MongoHistoryRepository) Save(ctx context.Context, key string, items []agent.Item) error {
	data, err := encodeItems(items)
	if err != nil {
		return err
	}
	doc := conversationDocument{
		Key:       key,
		Payload:   string(data),
		ItemCount: len(items),
		UpdatedAt: time.Now().UTC(),
	}
	_, err = r.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrHistoryStore, err)
	}
	return nil
}
