package persistence

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petrijr/socialflow/pkg/api"
)

// MongoEventStore stores task history events in a "history" collection.
// Events are read back in insertion order using the generated ObjectID.
type MongoEventStore struct {
	coll *mongo.Collection
}

var _ EventStore = (*MongoEventStore)(nil)

func NewMongoEventStore(client *mongo.Client, dbName string) *MongoEventStore {
	return &MongoEventStore{coll: client.Database(dbName).Collection("history")}
}

func (s *MongoEventStore) AppendEvent(ctx context.Context, ev api.HistoryEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	_, err := s.coll.InsertOne(ctx, ev)
	return err
}

func (s *MongoEventStore) ListEvents(ctx context.Context, subject string) ([]api.HistoryEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{"subject": subject}, opts)
	if err != nil {
		return nil, err
	}
	var out []api.HistoryEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
