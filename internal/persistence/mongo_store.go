package persistence

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petrijr/socialflow/pkg/api"
)

// MongoRecordStore is a RecordStore backed by MongoDB. Each record kind has
// its own collection; documents are keyed by _id and searched with equality
// filters on the same field names the JSON encoding uses.
type MongoRecordStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ RecordStore = (*MongoRecordStore)(nil)

// NewMongoRecordStore creates a MongoRecordStore using database dbName.
func NewMongoRecordStore(client *mongo.Client, dbName string) *MongoRecordStore {
	return &MongoRecordStore{
		client: client,
		db:     client.Database(dbName),
	}
}

func (s *MongoRecordStore) coll(kind api.Kind) *mongo.Collection {
	return s.db.Collection(string(kind) + "s")
}

func (s *MongoRecordStore) Fetch(ctx context.Context, id string, dst api.Record) error {
	err := s.coll(dst.Kind()).FindOne(ctx, bson.M{"_id": id}).Decode(dst)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return api.NewNotFoundError(dst.Kind(), id)
		}
		return err
	}
	return nil
}

func (s *MongoRecordStore) Save(ctx context.Context, rec api.Record) error {
	assignID(rec)
	_, err := s.coll(rec.Kind()).ReplaceOne(ctx,
		bson.M{"_id": rec.RecordID()},
		rec,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *MongoRecordStore) Remove(ctx context.Context, kind api.Kind, id string) error {
	_, err := s.coll(kind).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoRecordStore) Count(ctx context.Context, kind api.Kind, q Query) (int, error) {
	if err := q.validate(kind); err != nil {
		return 0, err
	}
	n, err := s.coll(kind).CountDocuments(ctx, mongoFilter(q))
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// First returns the earliest-created matching record.
func (s *MongoRecordStore) First(ctx context.Context, q Query, dst api.Record) (bool, error) {
	kind := dst.Kind()
	if err := q.validate(kind); err != nil {
		return false, err
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "createAt", Value: 1}, {Key: "_id", Value: 1}})
	err := s.coll(kind).FindOne(ctx, mongoFilter(q), opts).Decode(dst)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *MongoRecordStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func mongoFilter(q Query) bson.M {
	filter := bson.M{}
	for _, c := range q {
		filter[c.Field] = c.Value
	}
	return filter
}
