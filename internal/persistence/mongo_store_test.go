package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petrijr/socialflow/internal/testutil"
)

func connectTestMongo(t *testing.T) (*mongo.Client, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(testutil.GetMongoURI(t)))
	if err != nil {
		t.Fatalf("mongo.Connect failed: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Disconnect(context.Background())
	})
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("mongo ping failed: %v", err)
	}
	return client, "socialflow_test_" + uuid.NewString()[:8]
}

func TestMongoRecordStore_Contract(t *testing.T) {
	client, db := connectTestMongo(t)
	runRecordStoreContract(t, NewMongoRecordStore(client, db))
}

func TestMongoEventStore_Contract(t *testing.T) {
	client, db := connectTestMongo(t)
	runEventStoreContract(t, NewMongoEventStore(client, db))
}
