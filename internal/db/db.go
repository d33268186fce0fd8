package db

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	client  *mongo.Client
	once    sync.Once
	initErr error
)

// Connect initializes the process-scoped MongoDB client on the first call and
// hands back the same client on every call after that. Safe to call from any
// request path.
func Connect(uri string) (*mongo.Client, error) {
	once.Do(func() {
		client, initErr = mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
		if initErr != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if initErr = client.Ping(ctx, readpref.Primary()); initErr != nil {
			return
		}
		log.Println("Connected to MongoDB")
	})
	return client, initErr
}

// Disconnect closes the connection (call in main defer).
func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
