package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// projectDoc is the stored document shape.
type projectDoc struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// collection is the document access the store needs. mongoCollection
// implements it over a driver collection.
type collection interface {
	find(ctx context.Context, key string) (projectDoc, error)
	upsert(ctx context.Context, doc projectDoc) error
	remove(ctx context.Context, key string) error
}

type mongoCollection struct{ c *mongo.Collection }

func (m mongoCollection) find(ctx context.Context, key string) (projectDoc, error) {
	var doc projectDoc
	err := m.c.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	return doc, err
}

func (m mongoCollection) upsert(ctx context.Context, doc projectDoc) error {
	_, err := m.c.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, options.Replace().SetUpsert(true))
	return err
}

func (m mongoCollection) remove(ctx context.Context, key string) error {
	_, err := m.c.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// MongoStore stores state as one document per key.
type MongoStore struct {
	coll       collection
	disconnect func(context.Context) error
	now        func() time.Time
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "sitecanvas"
	}
	if cfg.Collection == "" {
		cfg.Collection = "projects"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, storageErr("connect", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, storageErr("connect", err)
	}
	s := newMongoStore(mongoCollection{client.Database(cfg.Database).Collection(cfg.Collection)})
	s.disconnect = client.Disconnect
	return s, nil
}

func newMongoStore(c collection) *MongoStore {
	return &MongoStore{coll: c, now: time.Now}
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	doc, err := s.coll.find(ctx, key)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, storageErr("read", err)
	}
	return doc.Data, nil
}

func (s *MongoStore) Put(ctx context.Context, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.coll.upsert(ctx, projectDoc{Key: key, Data: data, UpdatedAt: s.now().UTC()}); err != nil {
		return storageErr("write", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.coll.remove(ctx, key); err != nil {
		return storageErr("delete", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	if s.disconnect == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
