// Package store persists canvas project state.
//
// A project is an opaque JSON blob (see canvas.State) saved under a key.
// Backends:
//   - memory: in-process map for tests and single-run servers
//   - file: one JSON file per key, for the CLI and local servers
//   - redis: shared storage for multi-instance deployments
//   - mongo: document storage with update timestamps
//
// Keys are validated with errors.ValidateKey by every backend, so a key that
// is safe for one backend is safe for all of them.
//
//	st, err := store.Open(ctx, store.Config{Backend: "file", Path: dir})
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//	err = st.Put(ctx, "landing-page", data)
package store

import (
	"context"
	"errors"
	"fmt"

	errs "github.com/matzehuels/sitecanvas/pkg/errors"
)

// ErrNotFound is returned when a key has no saved state.
var ErrNotFound = errors.New("not found")

// Store saves and loads project state blobs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend"`

	Path string `toml:"path"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Backends lists the accepted Config.Backend values.
var Backends = []string{"memory", "file", "redis", "mongo"}

// Open creates the backend named by cfg.Backend. An empty backend is memory.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Path)
	case "redis":
		return NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	case "mongo":
		return NewMongoStore(ctx, MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	}
	return nil, errs.New(errs.ErrCodeInvalidInput, "unknown store backend %q", cfg.Backend)
}

func checkKey(key string) error { return errs.ValidateKey(key) }

func notFound(key string) error {
	return errs.Wrap(errs.ErrCodeNotFound, ErrNotFound, "no saved state for %q", key)
}

func storageErr(op string, err error) error {
	return errs.Wrap(errs.ErrCodeStorage, fmt.Errorf("%s: %w", op, err), "storage %s failed", op)
}
