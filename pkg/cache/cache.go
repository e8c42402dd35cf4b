// Package cache stores rendered snapshots so that capturing an unchanged
// preview does not start a browser again.
//
// [Cache] is a byte-oriented key/value store with TTLs. [FileCache] keeps
// entries on disk for the CLI and server; [NullCache] disables caching.
// [Keyer] derives content-addressed keys: the same preview HTML rendered at
// the same size always maps to the same key.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/sitecanvas/pkg/observability"
)

// Cache is a key/value store for rendered artifacts.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// SnapshotKeyOpts are the render parameters that distinguish snapshots of
// the same HTML.
type SnapshotKeyOpts struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale,omitempty"`
}

// OverlayKeyOpts distinguish overlay renders of the same canvas state.
type OverlayKeyOpts struct {
	Format string `json:"format"`
	Rulers bool   `json:"rulers,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// SnapshotKey keys a rasterized preview by the hash of its HTML.
	SnapshotKey(htmlHash string, opts SnapshotKeyOpts) string

	// OverlayKey keys a rendered overlay by the hash of the canvas state.
	OverlayKey(stateHash string, opts OverlayKeyOpts) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) SnapshotKey(htmlHash string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", htmlHash, opts)
}

func (DefaultKeyer) OverlayKey(stateHash string, opts OverlayKeyOpts) string {
	return hashKey("overlay", stateHash, opts)
}

// hooked reports hits, misses and writes to the registered cache hooks.
type hooked struct {
	Cache
	keyType string
}

// WithHooks wraps c so that every access is reported to
// [observability.Cache] under keyType.
func WithHooks(c Cache, keyType string) Cache {
	return &hooked{Cache: c, keyType: keyType}
}

func (h *hooked) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := h.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, h.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, h.keyType)
		}
	}
	return data, hit, err
}

func (h *hooked) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := h.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, h.keyType, len(data))
	return nil
}
