package cache

// ScopedKeyer wraps a Keyer with a prefix so that several projects can
// share one cache directory without sharing entries.
//
// Example usage:
//
//	projectKeyer := NewScopedKeyer(NewDefaultKeyer(), "project:landing:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SnapshotKey generates a prefixed snapshot key.
func (k *ScopedKeyer) SnapshotKey(htmlHash string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(htmlHash, opts)
}

// OverlayKey generates a prefixed overlay key.
func (k *ScopedKeyer) OverlayKey(stateHash string, opts OverlayKeyOpts) string {
	return k.prefix + k.inner.OverlayKey(stateHash, opts)
}
