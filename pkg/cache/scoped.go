package cache

// ScopedKeyer prefixes every key of an inner Keyer, so deployments or
// releases sharing one backend never read each other's entries:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "stainedglass:v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or DefaultKeyer if inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// MosaicKey returns the prefixed mosaic key.
func (k *ScopedKeyer) MosaicKey(opts MosaicKeyOpts) string {
	return k.prefix + k.inner.MosaicKey(opts)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(mosaicHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(mosaicHash, opts)
}
