package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when several servers, or a server and the test suite,
// share one Redis.
//
// Example usage:
//
//	// Keys for the staging deployment
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// CanonKey generates a prefixed key for canonical labelings.
func (k *ScopedKeyer) CanonKey(graphHash string, opts CanonKeyOpts) string {
	return k.prefix + k.inner.CanonKey(graphHash, opts)
}

// RefineKey generates a prefixed key for refinements.
func (k *ScopedKeyer) RefineKey(graphHash string, opts RefineKeyOpts) string {
	return k.prefix + k.inner.RefineKey(graphHash, opts)
}
