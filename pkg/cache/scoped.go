package cache

// ScopedKeyer wraps a Keyer with a prefix so runs against different
// libraries can share one backend without colliding. The serve command
// scopes its document cache by library name; a CI farm can scope by
// branch or PDK release the same way.
//
// Example:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "lib:sky130_fd_sc_hd:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// CellKey generates a prefixed key for one rendered cell group.
func (k *ScopedKeyer) CellKey(contentHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.CellKey(contentHash, opts)
}

// DocumentKey generates a prefixed key for an assembled corner document.
func (k *ScopedKeyer) DocumentKey(contentHash string, opts DocumentKeyOpts) string {
	return k.prefix + k.inner.DocumentKey(contentHash, opts)
}
