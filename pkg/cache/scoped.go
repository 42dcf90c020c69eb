package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis instance without seeing each other's entries.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// RenderKey generates a prefixed key for rendered workflow graphs.
func (k *ScopedKeyer) RenderKey(workflowHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(workflowHash, opts)
}

// DependenciesKey generates a prefixed key for cross-workflow graphs.
func (k *ScopedKeyer) DependenciesKey(depsHash string, opts DependencyKeyOpts) string {
	return k.prefix + k.inner.DependenciesKey(depsHash, opts)
}
