package cache

// Key prefixes, one per kind of cached artifact.
const (
	prefixRender       = "render"
	prefixDependencies = "deps"
)

// RenderKeyOpts holds the render options that change the DOT output of a
// workflow. Hashes are produced with [HashJSON].
type RenderKeyOpts struct {
	StatesHash    string `json:"states,omitempty"`
	PaletteHash   string `json:"palette,omitempty"`
	ClustersFirst bool   `json:"clusters_first,omitempty"`
	Tooltips      bool   `json:"tooltips,omitempty"`
	MaxDepth      int    `json:"max_depth,omitempty"`
}

// DependencyKeyOpts holds the options that change a cross-workflow graph.
type DependencyKeyOpts struct {
	PaletteHash string `json:"palette,omitempty"`
	Label       string `json:"label,omitempty"`
}

// Keyer derives cache keys from content hashes and options.
type Keyer interface {
	// RenderKey returns the key of a rendered workflow graph.
	RenderKey(workflowHash string, opts RenderKeyOpts) string
	// DependenciesKey returns the key of a rendered cross-workflow graph.
	DependenciesKey(depsHash string, opts DependencyKeyOpts) string
}

// DefaultKeyer hashes the content hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RenderKey returns "render:<sha256>".
func (DefaultKeyer) RenderKey(workflowHash string, opts RenderKeyOpts) string {
	return hashKey(prefixRender, workflowHash, opts)
}

// DependenciesKey returns "deps:<sha256>".
func (DefaultKeyer) DependenciesKey(depsHash string, opts DependencyKeyOpts) string {
	return hashKey(prefixDependencies, depsHash, opts)
}
