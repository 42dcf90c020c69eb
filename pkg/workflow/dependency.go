package workflow

// Coupling kinds recognised by the default palette.
const (
	CouplingSensor  = "sensor"
	CouplingTrigger = "trigger"
	CouplingAsset   = "asset"
)

// Dependency records one workflow depending on another through a named
// external mechanism instance (e.g. a sensor task waiting on another workflow).
type Dependency struct {
	Source string `json:"source"` // Upstream workflow ID
	Target string `json:"target"` // Downstream workflow ID
	Label  string `json:"label"`  // Display label of the coupling node
	Kind   string `json:"kind"`   // Coupling kind, e.g. "sensor"
	ID     string `json:"id"`     // Coupling instance ID
}

// NodeLabel returns Label, or ID when no label is set.
func (d Dependency) NodeLabel() string {
	if d.Label != "" {
		return d.Label
	}
	return d.ID
}

// DependencyMap groups dependency records by the workflow that declares them.
type DependencyMap map[string][]Dependency
