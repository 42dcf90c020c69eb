package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/flowdot/pkg/workflow"
)

type dependencySpec struct {
	Source string `json:"source" yaml:"source" toml:"source"`
	Target string `json:"target" yaml:"target" toml:"target"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Kind   string `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`
	ID     string `json:"id" yaml:"id" toml:"id"`
}

// ReadDependencies decodes a dependency map from r.
func ReadDependencies(r io.Reader, f Format) (workflow.DependencyMap, error) {
	var data map[string][]dependencySpec
	if err := decode(r, f, &data); err != nil {
		return nil, err
	}
	deps := make(workflow.DependencyMap, len(data))
	for owner, specs := range data {
		list := make([]workflow.Dependency, len(specs))
		for i, s := range specs {
			list[i] = workflow.Dependency{
				Source: s.Source,
				Target: s.Target,
				Label:  s.Label,
				Kind:   s.Kind,
				ID:     s.ID,
			}
		}
		deps[owner] = list
	}
	return deps, nil
}

// ImportDependencies reads the dependency file at path.
func ImportDependencies(path string) (workflow.DependencyMap, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return ReadDependencies(file, f)
}
