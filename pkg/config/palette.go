package config

import (
	"maps"
	"slices"
	"strings"

	apperrors "github.com/matzehuels/flowdot/pkg/errors"
	"github.com/matzehuels/flowdot/pkg/render/dot"
	"github.com/matzehuels/flowdot/pkg/workflow"
)

// PaletteConfig overrides parts of the default palette. Every field is
// optional; empty values keep the default.
type PaletteConfig struct {
	Default         dot.Style            `toml:"default"`
	Join            dot.Style            `toml:"join"`
	JoinSize        string               `toml:"join_size"`
	Cluster         dot.Style            `toml:"cluster"`
	Workflow        dot.Style            `toml:"workflow"`
	CouplingDefault dot.Style            `toml:"coupling_default"`
	States          map[string]dot.Style `toml:"states"`
	Couplings       map[string]dot.Style `toml:"couplings"`
}

// Palette returns the default palette with the overrides applied. State
// names are parsed with [workflow.ParseRunStatus]; unknown names are an
// error, since they could never match a task.
func (p PaletteConfig) Palette() (*dot.Palette, error) {
	states := make(map[workflow.RunStatus]dot.Style, len(p.States))
	for _, name := range slices.Sorted(maps.Keys(p.States)) {
		st, ok := workflow.ParseRunStatus(name)
		if !ok {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "palette.states: unknown run status %q", name)
		}
		states[st] = p.States[name]
	}
	couplings := make(map[string]dot.Style, len(p.Couplings))
	for kind, st := range p.Couplings {
		couplings[strings.ToLower(kind)] = st
	}
	return dot.DefaultPalette().Merge(&dot.Palette{
		Default:         p.Default,
		States:          states,
		Join:            p.Join,
		JoinSize:        p.JoinSize,
		Cluster:         p.Cluster,
		Workflow:        p.Workflow,
		Couplings:       couplings,
		CouplingDefault: p.CouplingDefault,
	}), nil
}
