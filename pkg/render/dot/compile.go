package dot

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// Compiled is DOT text parsed by Graphviz, ready to hand to a consumer that
// lays out or renders graphs. Close releases the Graphviz resources.
type Compiled struct {
	Graph *cgraph.Graph
	gv    *graphviz.Graphviz
}

// Close releases the parsed graph and its Graphviz instance.
func (c *Compiled) Close() error {
	var errs []error
	if c.Graph != nil {
		errs = append(errs, c.Graph.Close())
	}
	if c.gv != nil {
		errs = append(errs, c.gv.Close())
	}
	return errors.Join(errs...)
}

// Compile parses DOT text with Graphviz. The caller must Close the result.
func Compile(ctx context.Context, src string) (*Compiled, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	g, err := graphviz.ParseBytes([]byte(src))
	if err != nil {
		gv.Close()
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	return &Compiled{Graph: g, gv: gv}, nil
}

// Validate reports whether src is DOT text Graphviz accepts.
func Validate(ctx context.Context, src string) error {
	c, err := Compile(ctx, src)
	if err != nil {
		return err
	}
	return c.Close()
}
