package symbols

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/funvibe/objmodel/internal/typesystem"
)

type typeNode struct {
	id   int64
	name string
}

func (n typeNode) ID() int64 {
	return n.id
}

// Order sorts names so that each one follows all of its dependencies.
// Names are compared case-insensitively. Dependencies outside of names are
// assumed to be satisfied already and are ignored. Ties keep the input order.
func Order(names []string, deps func(name string) []string) ([]string, error) {
	g := simple.NewDirectedGraph()
	nodes := make(map[string]typeNode, len(names))

	for i, name := range names {
		key := typesystem.FoldName(name)
		if _, dup := nodes[key]; dup {
			return nil, fmt.Errorf("%w: type %s declared twice", typesystem.ErrDuplicateMember, name)
		}
		n := typeNode{id: int64(i), name: name}
		nodes[key] = n
		g.AddNode(n)
	}

	for _, name := range names {
		to := nodes[typesystem.FoldName(name)]
		for _, dep := range deps(name) {
			from, ok := nodes[typesystem.FoldName(dep)]
			if !ok {
				continue
			}
			if from.id == to.id {
				return nil, fmt.Errorf("inheritance cycle: %s depends on itself", name)
			}
			g.SetEdge(g.NewEdge(from, to))
		}
	}

	sorted, err := topo.SortStabilized(g, byID)
	if err != nil {
		if cycles, ok := err.(topo.Unorderable); ok {
			return nil, fmt.Errorf("inheritance cycle: %s", describeCycles(cycles))
		}
		return nil, err
	}

	out := make([]string, len(sorted))
	for i, n := range sorted {
		out[i] = n.(typeNode).name
	}
	return out, nil
}

func byID(nodes []graph.Node) {
	slices.SortFunc(nodes, func(a, b graph.Node) int {
		switch {
		case a.ID() < b.ID():
			return -1
		case a.ID() > b.ID():
			return 1
		}
		return 0
	})
}

func describeCycles(cycles topo.Unorderable) string {
	var parts []string
	for _, component := range cycles {
		var names []string
		for _, n := range component {
			names = append(names, n.(typeNode).name)
		}
		slices.Sort(names)
		parts = append(parts, strings.Join(names, " <-> "))
	}
	return strings.Join(parts, "; ")
}

// RegisterAll seals and registers a batch of descriptors in dependency order,
// whatever order they are passed in.
func (r *Registry) RegisterAll(types []*typesystem.TypeDescriptor) error {
	byName := make(map[string]*typesystem.TypeDescriptor, len(types))
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name()
		byName[typesystem.FoldName(t.Name())] = t
	}

	ordered, err := Order(names, func(name string) []string {
		t := byName[typesystem.FoldName(name)]
		var deps []string
		if t.Base() != nil {
			deps = append(deps, t.Base().Name())
		}
		for _, i := range t.Interfaces() {
			deps = append(deps, i.Name())
		}
		return deps
	})
	if err != nil {
		return err
	}

	for _, name := range ordered {
		t := byName[typesystem.FoldName(name)]
		if err := t.Seal(); err != nil {
			return err
		}
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
