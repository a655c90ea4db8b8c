// Package domain contains the core models of the unit loader: unit names, units,
// compiled artifacts and the reference graph between units.
package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Batch is a group of units that must be compiled together.
// Units are sorted ascending.
type Batch struct {
	Units []UnitName
	// Cyclic is set when the batch has more than one member.
	Cyclic bool
	// SelfReferential is set for a single unit that references itself.
	SelfReferential bool
}

// Contains reports whether name is a member of the batch.
func (b Batch) Contains(name UnitName) bool {
	return slices.Contains(b.Units, name)
}

// String lists the members of the batch, comma separated.
func (b Batch) String() string {
	return strings.Join(UnitNameStrings(b.Units), ", ")
}

// Graph is the reference graph over a closed set of units.
// An edge A -> B means A references B.
type Graph struct {
	units      map[UnitName]*Unit
	dependents map[UnitName][]UnitName
	order      []UnitName
}

// BuildGraph builds the reference graph for units.
// Every reference must name a unit in the input set.
func BuildGraph(units []*Unit, policy SelfReferencePolicy) (*Graph, error) {
	g := &Graph{
		units:      make(map[UnitName]*Unit, len(units)),
		dependents: make(map[UnitName][]UnitName),
		order:      make([]UnitName, 0, len(units)),
	}
	for _, u := range units {
		if _, exists := g.units[u.Name]; exists {
			return nil, zerr.With(zerr.Wrap(ErrUnitAlreadyExists, "duplicate unit"), "unit", u.Name.String())
		}
		g.units[u.Name] = u
		g.order = append(g.order, u.Name)
	}
	slices.SortFunc(g.order, UnitName.Compare)

	for _, name := range g.order {
		u := g.units[name]
		for _, ref := range u.References {
			if ref == name {
				if policy != SelfReferenceAllow {
					return nil, zerr.With(zerr.Wrap(ErrSelfReference, "self reference rejected"), "unit", name.String())
				}
				continue
			}
			if _, ok := g.units[ref]; !ok {
				err := zerr.With(zerr.Wrap(ErrUnknownReference, ref.String()), "reference", ref.String())
				return nil, zerr.With(err, "referenced_by", name.String())
			}
			g.dependents[ref] = append(g.dependents[ref], name)
		}
	}
	return g, nil
}

// Len returns the number of units in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// Units returns the unit names in ascending order.
func (g *Graph) Units() []UnitName {
	return slices.Clone(g.order)
}

// Unit returns the unit stored under name.
func (g *Graph) Unit(name UnitName) (*Unit, bool) {
	u, ok := g.units[name]
	return u, ok
}

// Dependencies returns the units that name references, sorted.
func (g *Graph) Dependencies(name UnitName) []UnitName {
	u, ok := g.units[name]
	if !ok {
		return nil
	}
	return slices.Clone(u.References)
}

// Dependents returns the units that reference name, sorted.
func (g *Graph) Dependents(name UnitName) []UnitName {
	return slices.Clone(g.dependents[name])
}

// StronglyConnectedComponents collapses the graph into batches using Tarjan's
// algorithm and returns them in dependency order: every batch's external
// references live in earlier batches. Among batches that are ready at the same
// time, the one with the lexically smallest member comes first.
func (g *Graph) StronglyConnectedComponents() []Batch {
	components := g.tarjan()

	componentOf := make(map[UnitName]int, len(g.order))
	for i, members := range components {
		for _, m := range members {
			componentOf[m] = i
		}
	}

	// Condense: count distinct external dependencies per component.
	pending := make([]int, len(components))
	consumers := make([][]int, len(components))
	for i, members := range components {
		seen := make(map[int]struct{})
		for _, m := range members {
			for _, ref := range g.units[m].References {
				j, ok := componentOf[ref]
				if !ok || j == i {
					continue
				}
				if _, dup := seen[j]; dup {
					continue
				}
				seen[j] = struct{}{}
				pending[i]++
				consumers[j] = append(consumers[j], i)
			}
		}
	}

	var ready []int
	for i := range components {
		if pending[i] == 0 {
			ready = append(ready, i)
		}
	}

	batches := make([]Batch, 0, len(components))
	for len(ready) > 0 {
		slices.SortFunc(ready, func(a, b int) int {
			return components[a][0].Compare(components[b][0])
		})
		next := ready[0]
		ready = ready[1:]

		members := components[next]
		batches = append(batches, Batch{
			Units:           slices.Clone(members),
			Cyclic:          len(members) > 1,
			SelfReferential: len(members) == 1 && g.units[members[0]].ReferencesSelf(),
		})
		for _, c := range consumers[next] {
			pending[c]--
			if pending[c] == 0 {
				ready = append(ready, c)
			}
		}
	}
	return batches
}

// tarjan returns the strongly connected components of the graph with their
// members sorted. Nodes are visited in ascending name order.
func (g *Graph) tarjan() [][]UnitName {
	var (
		index      int
		indices    = make(map[UnitName]int, len(g.order))
		lowlink    = make(map[UnitName]int, len(g.order))
		onStack    = make(map[UnitName]bool, len(g.order))
		stack      []UnitName
		components [][]UnitName
	)

	var connect func(v UnitName)
	connect = func(v UnitName) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.units[v].References {
			if _, known := g.units[w]; !known {
				continue
			}
			if _, visited := indices[w]; !visited {
				connect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] != indices[v] {
			return
		}
		var members []UnitName
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			members = append(members, w)
			if w == v {
				break
			}
		}
		slices.SortFunc(members, UnitName.Compare)
		components = append(components, members)
	}

	for _, v := range g.order {
		if _, visited := indices[v]; !visited {
			connect(v)
		}
	}
	return components
}

// CyclePath describes one reference cycle through a batch, e.g. "pkg1.B -> pkg2.A -> pkg1.B".
// It returns "" for a batch that is not a cycle.
func (g *Graph) CyclePath(b Batch) string {
	if len(b.Units) == 0 {
		return ""
	}
	start := b.Units[0]
	if !b.Cyclic {
		if b.SelfReferential {
			return start.String() + " -> " + start.String()
		}
		return ""
	}

	visited := make(map[UnitName]bool)
	var path []UnitName
	var walk func(v UnitName) bool
	walk = func(v UnitName) bool {
		visited[v] = true
		path = append(path, v)
		for _, w := range g.units[v].References {
			if !b.Contains(w) || w == v {
				continue
			}
			if w == start {
				path = append(path, w)
				return true
			}
			if !visited[w] && walk(w) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	if !walk(start) {
		return ""
	}
	return FormatCycle(path)
}

// FormatCycle joins a cycle path with arrows.
func FormatCycle(path []UnitName) string {
	return strings.Join(UnitNameStrings(path), " -> ")
}
