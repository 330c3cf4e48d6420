// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"sort"

	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// DependencyGraph is the component dependency graph of one analysis run.
//
// Thread Safety: Read-only after BuildGraph returns. Safe for concurrent use.
type DependencyGraph struct {
	nodes     map[string]*Node
	nodeOrder []string
	edges     []*Edge
	unmatched []UnmatchedTarget
}

// BuildGraph creates the dependency graph for a component snapshot.
//
// Description:
//
//	Creates one node per component and one edge per dependency whose
//	TargetType matches a component, either by qualified ID or by class name.
//	A qualified ID match wins. Among class-name matches, candidates in the
//	requester's package win; otherwise every class-name match gets an edge.
//	Dependencies that match nothing are recorded as unmatched targets.
//
//	Components sharing an ID collapse into one node; the dependencies of
//	every duplicate still contribute edges. The analyzer service never
//	hits this path because facts validation rejects duplicate IDs first;
//	it only applies to callers building graphs from unvalidated facts.
//
// Inputs:
//
//	components - The component facts. May be nil or empty.
//
// Outputs:
//
//	*DependencyGraph - The graph. Never nil.
func BuildGraph(components []model.Component) *DependencyGraph {
	g := &DependencyGraph{
		nodes: make(map[string]*Node, len(components)),
	}

	byClass := make(map[string][]*Node)
	for _, c := range components {
		id := c.ID()
		if id == "" {
			continue
		}
		if _, exists := g.nodes[id]; exists {
			continue
		}
		n := &Node{
			ID:          id,
			Label:       c.ClassName,
			Type:        c.Type(),
			PackageName: c.PackageName,
		}
		g.nodes[id] = n
		g.nodeOrder = append(g.nodeOrder, id)
		byClass[c.ClassName] = append(byClass[c.ClassName], n)
	}
	sort.Strings(g.nodeOrder)

	for _, c := range components {
		from, ok := g.nodes[c.ID()]
		if !ok {
			continue
		}
		for _, dep := range c.Dependencies {
			targets := g.resolveTargets(dep.TargetType, c.PackageName, byClass)
			if len(targets) == 0 {
				g.unmatched = append(g.unmatched, UnmatchedTarget{
					FromID:       from.ID,
					TargetType:   dep.TargetType,
					PropertyName: dep.PropertyName,
				})
				continue
			}
			et := edgeTypeFor(dep)
			for _, to := range targets {
				e := &Edge{
					FromID: from.ID,
					ToID:   to.ID,
					Type:   et,
					Label:  dep.PropertyName,
				}
				from.Outgoing = append(from.Outgoing, e)
				to.Incoming = append(to.Incoming, e)
				g.edges = append(g.edges, e)
			}
		}
	}

	return g
}

// resolveTargets finds the nodes a dependency target refers to.
func (g *DependencyGraph) resolveTargets(targetType, requesterPkg string, byClass map[string][]*Node) []*Node {
	if targetType == "" {
		return nil
	}
	if n, ok := g.nodes[targetType]; ok {
		return []*Node{n}
	}

	candidates := byClass[targetType]
	if len(candidates) <= 1 {
		return candidates
	}

	samePkg := make([]*Node, 0, 1)
	for _, n := range candidates {
		if n.PackageName == requesterPkg {
			samePkg = append(samePkg, n)
		}
	}
	if len(samePkg) > 0 {
		return samePkg
	}
	return candidates
}

// Node returns the node with the given ID.
func (g *DependencyGraph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes sorted by ID.
func (g *DependencyGraph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *DependencyGraph) Edges() []*Edge {
	out := make([]*Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Unmatched returns the dependencies whose targets matched no component.
func (g *DependencyGraph) Unmatched() []UnmatchedTarget {
	out := make([]UnmatchedTarget, len(g.unmatched))
	copy(out, g.unmatched)
	return out
}

// UnresolvedTargets returns the number of dependencies that produced no edge.
func (g *DependencyGraph) UnresolvedTargets() int {
	return len(g.unmatched)
}

// NodeCount returns the number of nodes.
func (g *DependencyGraph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *DependencyGraph) EdgeCount() int {
	return len(g.edges)
}

// Successors returns the distinct IDs the node depends on, sorted.
//
// Returns ErrNodeNotFound for unknown IDs.
func (g *DependencyGraph) Successors(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return distinctSorted(n.Outgoing, func(e *Edge) string { return e.ToID }), nil
}

// Predecessors returns the distinct IDs that depend on the node, sorted.
//
// Returns ErrNodeNotFound for unknown IDs.
func (g *DependencyGraph) Predecessors(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return distinctSorted(n.Incoming, func(e *Edge) string { return e.FromID }), nil
}

// HasEdge reports whether at least one edge runs from one node to another.
func (g *DependencyGraph) HasEdge(from, to string) bool {
	n, ok := g.nodes[from]
	if !ok {
		return false
	}
	for _, e := range n.Outgoing {
		if e.ToID == to {
			return true
		}
	}
	return false
}

// Stats returns the graph size summary.
func (g *DependencyGraph) Stats() Stats {
	lazy := 0
	for _, e := range g.edges {
		if e.Type.IsLazy() {
			lazy++
		}
	}
	return Stats{
		NodeCount:         len(g.nodes),
		EdgeCount:         len(g.edges),
		UnresolvedTargets: len(g.unmatched),
		LazyEdgeCount:     lazy,
	}
}

func distinctSorted(edges []*Edge, key func(*Edge) string) []string {
	seen := make(map[string]bool, len(edges))
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		k := key(e)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
