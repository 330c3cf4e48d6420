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

import "sort"

// =============================================================================
// Cycle Discovery
// =============================================================================

// HasCycles reports whether the graph contains at least one cycle.
//
// Thread Safety: Safe for concurrent use.
func (g *DependencyGraph) HasCycles() bool {
	for _, scc := range g.stronglyConnected() {
		if len(scc) > 1 || g.HasEdge(scc[0], scc[0]) {
			return true
		}
	}
	return false
}

// FindCycles returns one representative cycle per cyclic SCC.
//
// Description:
//
//	Uses Tarjan's strongly connected components algorithm. Any SCC with
//	two or more nodes, or a single node with a self-loop, is a cycle.
//	For each SCC the shortest closed walk through its lexicographically
//	first node is reconstructed so the cycle has a stable ordered path.
//	Members always lists the whole SCC, including nodes the walk skips.
//	Self-loops inside a larger SCC are not reported separately.
//
//	Time complexity: O(V + E)
//	Space complexity: O(V)
//
// Outputs:
//
//	[]Cycle - Cycles sorted by length descending, then by first node.
//	          Empty (not nil) for acyclic graphs.
//
// Thread Safety: Safe for concurrent use.
func (g *DependencyGraph) FindCycles() []Cycle {
	cycles := make([]Cycle, 0)
	for _, scc := range g.stronglyConnected() {
		switch {
		case len(scc) > 1:
			cycles = append(cycles, g.representativeCycle(scc))
		case g.HasEdge(scc[0], scc[0]):
			cycles = append(cycles, Cycle{
				Nodes:     []string{scc[0]},
				Members:   []string{scc[0]},
				SCCSize:   1,
				LazyEdges: g.lazyHop(scc[0], scc[0]),
			})
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		if cycles[i].Length() != cycles[j].Length() {
			return cycles[i].Length() > cycles[j].Length()
		}
		return cycles[i].Nodes[0] < cycles[j].Nodes[0]
	})
	return cycles
}

// CycleReport aggregates FindCycles.
//
// Thread Safety: Safe for concurrent use.
func (g *DependencyGraph) CycleReport() CycleReport {
	cycles := g.FindCycles()
	report := CycleReport{
		TotalCycles:   len(cycles),
		NodesInCycles: make([]string, 0),
	}
	if len(cycles) == 0 {
		return report
	}

	// FindCycles is sorted longest first, ties by first node.
	longest := cycles[0]
	shortest := cycles[len(cycles)-1]
	for _, c := range cycles {
		if c.Length() == shortest.Length() {
			shortest = c
			break
		}
	}
	report.Longest = &longest
	report.Shortest = &shortest

	seen := make(map[string]bool)
	for _, c := range cycles {
		for _, id := range c.Members {
			if !seen[id] {
				seen[id] = true
				report.NodesInCycles = append(report.NodesInCycles, id)
			}
		}
	}
	sort.Strings(report.NodesInCycles)
	return report
}

// stronglyConnected runs Tarjan's algorithm with an explicit call stack
// so deep dependency chains cannot overflow the goroutine stack.
//
// Every SCC is returned, including singletons, each sorted by ID.
func (g *DependencyGraph) stronglyConnected() [][]string {
	index := 0
	nodeIndex := make(map[string]int, len(g.nodes))
	nodeLowLink := make(map[string]int, len(g.nodes))
	onStack := make(map[string]bool)
	sccStack := make([]string, 0)
	sccs := make([][]string, 0)

	// callFrame replaces a recursive strongconnect invocation.
	type callFrame struct {
		nodeID    string
		edgeIndex int    // next index into Outgoing
		phase     int    // 0=init, 1=process edges, 2=post-child, 3=finalize
		childID   string // child we just returned from (phase 2)
	}

	strongConnect := func(startID string) {
		callStack := []callFrame{{nodeID: startID}}

		for len(callStack) > 0 {
			frame := &callStack[len(callStack)-1]

			switch frame.phase {
			case 0:
				nodeIndex[frame.nodeID] = index
				nodeLowLink[frame.nodeID] = index
				index++
				sccStack = append(sccStack, frame.nodeID)
				onStack[frame.nodeID] = true
				frame.phase = 1

			case 1:
				node := g.nodes[frame.nodeID]
				pushed := false
				for frame.edgeIndex < len(node.Outgoing) {
					edge := node.Outgoing[frame.edgeIndex]
					frame.edgeIndex++

					if _, visited := nodeIndex[edge.ToID]; !visited {
						frame.phase = 2
						frame.childID = edge.ToID
						callStack = append(callStack, callFrame{nodeID: edge.ToID})
						pushed = true
						break
					} else if onStack[edge.ToID] {
						if nodeIndex[edge.ToID] < nodeLowLink[frame.nodeID] {
							nodeLowLink[frame.nodeID] = nodeIndex[edge.ToID]
						}
					}
				}
				if !pushed {
					frame.phase = 3
				}

			case 2:
				if nodeLowLink[frame.childID] < nodeLowLink[frame.nodeID] {
					nodeLowLink[frame.nodeID] = nodeLowLink[frame.childID]
				}
				frame.phase = 1

			case 3:
				if nodeLowLink[frame.nodeID] == nodeIndex[frame.nodeID] {
					scc := make([]string, 0)
					for {
						w := sccStack[len(sccStack)-1]
						sccStack = sccStack[:len(sccStack)-1]
						onStack[w] = false
						scc = append(scc, w)
						if w == frame.nodeID {
							break
						}
					}
					sort.Strings(scc)
					sccs = append(sccs, scc)
				}
				callStack = callStack[:len(callStack)-1]
			}
		}
	}

	for _, id := range g.nodeOrder {
		if _, visited := nodeIndex[id]; !visited {
			strongConnect(id)
		}
	}
	return sccs
}

// representativeCycle finds the shortest closed walk through the first
// node of an SCC using a BFS restricted to the SCC's members.
func (g *DependencyGraph) representativeCycle(scc []string) Cycle {
	members := make(map[string]bool, len(scc))
	for _, id := range scc {
		members[id] = true
	}
	start := scc[0]

	parent := map[string]string{start: ""}
	queue := []string{start}
	last := ""

	for len(queue) > 0 && last == "" {
		cur := queue[0]
		queue = queue[1:]
		succ, _ := g.Successors(cur)
		for _, next := range succ {
			if next == cur || !members[next] {
				continue
			}
			if next == start {
				last = cur
				break
			}
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = cur
			queue = append(queue, next)
		}
	}

	path := make([]string, 0, len(scc))
	for cur := last; cur != ""; cur = parent[cur] {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	if len(path) == 0 {
		// Unreachable for a true SCC; fall back to membership order.
		path = append(path, scc...)
	}

	lazy := 0
	for i, id := range path {
		lazy += g.lazyHop(id, path[(i+1)%len(path)])
	}

	return Cycle{
		Nodes:     path,
		Members:   append([]string(nil), scc...),
		SCCSize:   len(scc),
		LazyEdges: lazy,
	}
}

// lazyHop returns 1 when every edge from one node to another is lazy.
func (g *DependencyGraph) lazyHop(from, to string) int {
	n, ok := g.nodes[from]
	if !ok {
		return 0
	}
	found := false
	for _, e := range n.Outgoing {
		if e.ToID != to {
			continue
		}
		if !e.Type.IsLazy() {
			return 0
		}
		found = true
	}
	if found {
		return 1
	}
	return 0
}
