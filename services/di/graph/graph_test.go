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
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// =============================================================================
// Test Fixtures
// =============================================================================

// comp builds a component in package "app" depending on the given classes.
func comp(name string, deps ...string) model.Component {
	c := model.Component{ClassName: name, PackageName: "app"}
	for _, d := range deps {
		c.Dependencies = append(c.Dependencies, model.Dependency{
			PropertyName: "dep" + d,
			TargetType:   d,
		})
	}
	return c
}

// chain builds n components where component i depends on i+1 and the last
// depends on the first when closed is true.
func chain(n int, closed bool) []model.Component {
	out := make([]model.Component, 0, n)
	for i := 0; i < n; i++ {
		next := fmt.Sprintf("C%03d", i+1)
		if i == n-1 {
			if !closed {
				out = append(out, comp(fmt.Sprintf("C%03d", i)))
				continue
			}
			next = "C000"
		}
		out = append(out, comp(fmt.Sprintf("C%03d", i), next))
	}
	return out
}

// =============================================================================
// BuildGraph
// =============================================================================

func TestBuildGraph_Empty(t *testing.T) {
	for _, in := range [][]model.Component{nil, {}} {
		g := BuildGraph(in)
		if g.NodeCount() != 0 || g.EdgeCount() != 0 {
			t.Errorf("expected empty graph, got %d nodes %d edges", g.NodeCount(), g.EdgeCount())
		}
		if g.HasCycles() {
			t.Error("empty graph should have no cycles")
		}
		if cycles := g.FindCycles(); cycles == nil || len(cycles) != 0 {
			t.Errorf("expected empty non-nil cycles, got %v", cycles)
		}
	}
}

func TestBuildGraph_NodesAndEdges(t *testing.T) {
	g := BuildGraph([]model.Component{
		comp("A", "B", "Missing"),
		comp("B"),
	})

	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("expected 1 edge, got %d", g.EdgeCount())
	}
	if !g.HasEdge("app.A", "app.B") {
		t.Error("expected edge app.A -> app.B")
	}
	if g.HasEdge("app.B", "app.A") {
		t.Error("unexpected edge app.B -> app.A")
	}
	if g.UnresolvedTargets() != 1 {
		t.Errorf("expected 1 unresolved target, got %d", g.UnresolvedTargets())
	}
	um := g.Unmatched()
	if um[0].TargetType != "Missing" || um[0].FromID != "app.A" {
		t.Errorf("unexpected unmatched target %+v", um[0])
	}

	n, ok := g.Node("app.A")
	if !ok {
		t.Fatal("node app.A not found")
	}
	if n.Type != model.ComponentTypeConsumer {
		t.Errorf("expected CONSUMER, got %s", n.Type)
	}
	if n.Label != "A" {
		t.Errorf("expected label A, got %s", n.Label)
	}
}

func TestBuildGraph_QualifiedTargetAndPackagePreference(t *testing.T) {
	g := BuildGraph([]model.Component{
		{ClassName: "Repo", PackageName: "a"},
		{ClassName: "Repo", PackageName: "b"},
		{ClassName: "Svc", PackageName: "a", Dependencies: []model.Dependency{
			{PropertyName: "repo", TargetType: "Repo"},
		}},
		{ClassName: "Other", PackageName: "c", Dependencies: []model.Dependency{
			{PropertyName: "repo", TargetType: "Repo"},
			{PropertyName: "exact", TargetType: "b.Repo"},
		}},
	})

	succ, err := g.Successors("a.Svc")
	if err != nil {
		t.Fatalf("Successors: %v", err)
	}
	if !reflect.DeepEqual(succ, []string{"a.Repo"}) {
		t.Errorf("same-package candidate should win, got %v", succ)
	}

	succ, err = g.Successors("c.Other")
	if err != nil {
		t.Fatalf("Successors: %v", err)
	}
	if !reflect.DeepEqual(succ, []string{"a.Repo", "b.Repo"}) {
		t.Errorf("expected edges to every class-name match, got %v", succ)
	}

	pred, err := g.Predecessors("b.Repo")
	if err != nil {
		t.Fatalf("Predecessors: %v", err)
	}
	if !reflect.DeepEqual(pred, []string{"c.Other"}) {
		t.Errorf("unexpected predecessors %v", pred)
	}
}

func TestBuildGraph_DuplicateIDsCollapse(t *testing.T) {
	g := BuildGraph([]model.Component{comp("A", "B"), comp("A", "C"), comp("B"), comp("C")})

	if g.NodeCount() != 3 {
		t.Fatalf("expected 3 nodes, got %d", g.NodeCount())
	}
	succ, err := g.Successors("app.A")
	if err != nil {
		t.Fatalf("Successors: %v", err)
	}
	if !reflect.DeepEqual(succ, []string{"app.B", "app.C"}) {
		t.Errorf("expected both duplicates' edges, got %v", succ)
	}
}

func TestBuildGraph_UnknownNode(t *testing.T) {
	g := BuildGraph([]model.Component{comp("A")})
	if _, err := g.Successors("nope"); err != ErrNodeNotFound {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	if _, err := g.Predecessors("nope"); err != ErrNodeNotFound {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestBuildGraph_EdgeTypes(t *testing.T) {
	g := BuildGraph([]model.Component{
		{ClassName: "A", Dependencies: []model.Dependency{
			{PropertyName: "f", TargetType: "B", IsFactory: true, IsSingleton: true},
			{PropertyName: "l", TargetType: "B", IsLoadable: true},
			{PropertyName: "s", TargetType: "B", IsSingleton: true},
			{PropertyName: "d", TargetType: "B"},
		}},
		{ClassName: "B"},
	})

	want := []EdgeType{EdgeTypeFactory, EdgeTypeLoadable, EdgeTypeSingleton, EdgeTypeDependency}
	edges := g.Edges()
	if len(edges) != len(want) {
		t.Fatalf("expected %d edges, got %d", len(want), len(edges))
	}
	for i, e := range edges {
		if e.Type != want[i] {
			t.Errorf("edge %d (%s): expected %s, got %s", i, e.Label, want[i], e.Type)
		}
	}
	if s := g.Stats(); s.LazyEdgeCount != 2 {
		t.Errorf("expected 2 lazy edges, got %d", s.LazyEdgeCount)
	}
}

func TestEdgeType_TextRoundTrip(t *testing.T) {
	data, err := json.Marshal(Edge{FromID: "A", ToID: "B", Type: EdgeTypeLoadable})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var e Edge
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Type != EdgeTypeLoadable {
		t.Errorf("expected loadable, got %s", e.Type)
	}

	var bad EdgeType
	if err := bad.UnmarshalText([]byte("teleport")); err == nil {
		t.Error("expected error for unknown edge type")
	}
}

// =============================================================================
// Cycles
// =============================================================================

func TestFindCycles_Acyclic(t *testing.T) {
	tests := []struct {
		name  string
		input []model.Component
	}{
		{"single", []model.Component{comp("A")}},
		{"chain", chain(10, false)},
		{"diamond", []model.Component{
			comp("A", "B", "C"), comp("B", "D"), comp("C", "D"), comp("D"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := BuildGraph(tt.input)
			if g.HasCycles() {
				t.Error("expected no cycles")
			}
			if cycles := g.FindCycles(); len(cycles) != 0 {
				t.Errorf("expected no cycles, got %v", cycles)
			}
			if r := g.CycleReport(); r.TotalCycles != 0 || r.Longest != nil || r.Shortest != nil {
				t.Errorf("unexpected report %+v", r)
			}
		})
	}
}

func TestFindCycles_MutualPair(t *testing.T) {
	g := BuildGraph([]model.Component{comp("A", "B"), comp("B", "A")})

	cycles := g.FindCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if !reflect.DeepEqual(cycles[0].Nodes, []string{"app.A", "app.B"}) {
		t.Errorf("unexpected cycle path %v", cycles[0].Nodes)
	}
	if got := cycles[0].Path(); got != "app.A -> app.B -> app.A" {
		t.Errorf("unexpected rendered path %q", got)
	}
}

func TestFindCycles_FiveNodeRing(t *testing.T) {
	g := BuildGraph([]model.Component{
		comp("A", "B"), comp("B", "C"), comp("C", "D"), comp("D", "E"), comp("E", "A"),
	})

	cycles := g.FindCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if cycles[0].Length() != 5 {
		t.Errorf("expected length 5, got %d", cycles[0].Length())
	}
	if cycles[0].Nodes[0] != "app.A" {
		t.Errorf("cycle should start at lexicographically first node, got %s", cycles[0].Nodes[0])
	}
}

func TestFindCycles_SelfLoop(t *testing.T) {
	g := BuildGraph([]model.Component{comp("A", "A"), comp("B")})

	if !g.HasCycles() {
		t.Fatal("expected self-loop to be a cycle")
	}
	cycles := g.FindCycles()
	if len(cycles) != 1 || !cycles[0].IsSelfLoop() {
		t.Fatalf("expected one self-loop, got %v", cycles)
	}
	if cycles[0].Path() != "app.A -> app.A" {
		t.Errorf("unexpected path %q", cycles[0].Path())
	}
}

func TestFindCycles_ShortestWalkInsideSCC(t *testing.T) {
	// A -> B -> C -> D -> A plus a chord C -> A: shortest walk is A B C.
	g := BuildGraph([]model.Component{
		comp("A", "B"), comp("B", "C"), comp("C", "D", "A"), comp("D", "A"),
	})

	cycles := g.FindCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if !reflect.DeepEqual(cycles[0].Nodes, []string{"app.A", "app.B", "app.C"}) {
		t.Errorf("unexpected representative path %v", cycles[0].Nodes)
	}
	if cycles[0].SCCSize != 4 {
		t.Errorf("expected SCC size 4, got %d", cycles[0].SCCSize)
	}
}

func TestFindCycles_FigureEightKeepsAllMembers(t *testing.T) {
	// A -> {B, C}, B -> A, C -> A: the walk is A B but C is on a cycle too.
	g := BuildGraph([]model.Component{
		comp("A", "B", "C"), comp("B", "A"), comp("C", "A"),
	})

	cycles := g.FindCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if !reflect.DeepEqual(cycles[0].Nodes, []string{"app.A", "app.B"}) {
		t.Errorf("unexpected representative path %v", cycles[0].Nodes)
	}
	want := []string{"app.A", "app.B", "app.C"}
	if !reflect.DeepEqual(cycles[0].Members, want) {
		t.Errorf("expected members %v, got %v", want, cycles[0].Members)
	}
	if r := g.CycleReport(); !reflect.DeepEqual(r.NodesInCycles, want) {
		t.Errorf("expected NodesInCycles %v, got %v", want, r.NodesInCycles)
	}
}

func TestFindCycles_OrderedLongestFirst(t *testing.T) {
	g := BuildGraph([]model.Component{
		comp("X", "Y"), comp("Y", "X"),
		comp("A", "B"), comp("B", "C"), comp("C", "A"),
		comp("S", "S"),
	})

	cycles := g.FindCycles()
	lengths := make([]int, 0, len(cycles))
	for _, c := range cycles {
		lengths = append(lengths, c.Length())
	}
	if !reflect.DeepEqual(lengths, []int{3, 2, 1}) {
		t.Errorf("expected lengths [3 2 1], got %v", lengths)
	}

	r := g.CycleReport()
	if r.TotalCycles != 3 {
		t.Errorf("expected 3 cycles, got %d", r.TotalCycles)
	}
	if r.Longest.Length() != 3 || r.Shortest.Length() != 1 {
		t.Errorf("unexpected longest/shortest %d/%d", r.Longest.Length(), r.Shortest.Length())
	}
	want := []string{"app.A", "app.B", "app.C", "app.S", "app.X", "app.Y"}
	if !reflect.DeepEqual(r.NodesInCycles, want) {
		t.Errorf("expected %v, got %v", want, r.NodesInCycles)
	}
}

func TestFindCycles_LazyEdges(t *testing.T) {
	g := BuildGraph([]model.Component{
		{ClassName: "A", Dependencies: []model.Dependency{{PropertyName: "b", TargetType: "B", IsFactory: true}}},
		{ClassName: "B", Dependencies: []model.Dependency{{PropertyName: "a", TargetType: "A"}}},
	})

	cycles := g.FindCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
	if cycles[0].LazyEdges != 1 {
		t.Errorf("expected 1 lazy edge, got %d", cycles[0].LazyEdges)
	}
}

func TestFindCycles_DeepChainNoOverflow(t *testing.T) {
	g := BuildGraph(chain(20000, true))

	cycles := g.FindCycles()
	if len(cycles) != 1 || cycles[0].Length() != 20000 {
		t.Fatalf("expected one cycle of 20000, got %d cycles", len(cycles))
	}
}

func TestFindCycles_Deterministic(t *testing.T) {
	input := []model.Component{
		comp("X", "Y"), comp("Y", "X"),
		comp("A", "B"), comp("B", "C"), comp("C", "A"),
	}
	first := BuildGraph(input).FindCycles()
	for i := 0; i < 10; i++ {
		if got := BuildGraph(input).FindCycles(); !reflect.DeepEqual(first, got) {
			t.Fatalf("run %d differs: %v vs %v", i, first, got)
		}
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkFindCycles(b *testing.B) {
	g := BuildGraph(chain(1000, true))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.FindCycles()
	}
}
