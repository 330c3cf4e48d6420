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
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// EdgeType defines how a dependency is injected.
type EdgeType int

const (
	// EdgeTypeUnknown indicates an unrecognized injection kind.
	EdgeTypeUnknown EdgeType = iota

	// EdgeTypeDependency is a plain eager injection.
	EdgeTypeDependency

	// EdgeTypeSingleton is an injection that expects a singleton instance.
	EdgeTypeSingleton

	// EdgeTypeFactory is an injection through a factory (lazy).
	EdgeTypeFactory

	// EdgeTypeLoadable is a lazily loaded injection.
	EdgeTypeLoadable
)

// edgeTypeNames maps EdgeType values to their string representations.
var edgeTypeNames = map[EdgeType]string{
	EdgeTypeUnknown:    "unknown",
	EdgeTypeDependency: "dependency",
	EdgeTypeSingleton:  "singleton",
	EdgeTypeFactory:    "factory",
	EdgeTypeLoadable:   "loadable",
}

// String returns the string representation of the EdgeType.
func (t EdgeType) String() string {
	if name, ok := edgeTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether t is a known, non-unknown edge type.
func (t EdgeType) Valid() bool {
	_, ok := edgeTypeNames[t]
	return ok && t != EdgeTypeUnknown
}

// IsLazy reports whether the edge defers construction of its target.
func (t EdgeType) IsLazy() bool {
	return t == EdgeTypeFactory || t == EdgeTypeLoadable
}

// MarshalText implements encoding.TextMarshaler.
func (t EdgeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EdgeType) UnmarshalText(text []byte) error {
	s := strings.ToLower(string(text))
	for k, v := range edgeTypeNames {
		if v == s {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidEdgeType, string(text))
}

// edgeTypeFor classifies a dependency. Lazy kinds take precedence over the
// singleton flag because they decide whether construction is deferred.
func edgeTypeFor(dep model.Dependency) EdgeType {
	switch {
	case dep.IsFactory:
		return EdgeTypeFactory
	case dep.IsLoadable:
		return EdgeTypeLoadable
	case dep.IsSingleton:
		return EdgeTypeSingleton
	default:
		return EdgeTypeDependency
	}
}

// Node is a component in the dependency graph.
type Node struct {
	// ID is the component ID (PackageName.ClassName).
	ID string `json:"id"`

	// Label is the simple class name.
	Label string `json:"label"`

	// Type is the derived component type.
	Type model.ComponentType `json:"type"`

	// PackageName is the declaring package. May be empty.
	PackageName string `json:"packageName,omitempty"`

	// Outgoing are edges to the node's dependencies, in declaration order.
	Outgoing []*Edge `json:"-"`

	// Incoming are edges from the node's dependents.
	Incoming []*Edge `json:"-"`
}

// Edge is a resolved dependency from one component to another.
type Edge struct {
	// FromID is the ID of the requesting component.
	FromID string `json:"from"`

	// ToID is the ID of the component satisfying the dependency.
	ToID string `json:"to"`

	// Type is the injection kind.
	Type EdgeType `json:"type"`

	// Label is the injected property name.
	Label string `json:"label"`
}

// UnmatchedTarget is a dependency whose target type matched no component.
type UnmatchedTarget struct {
	// FromID is the ID of the requesting component.
	FromID string `json:"from"`

	// TargetType is the requested type.
	TargetType string `json:"targetType"`

	// PropertyName is the injected property.
	PropertyName string `json:"propertyName"`
}

// Cycle is an ordered closed walk through a strongly connected component.
type Cycle struct {
	// Nodes are the component IDs in traversal order. The first node is
	// not repeated at the end.
	Nodes []string `json:"nodes"`

	// Members are every component ID of the strongly connected component,
	// sorted. A member may be absent from Nodes when the component holds
	// several overlapping cycles.
	Members []string `json:"members"`

	// SCCSize is the size of the strongly connected component the cycle
	// was reconstructed from.
	SCCSize int `json:"sccSize"`

	// LazyEdges counts hops along the cycle where every edge is lazy
	// (factory or loadable).
	LazyEdges int `json:"lazyEdges"`
}

// Length returns the number of nodes in the cycle.
func (c Cycle) Length() int {
	return len(c.Nodes)
}

// IsSelfLoop reports whether the cycle is a single node depending on itself.
func (c Cycle) IsSelfLoop() bool {
	return len(c.Nodes) == 1
}

// Path renders the closed walk, e.g. "A -> B -> A".
func (c Cycle) Path() string {
	if len(c.Nodes) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, id := range c.Nodes {
		sb.WriteString(id)
		sb.WriteString(" -> ")
	}
	sb.WriteString(c.Nodes[0])
	return sb.String()
}

// CycleReport aggregates the cycles of a graph.
type CycleReport struct {
	// TotalCycles is the number of cycles found.
	TotalCycles int `json:"totalCycles"`

	// Shortest is the cycle with the fewest nodes. Nil when there are none.
	Shortest *Cycle `json:"shortest,omitempty"`

	// Longest is the cycle with the most nodes. Nil when there are none.
	Longest *Cycle `json:"longest,omitempty"`

	// NodesInCycles is the sorted union of all nodes on any cycle.
	NodesInCycles []string `json:"nodesInCycles"`
}

// Stats summarizes the size of a graph.
type Stats struct {
	NodeCount         int `json:"nodeCount"`
	EdgeCount         int `json:"edgeCount"`
	UnresolvedTargets int `json:"unresolvedTargets"`
	LazyEdgeCount     int `json:"lazyEdgeCount"`
}
