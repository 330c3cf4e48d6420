// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the DI dependency graph and cycle discovery.
//
// The graph is built once from a snapshot of component facts with
// BuildGraph and is read-only afterwards. Nodes are components; edges are
// dependencies whose target type resolves to another component.
//
// # Thread Safety
//
// A built DependencyGraph is never modified, so it can be read from
// multiple goroutines without locking.
//
// # Dangling Targets
//
// Dependencies whose target does not match any component do not become
// edges. They are recorded as unmatched targets so detectors can surface
// them as unresolved dependencies.
package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrNodeNotFound is returned when a lookup references an unknown node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidEdgeType is returned when decoding an unknown edge type name.
	ErrInvalidEdgeType = errors.New("invalid edge type")
)
