// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package detect provides the DI issue detectors and the coordinator that
// runs them.
//
// Each detector inspects one analysis Input (components, graph and
// provider index) and returns raw issues of a single type. The
// Coordinator runs the registered detectors, isolates their failures and
// keeps only the highest-priority issue per component.
//
// # Thread Safety
//
// Detectors hold no state between calls. An Input is read-only, so the
// detectors of one priority group may run concurrently.
package detect

import "errors"

// Sentinel errors for detection.
var (
	// ErrNilContext is returned when a nil context is passed to Run.
	ErrNilContext = errors.New("context must not be nil")

	// ErrNilInput is returned when Run receives a nil Input.
	ErrNilInput = errors.New("input must not be nil")

	// ErrDetectorPanic wraps a panic recovered from a detector.
	ErrDetectorPanic = errors.New("detector panicked")

	// ErrUnexpectedIssue is returned when a detector emits an issue whose
	// type is outside the closed set.
	ErrUnexpectedIssue = errors.New("detector emitted an issue of unknown type")
)
