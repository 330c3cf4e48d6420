// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package history

import "errors"

var (
	// ErrRunNotFound is returned when no run matches the request.
	ErrRunNotFound = errors.New("history: run not found")

	// ErrPathRequired is returned when a persistent store has no path.
	ErrPathRequired = errors.New("history: path is required for a persistent store")

	// ErrStoreClosed is returned by operations on a closed Store.
	ErrStoreClosed = errors.New("history: store closed")
)
