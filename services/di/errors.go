// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package di

import "errors"

var (
	// ErrNilContext is returned when a nil context is passed to the service.
	ErrNilContext = errors.New("di: nil context")

	// ErrInvalidRequest is returned when request facts fail validation.
	ErrInvalidRequest = errors.New("di: invalid request")

	// ErrHistoryDisabled is returned by history operations when the
	// service runs without a run store.
	ErrHistoryDisabled = errors.New("di: run history is disabled")
)
