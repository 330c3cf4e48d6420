// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package facts

import "errors"

var (
	// ErrInvalidFacts is returned when a facts document fails validation.
	ErrInvalidFacts = errors.New("facts: invalid document")

	// ErrUnsupportedFormat is returned for formats other than JSON or YAML.
	ErrUnsupportedFormat = errors.New("facts: unsupported format")
)
