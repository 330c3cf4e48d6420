// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package facts loads extracted DI facts (components, dependencies and
// providers) from JSON or YAML documents and watches them for changes.
//
// A document looks like:
//
//	version: 1
//	project: checkout-app
//	expectedIssues: 3
//	components:
//	  - className: OrderService
//	    packageName: com.shop.orders
//	    hasComponentAnnotation: true
//	    dependencies:
//	      - propertyName: repo
//	        targetType: OrderRepository
package facts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// Format is the encoding of a facts document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Document is a facts file.
type Document struct {
	// Version of the document layout. Only 1 is defined.
	Version int `json:"version" yaml:"version" validate:"omitempty,eq=1"`

	// Project is a free-form label recorded with history runs.
	Project string `json:"project,omitempty" yaml:"project,omitempty"`

	// ExpectedIssues is optional ground truth for accuracy metrics.
	ExpectedIssues *int `json:"expectedIssues,omitempty" yaml:"expectedIssues,omitempty" validate:"omitempty,gte=0"`

	Components []model.Component `json:"components" yaml:"components" validate:"dive"`
}

var factsValidate *validator.Validate

func init() {
	factsValidate = validator.New()
	factsValidate.RegisterStructValidation(validateDocument, Document{})
}

// validateDocument rejects documents where two components share an ID.
func validateDocument(sl validator.StructLevel) {
	doc := sl.Current().Interface().(Document)
	seen := make(map[string]struct{}, len(doc.Components))
	for i, c := range doc.Components {
		id := c.ID()
		if _, dup := seen[id]; dup {
			sl.ReportError(doc.Components[i].ClassName, fmt.Sprintf("Components[%d]", i), "ClassName", "unique", id)
			continue
		}
		seen[id] = struct{}{}
	}
}

// FormatFromPath picks the format from the file extension. Anything that
// is not .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes and validates a document.
//
// Outputs:
//
//	*Document - The decoded document.
//	error - ErrUnsupportedFormat, a decode error, or a wrapped ErrInvalidFacts.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json facts: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode yaml facts: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks required fields and component ID uniqueness.
func Validate(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidFacts)
	}
	if err := factsValidate.Struct(doc); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFacts, describe(err))
	}
	return nil
}

// Load reads and parses the file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read facts %s: %w", path, err)
	}
	doc, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "unique" {
			parts = append(parts, fmt.Sprintf("duplicate component %v", fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
