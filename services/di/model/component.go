// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package model defines the fact and result types shared by the DI analyzer.
//
// The fact types (Component, Dependency, Provider) are produced by an
// external front end that has already resolved annotations into typed
// fields. The analyzer never mutates them.
//
// # Ownership Model
//
// Components are passed by value or by slice and are treated as immutable.
// Detectors and the validator return new Issue values; they never write
// back into the component facts.
package model

import "strings"

// ComponentType classifies a component by the facts it carries.
type ComponentType string

const (
	// ComponentTypeComponent has neither dependencies nor providers.
	ComponentTypeComponent ComponentType = "COMPONENT"

	// ComponentTypeProvider declares providers only.
	ComponentTypeProvider ComponentType = "PROVIDER"

	// ComponentTypeConsumer declares dependencies only.
	ComponentTypeConsumer ComponentType = "CONSUMER"

	// ComponentTypeComposite declares both dependencies and providers.
	ComponentTypeComposite ComponentType = "COMPOSITE"
)

// String returns the string representation of the ComponentType.
func (t ComponentType) String() string {
	return string(t)
}

// Valid reports whether t is one of the known component types.
func (t ComponentType) Valid() bool {
	switch t {
	case ComponentTypeComponent, ComponentTypeProvider, ComponentTypeConsumer, ComponentTypeComposite:
		return true
	default:
		return false
	}
}

// Dependency is an injected property of a component.
type Dependency struct {
	// PropertyName is the name of the injected property or field.
	PropertyName string `json:"propertyName" yaml:"propertyName" validate:"required"`

	// TargetType is the requested type, fully or simply qualified.
	TargetType string `json:"targetType" yaml:"targetType" validate:"required"`

	// NamedQualifier disambiguates providers of the same type.
	// Empty means the default (unqualified) bucket.
	NamedQualifier string `json:"namedQualifier,omitempty" yaml:"namedQualifier,omitempty"`

	// IsSingleton marks a dependency that expects a singleton-scoped instance.
	IsSingleton bool `json:"isSingleton,omitempty" yaml:"isSingleton,omitempty"`

	// IsFactory marks a dependency injected as a factory (new instance per call).
	IsFactory bool `json:"isFactory,omitempty" yaml:"isFactory,omitempty"`

	// IsLoadable marks a lazily loaded dependency.
	IsLoadable bool `json:"isLoadable,omitempty" yaml:"isLoadable,omitempty"`
}

// HasQualifier reports whether the dependency requests an explicit qualifier.
func (d Dependency) HasQualifier() bool {
	return d.NamedQualifier != ""
}

// IsLazy reports whether the dependency is resolved lazily at runtime.
//
// Lazy edges (factory or loadable) do not force eager construction, so a
// cycle that runs through one can still start up.
func (d Dependency) IsLazy() bool {
	return d.IsFactory || d.IsLoadable
}

// Provider is a declared source of instances of a type.
type Provider struct {
	// MethodName is the providing method or function.
	MethodName string `json:"methodName" yaml:"methodName" validate:"required"`

	// ReturnType is the declared return type of the provider.
	ReturnType string `json:"returnType" yaml:"returnType" validate:"required"`

	// ProvidesType is the interface the provider satisfies when it differs
	// from ReturnType. When set it is the effective matching key.
	ProvidesType string `json:"providesType,omitempty" yaml:"providesType,omitempty"`

	// NamedQualifier disambiguates providers of the same type.
	NamedQualifier string `json:"namedQualifier,omitempty" yaml:"namedQualifier,omitempty"`

	IsSingleton bool `json:"isSingleton,omitempty" yaml:"isSingleton,omitempty"`
	IsIntoSet   bool `json:"isIntoSet,omitempty" yaml:"isIntoSet,omitempty"`
	IsIntoList  bool `json:"isIntoList,omitempty" yaml:"isIntoList,omitempty"`
	IsIntoMap   bool `json:"isIntoMap,omitempty" yaml:"isIntoMap,omitempty"`
}

// EffectiveType returns ProvidesType when present, otherwise ReturnType.
func (p Provider) EffectiveType() string {
	if p.ProvidesType != "" {
		return p.ProvidesType
	}
	return p.ReturnType
}

// IsMultiBinding reports whether the provider contributes to a set, list
// or map binding. Multi-binding providers never conflict with each other.
func (p Provider) IsMultiBinding() bool {
	return p.IsIntoSet || p.IsIntoList || p.IsIntoMap
}

// Component is a unit participating in the DI graph.
type Component struct {
	// ClassName is the simple class name.
	ClassName string `json:"className" yaml:"className" validate:"required"`

	// PackageName is the declaring package. May be empty.
	PackageName string `json:"packageName,omitempty" yaml:"packageName,omitempty"`

	// Dependencies are the injected properties declared by the component.
	Dependencies []Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty" validate:"dive"`

	// Providers are the provider methods declared by the component.
	Providers []Provider `json:"providers,omitempty" yaml:"providers,omitempty" validate:"dive"`

	// HasComponentAnnotation reports whether the class carries a component
	// annotation. Nil means the front end did not report it.
	HasComponentAnnotation *bool `json:"hasComponentAnnotation,omitempty" yaml:"hasComponentAnnotation,omitempty"`
}

// ID returns the qualified identity of the component.
//
// Returns "PackageName.ClassName", or ClassName when the package is empty.
func (c Component) ID() string {
	if c.PackageName == "" {
		return c.ClassName
	}
	return c.PackageName + "." + c.ClassName
}

// Type derives the component type from its dependencies and providers.
func (c Component) Type() ComponentType {
	hasDeps := len(c.Dependencies) > 0
	hasProviders := len(c.Providers) > 0
	switch {
	case hasDeps && hasProviders:
		return ComponentTypeComposite
	case hasProviders:
		return ComponentTypeProvider
	case hasDeps:
		return ComponentTypeConsumer
	default:
		return ComponentTypeComponent
	}
}

// Matches reports whether typeName refers to this component, either by
// qualified ID or by simple class name.
func (c Component) Matches(typeName string) bool {
	if typeName == "" {
		return false
	}
	return typeName == c.ID() || typeName == c.ClassName
}

// SimpleTypeName strips the package prefix from a type name.
//
// Generic arguments are left untouched:
//
//	SimpleTypeName("com.acme.db.DatabaseService") // "DatabaseService"
//	SimpleTypeName("Lazy<com.acme.Foo>")          // "Lazy<com.acme.Foo>"
func SimpleTypeName(typeName string) string {
	head := typeName
	if i := strings.IndexByte(typeName, '<'); i >= 0 {
		head = typeName[:i]
	}
	if i := strings.LastIndexByte(head, '.'); i >= 0 {
		return typeName[i+1:]
	}
	return typeName
}

// PackageOf returns the package prefix of a qualified type name, or "".
func PackageOf(typeName string) string {
	head := typeName
	if i := strings.IndexByte(typeName, '<'); i >= 0 {
		head = typeName[:i]
	}
	if i := strings.LastIndexByte(head, '.'); i >= 0 {
		return head[:i]
	}
	return ""
}
