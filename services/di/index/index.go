// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package index provides the provider index built once per analysis run.
//
// The index maps (effectiveType, qualifier) keys to the providers that
// satisfy them, plus the component classes that can satisfy a type by
// construction. Detectors receive the index explicitly; nothing in this
// package holds process-wide state.
//
// # Type Matching
//
// Lookups try the exact type string first. Only when that finds nothing
// does a lookup fall back to simple-name matching, and only when at least
// one side is unqualified. "a.Repo" and "b.Repo" never match each other;
// "Repo" matches both.
package index

import (
	"sort"

	"github.com/AleutianAI/AleutianDI/services/di/model"
)

// Key identifies a provider bucket.
type Key struct {
	// Type is the effective provided type.
	Type string

	// Qualifier is the named qualifier. Empty is the default bucket.
	Qualifier string
}

// ProviderRef is a provider together with its owning component.
type ProviderRef struct {
	Provider    model.Provider
	ComponentID string
	PackageName string
}

// String renders the reference as "method@component".
func (r ProviderRef) String() string {
	return r.Provider.MethodName + "@" + r.ComponentID
}

// Group is a provider bucket with its members.
type Group struct {
	Key       Key
	Providers []ProviderRef
}

// References renders every member with ProviderRef.String.
func (g Group) References() []string {
	out := make([]string, 0, len(g.Providers))
	for _, p := range g.Providers {
		out = append(out, p.String())
	}
	return out
}

// ProviderIndex is the rebuildable (type, qualifier) index of one run.
//
// Thread Safety: Read-only after Build returns. Safe for concurrent use.
type ProviderIndex struct {
	byKey    map[Key][]ProviderRef
	byType   map[string][]ProviderRef
	bySimple map[string][]string
	keys     []Key

	classes     map[string][]string
	componentID map[string]bool
}

// Build indexes every provider and component class of a snapshot.
//
// Inputs:
//
//	components - The component facts. May be nil or empty.
//
// Outputs:
//
//	*ProviderIndex - The index. Never nil.
func Build(components []model.Component) *ProviderIndex {
	idx := &ProviderIndex{
		byKey:       make(map[Key][]ProviderRef),
		byType:      make(map[string][]ProviderRef),
		bySimple:    make(map[string][]string),
		classes:     make(map[string][]string),
		componentID: make(map[string]bool),
	}

	for _, c := range components {
		id := c.ID()
		if id == "" {
			continue
		}
		if !idx.componentID[id] {
			idx.componentID[id] = true
			idx.classes[c.ClassName] = append(idx.classes[c.ClassName], id)
		}

		for _, p := range c.Providers {
			t := p.EffectiveType()
			if t == "" {
				continue
			}
			ref := ProviderRef{Provider: p, ComponentID: id, PackageName: c.PackageName}
			key := Key{Type: t, Qualifier: p.NamedQualifier}
			if _, ok := idx.byKey[key]; !ok {
				idx.keys = append(idx.keys, key)
			}
			idx.byKey[key] = append(idx.byKey[key], ref)
			if _, ok := idx.byType[t]; !ok {
				simple := model.SimpleTypeName(t)
				idx.bySimple[simple] = append(idx.bySimple[simple], t)
			}
			idx.byType[t] = append(idx.byType[t], ref)
		}
	}

	sort.Slice(idx.keys, func(i, j int) bool {
		if idx.keys[i].Type != idx.keys[j].Type {
			return idx.keys[i].Type < idx.keys[j].Type
		}
		return idx.keys[i].Qualifier < idx.keys[j].Qualifier
	})
	for s := range idx.bySimple {
		sort.Strings(idx.bySimple[s])
	}
	for cls := range idx.classes {
		sort.Strings(idx.classes[cls])
	}
	return idx
}

// Lookup returns the providers registered for an exact (type, qualifier).
//
// Falls back to simple-name matching when the exact type has no bucket.
func (idx *ProviderIndex) Lookup(typeName, qualifier string) []ProviderRef {
	var out []ProviderRef
	for _, t := range idx.resolveTypes(typeName) {
		out = append(out, idx.byKey[Key{Type: t, Qualifier: qualifier}]...)
	}
	return out
}

// ForType returns every provider of a type under any qualifier.
func (idx *ProviderIndex) ForType(typeName string) []ProviderRef {
	var out []ProviderRef
	for _, t := range idx.resolveTypes(typeName) {
		out = append(out, idx.byType[t]...)
	}
	return out
}

// Qualifiers returns the distinct non-empty qualifiers offered for a type,
// sorted.
func (idx *ProviderIndex) Qualifiers(typeName string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, ref := range idx.ForType(typeName) {
		q := ref.Provider.NamedQualifier
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
	}
	sort.Strings(out)
	return out
}

// HasUnqualified reports whether a type has at least one default-bucket
// provider.
func (idx *ProviderIndex) HasUnqualified(typeName string) bool {
	return len(idx.Lookup(typeName, "")) > 0
}

// Groups returns buckets holding more than one provider that satisfies
// keep, sorted by key. A nil keep accepts every provider.
func (idx *ProviderIndex) Groups(keep func(ProviderRef) bool) []Group {
	out := make([]Group, 0)
	for _, k := range idx.keys {
		members := make([]ProviderRef, 0, len(idx.byKey[k]))
		for _, ref := range idx.byKey[k] {
			if keep == nil || keep(ref) {
				members = append(members, ref)
			}
		}
		if len(members) > 1 {
			out = append(out, Group{Key: k, Providers: members})
		}
	}
	return out
}

// Keys returns every bucket key, sorted.
func (idx *ProviderIndex) Keys() []Key {
	out := make([]Key, len(idx.keys))
	copy(out, idx.keys)
	return out
}

// ProviderCount returns the total number of indexed providers.
func (idx *ProviderIndex) ProviderCount() int {
	n := 0
	for _, refs := range idx.byKey {
		n += len(refs)
	}
	return n
}

// HasComponent reports whether a component satisfies the type by
// construction, matching its qualified ID or its class name.
func (idx *ProviderIndex) HasComponent(typeName string) bool {
	if idx.componentID[typeName] {
		return true
	}
	return len(idx.classes[typeName]) > 0
}

// ComponentsNamed returns the IDs of components with the given simple
// class name, sorted.
func (idx *ProviderIndex) ComponentsNamed(simpleName string) []string {
	out := make([]string, len(idx.classes[simpleName]))
	copy(out, idx.classes[simpleName])
	return out
}

// TypesNamed returns the provided types whose simple name matches, sorted.
func (idx *ProviderIndex) TypesNamed(simpleName string) []string {
	out := make([]string, len(idx.bySimple[simpleName]))
	copy(out, idx.bySimple[simpleName])
	return out
}

// resolveTypes maps a requested type onto indexed provider types.
func (idx *ProviderIndex) resolveTypes(typeName string) []string {
	if typeName == "" {
		return nil
	}
	if _, ok := idx.byType[typeName]; ok {
		return []string{typeName}
	}

	simple := model.SimpleTypeName(typeName)
	requestedQualified := model.PackageOf(typeName) != ""
	var out []string
	for _, t := range idx.bySimple[simple] {
		providedQualified := model.PackageOf(t) != ""
		if requestedQualified && providedQualified {
			continue
		}
		out = append(out, t)
	}
	return out
}
