// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package model

import (
	"errors"
	"testing"
)

func TestComponent_IDAndType(t *testing.T) {
	tests := []struct {
		name   string
		c      Component
		wantID string
		want   ComponentType
	}{
		{"bare", Component{ClassName: "A"}, "A", ComponentTypeComponent},
		{"consumer", Component{ClassName: "A", PackageName: "com.acme", Dependencies: []Dependency{{PropertyName: "b", TargetType: "B"}}}, "com.acme.A", ComponentTypeConsumer},
		{"provider", Component{ClassName: "M", Providers: []Provider{{MethodName: "db", ReturnType: "Db"}}}, "M", ComponentTypeProvider},
		{"composite", Component{
			ClassName:    "X",
			Dependencies: []Dependency{{PropertyName: "b", TargetType: "B"}},
			Providers:    []Provider{{MethodName: "db", ReturnType: "Db"}},
		}, "X", ComponentTypeComposite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.ID(); got != tt.wantID {
				t.Errorf("ID() = %q, want %q", got, tt.wantID)
			}
			if got := tt.c.Type(); got != tt.want || !got.Valid() {
				t.Errorf("Type() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComponent_Matches(t *testing.T) {
	c := Component{ClassName: "Repo", PackageName: "com.acme"}
	if !c.Matches("Repo") || !c.Matches("com.acme.Repo") {
		t.Error("expected simple and qualified names to match")
	}
	if c.Matches("") || c.Matches("org.other.Repo") {
		t.Error("unexpected match")
	}
}

func TestTypeNameHelpers(t *testing.T) {
	tests := []struct {
		in, simple, pkg string
	}{
		{"com.acme.db.DatabaseService", "DatabaseService", "com.acme.db"},
		{"DatabaseService", "DatabaseService", ""},
		{"Lazy<com.acme.Foo>", "Lazy<com.acme.Foo>", ""},
		{"com.acme.Box<com.acme.Foo>", "Box<com.acme.Foo>", "com.acme"},
	}
	for _, tt := range tests {
		if got := SimpleTypeName(tt.in); got != tt.simple {
			t.Errorf("SimpleTypeName(%q) = %q, want %q", tt.in, got, tt.simple)
		}
		if got := PackageOf(tt.in); got != tt.pkg {
			t.Errorf("PackageOf(%q) = %q, want %q", tt.in, got, tt.pkg)
		}
	}
}

func TestProvider_EffectiveTypeAndMultiBinding(t *testing.T) {
	p := Provider{MethodName: "m", ReturnType: "PgDb", ProvidesType: "Db"}
	if p.EffectiveType() != "Db" {
		t.Errorf("EffectiveType() = %q, want Db", p.EffectiveType())
	}
	p.ProvidesType = ""
	if p.EffectiveType() != "PgDb" {
		t.Errorf("EffectiveType() = %q, want PgDb", p.EffectiveType())
	}
	if p.IsMultiBinding() {
		t.Error("plain provider is not a multi-binding")
	}
	for _, mb := range []Provider{{IsIntoSet: true}, {IsIntoList: true}, {IsIntoMap: true}} {
		if !mb.IsMultiBinding() {
			t.Errorf("%+v should be a multi-binding", mb)
		}
	}
}

func TestIssueType_Priority(t *testing.T) {
	prev := 0
	for _, typ := range AllIssueTypes() {
		p, err := typ.Priority()
		if err != nil {
			t.Fatalf("Priority(%s): %v", typ, err)
		}
		if p <= prev {
			t.Errorf("AllIssueTypes not in priority order at %s", typ)
		}
		prev = p
	}

	if _, err := IssueType("BOGUS").Priority(); !errors.Is(err, ErrUnknownIssueType) {
		t.Errorf("expected ErrUnknownIssueType, got %v", err)
	}
}

func TestIssue_ComponentsAndClone(t *testing.T) {
	is := NewIssue(IssueTypeCircularDependency, SeverityError, JoinComponents([]string{"A", "B"}), "cycle")
	is.Metadata[MetaCycleLength] = 2

	if got := is.Components(); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("Components() = %v", got)
	}
	if is.ValidationStatus != ValidationNotValidated {
		t.Errorf("new issue status = %s", is.ValidationStatus)
	}

	c := is.Clone()
	c.Metadata[MetaCycleLength] = 7
	if n, _ := is.MetaInt(MetaCycleLength); n != 2 {
		t.Errorf("clone shares metadata map: original now %d", n)
	}
}

func TestIssue_MetaAccessorsAfterJSON(t *testing.T) {
	is := NewIssue(IssueTypeNamedQualifierMismatch, SeverityError, "Repo", "m")
	is.Metadata[MetaProviderCount] = float64(3)
	is.Metadata[MetaSuggestions] = []any{"primary", "secondary"}
	is.Metadata[MetaBestSimilarity] = 1

	if n, ok := is.MetaInt(MetaProviderCount); !ok || n != 3 {
		t.Errorf("MetaInt = %d, %v", n, ok)
	}
	if s, ok := is.MetaStrings(MetaSuggestions); !ok || len(s) != 2 || s[0] != "primary" {
		t.Errorf("MetaStrings = %v, %v", s, ok)
	}
	if f, ok := is.MetaFloat(MetaBestSimilarity); !ok || f != 1 {
		t.Errorf("MetaFloat = %v, %v", f, ok)
	}
	if _, ok := is.MetaBool(MetaIsNamedConflict); ok {
		t.Error("missing key should report !ok")
	}
	is.Metadata[MetaSuggestions] = []any{"x", 2}
	if _, ok := is.MetaStrings(MetaSuggestions); ok {
		t.Error("mixed list should report !ok")
	}
}
