package models

import (
	"reflect"
	"testing"
)

func TestAncestorNames(t *testing.T) {
	tests := []struct {
		path        string
		includeSelf bool
		want        []string
	}{
		{"Reagent", true, []string{"Reagent"}},
		{"Reagent", false, []string{}},
		{"Reagent/Enzyme/Polymerase", true, []string{"Reagent", "Enzyme", "Polymerase"}},
		{"Reagent/Enzyme/Polymerase", false, []string{"Reagent", "Enzyme"}},
		{"", true, nil},
	}

	for _, tt := range tests {
		got := ancestorNames(tt.path, tt.includeSelf)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ancestorNames(%q, %v) = %v, want %v", tt.path, tt.includeSelf, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		level int
		want  string
	}{
		{"Reagent", 0, "Reagent"},
		{"Enzyme", 1, "-- Enzyme"},
		{"Polymerase", 2, "---- Polymerase"},
	}

	for _, tt := range tests {
		if got := displayName(tt.name, tt.level); got != tt.want {
			t.Errorf("displayName(%q, %d) = %q, want %q", tt.name, tt.level, got, tt.want)
		}
	}
}

func TestRootName(t *testing.T) {
	if got := rootName("Reagent/Enzyme/Polymerase", "x"); got != "Reagent" {
		t.Errorf("rootName() = %q, want %q", got, "Reagent")
	}
	if got := rootName("Reagent", "x"); got != "Reagent" {
		t.Errorf("rootName() single = %q, want %q", got, "Reagent")
	}
	if got := rootName("", "fallback"); got != "fallback" {
		t.Errorf("rootName() empty = %q, want fallback", got)
	}
}

func TestItemTypeDisplayName(t *testing.T) {
	itemType := ItemType{Name: "Polymerase", Path: "Reagent/Enzyme/Polymerase", Level: 2}
	if got := itemType.DisplayName(); got != "---- Polymerase" {
		t.Errorf("DisplayName() = %q", got)
	}
	if got := itemType.Root(); got != "Reagent" {
		t.Errorf("Root() = %q", got)
	}
	want := []string{"Reagent", "Enzyme"}
	if got := itemType.AncestorNames(false); !reflect.DeepEqual(got, want) {
		t.Errorf("AncestorNames(false) = %v, want %v", got, want)
	}
}
