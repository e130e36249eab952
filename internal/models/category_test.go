package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestProjectionMarshalEmptyChildren(t *testing.T) {
	p := Projection{ID: 7, Name: "shoes", ParentID: 0}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"children":[]`) {
		t.Errorf("expected empty children array, got %s", data)
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("unexpected null in %s", data)
	}
}

func TestProjectionMarshalNestedChildren(t *testing.T) {
	p := Projection{
		ID: 1,
		Children: []Projection{
			{ID: 2, ParentID: 1},
		},
	}

	data, err := json.Marshal([]Projection{p})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(data), `"children":null`) {
		t.Errorf("nested children rendered as null: %s", data)
	}
	if got := strings.Count(string(data), `"children":[]`); got != 1 {
		t.Errorf("expected 1 empty children array (leaf), got %d in %s", got, data)
	}
}

func TestProjectionNullParentDecodesAsRoot(t *testing.T) {
	var p Projection
	if err := json.Unmarshal([]byte(`{"id":3,"parentid":null}`), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.ParentID != RootParentID {
		t.Errorf("ParentID: got %d, want %d", p.ParentID, RootParentID)
	}
}

func TestProjectionOf(t *testing.T) {
	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	updated := created.Add(time.Hour)
	c := &Category{
		ID: 9, Name: "boots", Description: "Winter boots", ParentID: 3,
		IsActive: true, CreatedAt: created, UpdatedAt: updated,
	}

	p := ProjectionOf(c)

	if p.ID != 9 || p.Name != "boots" || p.Description != "Winter boots" || p.ParentID != 3 || !p.IsActive {
		t.Errorf("fields not copied: %+v", p)
	}
	if p.CreatedAt != "2026-03-04 05:06:07" {
		t.Errorf("CreatedAt: got %q", p.CreatedAt)
	}
	if p.UpdatedAt != "2026-03-04 06:06:07" {
		t.Errorf("UpdatedAt: got %q", p.UpdatedAt)
	}
	if p.Children == nil || len(p.Children) != 0 {
		t.Errorf("Children: expected empty non-nil slice, got %#v", p.Children)
	}
}

func TestCategoryRequestParent(t *testing.T) {
	five := 5
	tests := []struct {
		name string
		req  CategoryRequest
		want int
	}{
		{name: "absent parent is root", req: CategoryRequest{}, want: RootParentID},
		{name: "explicit parent", req: CategoryRequest{ParentID: &five}, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.Parent(); got != tt.want {
				t.Errorf("Parent() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Shoes", "shoes"},
		{"  SHOES ", "shoes"},
		{"shoes", "shoes"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategoryIsRoot(t *testing.T) {
	if !(&Category{ParentID: 0}).IsRoot() {
		t.Error("parent 0 should be root")
	}
	if (&Category{ParentID: 4}).IsRoot() {
		t.Error("parent 4 should not be root")
	}
}
