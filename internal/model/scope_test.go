package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestScopeMapAddDeduplicates(t *testing.T) {
	var m ScopeMap
	m = m.Add("Algebra", "Linear")
	m = m.Add("Algebra", "Linear")
	m = m.Add("Algebra", "Quadratic")
	m = m.Add("Geometry", "")

	want := ScopeMap{
		{Topic: "Algebra", Subtopics: []string{"Linear", "Quadratic"}},
		{Topic: "Geometry", Subtopics: []string{}},
	}
	if !reflect.DeepEqual(m, want) {
		t.Fatalf("got %#v, want %#v", m, want)
	}
}

func TestScopeMapJSONKeepsOrder(t *testing.T) {
	m := ScopeMap{}.Add("Zoology", "Mammals").Add("Anatomy", "").Add("Botany", "Ferns")

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"Zoology":["Mammals"],"Anatomy":[],"Botany":["Ferns"]}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}

	var back ScopeMap
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back, m) {
		t.Fatalf("round trip mismatch: %#v vs %#v", back, m)
	}
}

func TestScopeMapEmptyAndNull(t *testing.T) {
	b, err := json.Marshal(ScopeMap(nil))
	if err != nil || string(b) != "{}" {
		t.Fatalf("nil scope marshals to %s (%v)", b, err)
	}

	var m ScopeMap
	if err := json.Unmarshal([]byte("null"), &m); err != nil || m != nil {
		t.Fatalf("null should decode to nil scope, got %#v (%v)", m, err)
	}
	if err := json.Unmarshal([]byte(`["x"]`), &m); err == nil {
		t.Fatal("expected error for non-object scope")
	}
}
