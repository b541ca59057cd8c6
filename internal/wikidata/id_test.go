package wikidata_test

import (
	"testing"

	"github.com/entityretrieval/entityretrieval/internal/wikidata"
)

func TestParseEntityID(t *testing.T) {
	cases := []struct {
		id string
		ok bool
	}{
		{"Q312", true},
		{"P31", true},
		{"Q0", false},
		{"Q", false},
		{"Qabc", false},
		{"L1", false},
		{"", false},
	}
	for _, c := range cases {
		_, ok := wikidata.ParseEntityID(c.id)
		if ok != c.ok {
			t.Errorf("ParseEntityID(%q) ok = %v, want %v", c.id, ok, c.ok)
		}
	}
}

func TestEntityIDFromDatavalue(t *testing.T) {
	id, ok := wikidata.EntityIDFromDatavalue(map[string]any{
		"entity-type": "item",
		"numeric-id":  float64(4167410),
	})
	if !ok || id != "Q4167410" {
		t.Fatalf("got (%q, %v), want (Q4167410, true)", id, ok)
	}

	id, ok = wikidata.EntityIDFromDatavalue(map[string]any{"id": "Q5"})
	if !ok || id != "Q5" {
		t.Fatalf("got (%q, %v), want (Q5, true)", id, ok)
	}

	_, ok = wikidata.EntityIDFromDatavalue(map[string]any{"entity-type": "item", "numeric-id": float64(-1)})
	if ok {
		t.Fatal("negative numeric-id should not resolve")
	}
}
