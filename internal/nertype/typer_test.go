package nertype_test

import (
	"testing"

	"github.com/entityretrieval/entityretrieval/internal/nertype"
)

func TestInferTypes_PropertyIsRelation(t *testing.T) {
	coarse, fine, version := nertype.InferTypes("P31",
		map[string]string{"en": "instance of"},
		nil,
		map[string]string{"en": "that class of which this subject is a particular example"},
	)
	if len(coarse) != 1 || coarse[0] != "RELATION" {
		t.Fatalf("coarse = %v, want [RELATION]", coarse)
	}
	if len(fine) != 1 || fine[0] != "PROPERTY" {
		t.Fatalf("fine = %v, want [PROPERTY]", fine)
	}
	if version != "lexical_v1" {
		t.Fatalf("version = %q", version)
	}
}

func TestInferTypes_PresidentIsPersonHuman(t *testing.T) {
	coarse, fine, _ := nertype.InferTypes("Q76",
		map[string]string{"en": "Barack Obama"},
		nil,
		map[string]string{"en": "president of the United States from 2009 to 2017"},
	)
	if !contains(coarse, "PERSON") {
		t.Fatalf("coarse = %v, want to contain PERSON", coarse)
	}
	if !contains(fine, "HUMAN") {
		t.Fatalf("fine = %v, want to contain HUMAN", fine)
	}
	if contains(fine, "COUNTRY") {
		t.Fatalf("fine = %v, must not contain COUNTRY", fine)
	}
}

func TestInferTypes_NoMatchIsMisc(t *testing.T) {
	coarse, fine, _ := nertype.InferTypes("Q1",
		map[string]string{"en": "xyzzy"},
		nil,
		map[string]string{"en": "a thing with no matching clues whatsoever"},
	)
	if len(coarse) != 1 || coarse[0] != "MISC" {
		t.Fatalf("coarse = %v, want [MISC]", coarse)
	}
	if len(fine) != 1 || fine[0] != "ENTITY" {
		t.Fatalf("fine = %v, want [ENTITY]", fine)
	}
}

func TestInferTypes_EmptyTextIsMisc(t *testing.T) {
	coarse, fine, _ := nertype.InferTypes("Q2", nil, nil, nil)
	if len(coarse) != 1 || coarse[0] != "MISC" || len(fine) != 1 || fine[0] != "ENTITY" {
		t.Fatalf("got (%v, %v), want ([MISC], [ENTITY])", coarse, fine)
	}
}

func contains(vals []string, want string) bool {
	for _, v := range vals {
		if v == want {
			return true
		}
	}
	return false
}
