package ingest

import (
	"testing"

	"github.com/entityretrieval/entityretrieval/internal/wikidata"
)

func TestTransformEntitySkipsUnsupportedID(t *testing.T) {
	entity := &wikidata.RawEntity{ID: "L123"}
	if got := transformEntity(entity, transformOptions{languageAllowlist: []string{"en"}}); got != nil {
		t.Fatalf("transformEntity(L123) = %+v, want nil", got)
	}
}

func TestTransformEntitySkipsMissingLabel(t *testing.T) {
	entity := &wikidata.RawEntity{ID: "Q1", Labels: map[string]any{}}
	if got := transformEntity(entity, transformOptions{languageAllowlist: []string{"en"}}); got != nil {
		t.Fatalf("transformEntity with no labels = %+v, want nil", got)
	}
}

func TestTransformEntityAssemblesRecord(t *testing.T) {
	entity := &wikidata.RawEntity{
		ID: "Q312",
		Labels: map[string]any{
			"en": map[string]any{"language": "en", "value": "Apple Inc."},
		},
		Descriptions: map[string]any{
			"en": map[string]any{"language": "en", "value": "American technology company"},
		},
		Sitelinks: map[string]any{
			"enwiki": map[string]any{"site": "enwiki", "title": "Apple Inc."},
		},
	}
	opts := transformOptions{
		languageAllowlist:     []string{"en"},
		maxAliasesPerLanguage: 8,
		maxContextObjectIDs:   32,
		buildSearchVector:     true,
	}
	record := transformEntity(entity, opts)
	if record == nil {
		t.Fatal("transformEntity = nil, want a record")
	}
	if record.QID != "Q312" || record.Label != "Apple Inc." {
		t.Fatalf("record = %+v", record)
	}
	if record.CoarseType != "ORGANIZATION" || record.FineType != "COMPANY" {
		t.Fatalf("record NER types = (%q, %q)", record.CoarseType, record.FineType)
	}
	if record.Popularity != 1 {
		t.Fatalf("record.Popularity = %v, want 1", record.Popularity)
	}
}

func TestResolveWorkerCountDefaultsAreBounded(t *testing.T) {
	if got := resolveWorkerCount(0); got < 1 || got > 8 {
		t.Fatalf("resolveWorkerCount(0) = %d, want in [1,8]", got)
	}
	if got := resolveWorkerCount(3); got != 3 {
		t.Fatalf("resolveWorkerCount(3) = %d, want 3", got)
	}
}
