// Package store implements the durable Entity Store (spec component 4.F):
// batched upsert, ordered ID scan, label resolution with sample-cache
// fallback, context-string rebuild, fuzzy candidate search, index
// management, lookup-time compaction, and the query cache.
package store

import (
	"sort"
	"strings"

	"github.com/entityretrieval/entityretrieval/internal/wikidata"
)

// EntityRecord is one row of the entities table.
type EntityRecord struct {
	QID                string
	Label              string
	Labels             map[string]string
	Aliases            map[string][]string
	CoarseType         string
	FineType           string
	ItemCategory       string
	Popularity         float64
	CrossRefs          map[string]string
	RelationObjectQIDs []string
	ContextString      string
}

// Prior computes 1 - exp(-ln(1+popularity)/6), the deterministic popularity
// prior required by the data model's invariant.
func Prior(popularity float64) float64 {
	return wikidata.PopularityToPrior(popularity)
}

// flattenLabels orders label values English-first, then other languages
// lexicographically, normalizing and deduplicating.
func flattenLabels(labels map[string]string) []string {
	var ordered []string
	if _, ok := labels["en"]; ok {
		ordered = append(ordered, "en")
	}
	var rest []string
	for lang := range labels {
		if lang != "en" {
			rest = append(rest, lang)
		}
	}
	sort.Strings(rest)
	ordered = append(ordered, rest...)

	seen := map[string]struct{}{}
	var flat []string
	for _, lang := range ordered {
		value := wikidata.NormalizeText(labels[lang])
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		flat = append(flat, value)
	}
	return flat
}

// flattenAliases orders alias values English-first, then other languages
// lexicographically, normalizing and deduplicating across all languages.
func flattenAliases(aliases map[string][]string) []string {
	var ordered []string
	if _, ok := aliases["en"]; ok {
		ordered = append(ordered, "en")
	}
	var rest []string
	for lang := range aliases {
		if lang != "en" {
			rest = append(rest, lang)
		}
	}
	sort.Strings(rest)
	ordered = append(ordered, rest...)

	seen := map[string]struct{}{}
	var flat []string
	for _, lang := range ordered {
		for _, raw := range aliases[lang] {
			value := wikidata.NormalizeText(raw)
			if value == "" {
				continue
			}
			if _, dup := seen[value]; dup {
				continue
			}
			seen[value] = struct{}{}
			flat = append(flat, value)
		}
	}
	return flat
}

// searchColumns are the derived, store-facing lookup columns computed from
// an EntityRecord at upsert time.
type searchColumns struct {
	prior             float64
	lookupAliases     []string
	aliasesText       string
	contextSearchText string
	wikipediaURL      string
	dbpediaURL        string
}

func buildSearchColumns(r EntityRecord) searchColumns {
	labelsFlatAll := flattenLabels(r.Labels)
	primaryNorm := wikidata.NormalizeText(r.Label)
	var labelsFlat []string
	for _, v := range labelsFlatAll {
		if v == "" {
			continue
		}
		if primaryNorm != "" && v == primaryNorm {
			continue
		}
		labelsFlat = append(labelsFlat, v)
	}
	aliasesFlat := flattenAliases(r.Aliases)

	lookupAliases := append(append([]string{}, labelsFlat...), aliasesFlat...)
	aliasesText := strings.Join(lookupAliases, " ")

	cleanContext := ""
	if r.ContextString != "" {
		cleanContext = wikidata.NormalizeText(r.ContextString)
	}
	contextSearchText := cleanContext
	if len(contextSearchText) > 256 {
		contextSearchText = contextSearchText[:256]
	}

	return searchColumns{
		prior:             Prior(r.Popularity),
		lookupAliases:     lookupAliases,
		aliasesText:       aliasesText,
		contextSearchText: contextSearchText,
		wikipediaURL:      wikidata.CompactWikipediaRef(r.CrossRefs["wikipedia"]),
		dbpediaURL:        wikidata.CompactDBpediaRef(r.CrossRefs["dbpedia"]),
	}
}
