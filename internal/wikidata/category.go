package wikidata

import "math"

// Fixed structural QID sets used by the item-category classifier.
var (
	disambiguationInstanceOfQIDs = map[string]struct{}{
		"Q4167410":  {}, // Wikimedia disambiguation page
		"Q22808320": {}, // Wikimedia human name disambiguation page
	}
	classlikeInstanceOfQIDs = map[string]struct{}{
		"Q16889133": {}, // class
		"Q24017414": {}, // first-order class
	}
)

// ItemCategory classifies an entity's structural role in the catalog.
func ItemCategory(e *RawEntity) string {
	if e.ID == "" {
		return "OTHER"
	}
	if e.ID[0] == 'P' || e.Type == "property" {
		return "PREDICATE"
	}
	switch e.Type {
	case "lexeme":
		return "LEXEME"
	case "form":
		return "FORM"
	case "sense":
		return "SENSE"
	case "mediainfo":
		return "MEDIAINFO"
	}
	if e.ID[0] != 'Q' {
		return "OTHER"
	}
	if len(e.Claims) == 0 {
		return "ENTITY"
	}

	p31IDs := claimObjectIDsForProperty(e, "P31", 16)
	for _, id := range p31IDs {
		if _, ok := disambiguationInstanceOfQIDs[id]; ok {
			return "DISAMBIGUATION"
		}
	}

	if statements, ok := e.Claims["P279"].([]any); ok {
		for _, s := range statements {
			if _, ok := s.(map[string]any); ok {
				return "TYPE"
			}
		}
	}

	for _, id := range p31IDs {
		if _, ok := classlikeInstanceOfQIDs[id]; ok {
			return "TYPE"
		}
	}

	return "ENTITY"
}

func claimObjectIDsForProperty(e *RawEntity, propertyID string, limit int) []string {
	statements, ok := e.Claims[propertyID]
	if !ok {
		return nil
	}
	wrapper := &RawEntity{Claims: map[string]any{propertyID: statements}}
	return ExtractClaimObjectIDs(wrapper, limit)
}

// PickPrimaryLabel chooses the English label if present, else the
// lexicographically-first non-empty label across languages.
func PickPrimaryLabel(labels map[string]string) string {
	if en, ok := labels["en"]; ok {
		if trimmed := NormalizeText(en); trimmed != "" {
			return trimmed
		}
	}
	for _, lang := range sortedKeys(labels) {
		if candidate := NormalizeText(labels[lang]); candidate != "" {
			return candidate
		}
	}
	return ""
}

// CrossRefs derives the full canonical wikipedia/dbpedia reference URLs
// from the entity's English Wikipedia sitelink, when present. The store
// layer compacts these down to a bare ref (stripping the canonical prefix)
// at upsert time via [CompactWikipediaRef]/[CompactDBpediaRef]; this
// function's output is an intermediate, still-prefixed form.
func CrossRefs(e *RawEntity) (wikipedia, dbpedia string) {
	enwiki, ok := e.Sitelinks["enwiki"].(map[string]any)
	if !ok {
		return "", ""
	}
	title, ok := enwiki["title"].(string)
	title = NormalizeText(title)
	if !ok || title == "" {
		return "", ""
	}
	return wikipediaURL(title), dbpediaURL(title)
}

// Popularity is the count of all cross-wiki sitelink entries.
func Popularity(e *RawEntity) float64 {
	return float64(len(e.Sitelinks))
}

// PopularityToPrior computes the deterministic popularity-to-prior mapping
// 1 - exp(-ln(1+popularity)/6), used by EntityRecord.Prior. Range [0,1).
func PopularityToPrior(popularity float64) float64 {
	if popularity < 0 {
		popularity = 0
	}
	return 1 - math.Exp(-math.Log1p(popularity)/6.0)
}
