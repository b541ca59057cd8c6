// Package wikidata decodes and interprets Wikidata-shaped entity records:
// raw JSON payload extraction, entity ID validation, multilingual text
// selection, relation-object traversal, and structural item classification.
package wikidata

// RawEntity is the loosely-typed shape of a single decoded dump record.
// Wikidata dumps are not schema-checked before ingestion, so fields are
// read defensively throughout this package.
type RawEntity struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Labels       map[string]any `json:"labels"`
	Descriptions map[string]any `json:"descriptions"`
	Aliases      map[string]any `json:"aliases"`
	Claims       map[string]any `json:"claims"`
	Sitelinks    map[string]any `json:"sitelinks"`
}

// MultilingualPayload is the normalized, whitespace-cleaned result of
// extracting text fields from a [RawEntity].
type MultilingualPayload struct {
	Labels       map[string]string
	Descriptions map[string]string
	Aliases      map[string][]string
}
