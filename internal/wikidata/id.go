package wikidata

import "strconv"

// ParseEntityID reports whether id has a supported shape — a "Q" or "P"
// prefix followed immediately by a positive integer, with no extra
// characters — and returns the prefix character when it does.
//
// This is a stricter check than the dump producer's own tolerance: ids like
// "Q" or "Qabc" are rejected rather than merely prefix-matched.
func ParseEntityID(id string) (prefix byte, ok bool) {
	if len(id) < 2 {
		return 0, false
	}
	prefix = id[0]
	if prefix != 'Q' && prefix != 'P' {
		return 0, false
	}
	n, err := strconv.ParseInt(id[1:], 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return prefix, true
}

// IsSupportedEntityID reports whether id is a supported item or property ID.
func IsSupportedEntityID(id string) bool {
	_, ok := ParseEntityID(id)
	return ok
}

// EntityIDFromDatavalue extracts a supported entity ID from the decoded
// "value" object of a claim's mainsnak.datavalue, following the Wikidata
// wikibase-entityid shape: a literal "id" string when already well-shaped,
// else synthesized from "entity-type" + "numeric-id".
func EntityIDFromDatavalue(value map[string]any) (string, bool) {
	if value == nil {
		return "", false
	}
	if rawID, ok := value["id"].(string); ok {
		if IsSupportedEntityID(rawID) {
			return rawID, true
		}
	}
	numericID, ok := asPositiveInt(value["numeric-id"])
	if !ok {
		return "", false
	}
	switch value["entity-type"] {
	case "item":
		return "Q" + strconv.FormatInt(numericID, 10), true
	case "property":
		return "P" + strconv.FormatInt(numericID, 10), true
	default:
		return "", false
	}
}

func asPositiveInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n <= 0 {
			return 0, false
		}
		return int64(n), true
	case int64:
		if n <= 0 {
			return 0, false
		}
		return n, true
	case int:
		if n <= 0 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
