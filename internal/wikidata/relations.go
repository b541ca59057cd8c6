package wikidata

// ExtractClaimObjectIDs walks every claim of e (in deterministic,
// property-ID-sorted order so repeated runs over the same entity produce
// the same list regardless of decoder map iteration order), following only
// statements whose mainsnak has snaktype "value" and a datavalue that
// resolves to a supported entity ID. IDs are returned in encounter order,
// deduplicated, capped at limit.
func ExtractClaimObjectIDs(e *RawEntity, limit int) []string {
	if limit <= 0 || len(e.Claims) == 0 {
		return nil
	}

	var objectIDs []string
	seen := map[string]struct{}{}

	for _, property := range sortedKeys(e.Claims) {
		statements, ok := e.Claims[property].([]any)
		if !ok {
			continue
		}
		for _, raw := range statements {
			if len(objectIDs) >= limit {
				return objectIDs
			}
			statement, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			mainsnak, ok := statement["mainsnak"].(map[string]any)
			if !ok {
				continue
			}
			if mainsnak["snaktype"] != "value" {
				continue
			}
			datavalue, ok := mainsnak["datavalue"].(map[string]any)
			if !ok {
				continue
			}
			value, ok := datavalue["value"].(map[string]any)
			if !ok {
				continue
			}
			id, ok := EntityIDFromDatavalue(value)
			if !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			objectIDs = append(objectIDs, id)
		}
	}
	return objectIDs
}
