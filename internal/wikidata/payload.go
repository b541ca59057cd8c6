package wikidata

import "sort"

// ExtractValueMap normalizes a Wikidata labels/descriptions map
// (language -> {language, value}) into language -> normalized text,
// dropping languages whose value is missing, non-string, or empty after
// normalization.
func ExtractValueMap(raw map[string]any) map[string]string {
	out := map[string]string{}
	for lang, payload := range raw {
		entry, ok := payload.(map[string]any)
		if !ok {
			continue
		}
		value, ok := entry["value"].(string)
		if !ok {
			continue
		}
		normalized := NormalizeText(value)
		if normalized != "" {
			out[lang] = normalized
		}
	}
	return out
}

// ExtractAliasMap normalizes a Wikidata aliases map (language -> list of
// {language, value}) into language -> deduplicated, normalized alias list,
// preserving first-seen order within each language.
func ExtractAliasMap(raw map[string]any) map[string][]string {
	out := map[string][]string{}
	for lang, payload := range raw {
		list, ok := payload.([]any)
		if !ok {
			continue
		}
		seen := map[string]struct{}{}
		var aliases []string
		for _, item := range list {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			value, ok := entry["value"].(string)
			if !ok {
				continue
			}
			normalized := NormalizeText(value)
			if normalized == "" {
				continue
			}
			if _, dup := seen[normalized]; dup {
				continue
			}
			seen[normalized] = struct{}{}
			aliases = append(aliases, normalized)
		}
		if len(aliases) > 0 {
			out[lang] = aliases
		}
	}
	return out
}

// ExtractPayload pulls labels, descriptions, and aliases off a [RawEntity].
func ExtractPayload(e *RawEntity) MultilingualPayload {
	return MultilingualPayload{
		Labels:       ExtractValueMap(e.Labels),
		Descriptions: ExtractValueMap(e.Descriptions),
		Aliases:      ExtractAliasMap(e.Aliases),
	}
}

func firstNonEmptyText(values map[string]string) (lang, value string, ok bool) {
	langs := sortedKeys(values)
	for _, lang := range langs {
		if v := NormalizeText(values[lang]); v != "" {
			return lang, v, true
		}
	}
	return "", "", false
}

// SelectTextMapLanguages restricts a label/description map to the preferred
// languages, falling back to the lexicographically-first non-empty
// language when the preferred set yields nothing and fallbackToAny is set.
func SelectTextMapLanguages(values map[string]string, preferred []string, fallbackToAny bool) map[string]string {
	if len(values) == 0 {
		return map[string]string{}
	}
	selected := map[string]string{}
	for _, lang := range preferred {
		value, ok := values[lang]
		if !ok {
			continue
		}
		if normalized := NormalizeText(value); normalized != "" {
			selected[lang] = normalized
		}
	}
	if len(selected) > 0 {
		return selected
	}
	if !fallbackToAny {
		return map[string]string{}
	}
	if lang, value, ok := firstNonEmptyText(values); ok {
		return map[string]string{lang: value}
	}
	return map[string]string{}
}

// SelectAliasMapLanguages restricts an alias map to the preferred
// languages, capping each language's alias count at maxPerLanguage. No
// cross-language fallback is applied (matches the reference behavior).
func SelectAliasMapLanguages(aliases map[string][]string, preferred []string, maxPerLanguage int) map[string][]string {
	if len(aliases) == 0 || maxPerLanguage <= 0 {
		return map[string][]string{}
	}
	selected := map[string][]string{}
	for _, lang := range preferred {
		values, ok := aliases[lang]
		if !ok {
			continue
		}
		seen := map[string]struct{}{}
		var compacted []string
		for _, raw := range values {
			candidate := NormalizeText(raw)
			if candidate == "" {
				continue
			}
			if _, dup := seen[candidate]; dup {
				continue
			}
			seen[candidate] = struct{}{}
			compacted = append(compacted, candidate)
			if len(compacted) >= maxPerLanguage {
				break
			}
		}
		if len(compacted) > 0 {
			selected[lang] = compacted
		}
	}
	return selected
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
