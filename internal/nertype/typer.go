package nertype

import (
	"sort"
	"strings"

	"github.com/entityretrieval/entityretrieval/internal/wikidata"
)

// RuleVersion tags the rule table version attached to every typer result,
// so a future rewrite of the rule table does not silently reinterpret
// stored types.
const RuleVersion = "lexical_v1"

// InferTypes assigns up to two coarse and fine type labels to an entity
// given its id and extracted multilingual text. Deterministic: identical
// inputs always produce identical outputs.
func InferTypes(entityID string, labels map[string]string, aliases map[string][]string, descriptions map[string]string) (coarse, fine []string, version string) {
	if strings.HasPrefix(entityID, "P") {
		return []string{"RELATION"}, []string{"PROPERTY"}, RuleVersion
	}

	textValues := collectTextValues(labels, aliases, descriptions)
	if len(textValues) == 0 {
		return []string{"MISC"}, []string{"ENTITY"}, RuleVersion
	}

	normalizedText := strings.ToLower(strings.Join(textValues, "\n"))
	tokenSet := map[string]struct{}{}
	for _, tok := range wikidata.Tokenize(normalizedText) {
		tokenSet[tok] = struct{}{}
	}

	type scoredRule struct {
		score int
		rule  Rule
	}
	var scored []scoredRule
	for _, rule := range Rules {
		score := 0
		for clue := range rule.TokenClues {
			if _, ok := tokenSet[clue]; ok {
				score++
			}
		}
		for _, phrase := range rule.PhraseClues {
			if phrase != "" && strings.Contains(normalizedText, phrase) {
				score += 2
			}
		}
		if score >= rule.MinScore {
			scored = append(scored, scoredRule{score, rule})
		}
	}
	if len(scored) == 0 {
		return []string{"MISC"}, []string{"ENTITY"}, RuleVersion
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].rule.Fine < scored[j].rule.Fine
	})
	topScore := scored[0].score
	var selected []scoredRule
	for _, s := range scored {
		if s.score != topScore {
			break
		}
		selected = append(selected, s)
		if len(selected) >= 2 {
			break
		}
	}

	coarseScores := map[string]int{}
	var fineTypes []string
	seenFine := map[string]struct{}{}
	for _, s := range selected {
		coarseScores[s.rule.Coarse] += s.score
		if _, ok := seenFine[s.rule.Fine]; !ok {
			seenFine[s.rule.Fine] = struct{}{}
			fineTypes = append(fineTypes, s.rule.Fine)
		}
	}

	type coarseCount struct {
		name  string
		count int
	}
	var coarseList []coarseCount
	for name, count := range coarseScores {
		coarseList = append(coarseList, coarseCount{name, count})
	}
	sort.Slice(coarseList, func(i, j int) bool {
		if coarseList[i].count != coarseList[j].count {
			return coarseList[i].count > coarseList[j].count
		}
		return coarseList[i].name < coarseList[j].name
	})
	var coarseTypes []string
	for _, c := range coarseList {
		coarseTypes = append(coarseTypes, c.name)
		if len(coarseTypes) >= 2 {
			break
		}
	}

	if len(coarseTypes) == 0 {
		coarseTypes = []string{"MISC"}
	}
	if len(fineTypes) == 0 {
		fineTypes = []string{"ENTITY"}
	}
	return coarseTypes, fineTypes, RuleVersion
}

func hasEnglishText(labels map[string]string, aliases map[string][]string, descriptions map[string]string) bool {
	if v, ok := descriptions["en"]; ok && v != "" {
		return true
	}
	if v, ok := labels["en"]; ok && v != "" {
		return true
	}
	for _, alias := range aliases["en"] {
		if wikidata.NormalizeText(alias) != "" {
			return true
		}
	}
	return false
}

func collectTextValues(labels map[string]string, aliases map[string][]string, descriptions map[string]string) []string {
	englishOnly := hasEnglishText(labels, aliases, descriptions)

	var values []string
	seen := map[string]struct{}{}
	add := func(s string) {
		candidate := wikidata.NormalizeText(s)
		if candidate == "" {
			return
		}
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		values = append(values, candidate)
	}

	descLangs := languageOrder(descriptions, englishOnly)
	for _, lang := range descLangs {
		if v, ok := descriptions[lang]; ok {
			add(v)
		}
	}
	labelLangs := languageOrder(labels, englishOnly)
	for _, lang := range labelLangs {
		if v, ok := labels[lang]; ok {
			add(v)
		}
	}
	aliasLangs := aliasLanguageOrder(aliases, englishOnly)
	for _, lang := range aliasLangs {
		for _, alias := range aliases[lang] {
			add(alias)
		}
	}
	return values
}

func languageOrder(m map[string]string, englishOnly bool) []string {
	if englishOnly {
		return []string{"en"}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func aliasLanguageOrder(m map[string][]string, englishOnly bool) []string {
	if englishOnly {
		return []string{"en"}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
