// Package nertype assigns a deterministic (coarse, fine) type pair to an
// entity from a fixed, ordered lexical rule table over its label/alias/
// description text. No machine learning, no external NER model — the rules
// are intentionally simple token/phrase clue matches.
package nertype

// Rule is one entry of the fixed, ordered lexical rule table.
type Rule struct {
	Coarse      string
	Fine        string
	TokenClues  map[string]struct{}
	PhraseClues []string
	MinScore    int
}

func tokenSet(tokens ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// Rules is the fixed lexical rule table. Its order does not affect the
// result of [InferTypes]: scores are computed independently per rule, ties
// are broken by fine type ascending, and every fine type is unique.
var Rules = []Rule{
	{
		Coarse: "PERSON", Fine: "HUMAN", MinScore: 1,
		TokenClues: tokenSet(
			"person", "actor", "actress", "singer", "musician", "politician",
			"writer", "author", "athlete", "footballer", "scientist", "artist",
			"director", "poet", "philosopher", "journalist", "engineer", "doctor",
			"composer", "president", "founder", "professor",
		),
		PhraseClues: []string{"human being", "prime minister", "head of state", "president of"},
	},
	{
		Coarse: "PERSON", Fine: "FICTIONAL_CHARACTER", MinScore: 2,
		TokenClues:  tokenSet("fictional", "character", "superhero", "villain", "protagonist"),
		PhraseClues: []string{"fictional character"},
	},
	{
		Coarse: "ORGANIZATION", Fine: "COMPANY", MinScore: 1,
		TokenClues: tokenSet(
			"company", "corporation", "business", "manufacturer", "enterprise",
			"startup", "firm", "multinational",
		),
	},
	{
		Coarse: "ORGANIZATION", Fine: "NONPROFIT_ORG", MinScore: 1,
		TokenClues:  tokenSet("foundation", "charitable", "nonprofit", "non-profit", "ngo"),
		PhraseClues: []string{"charitable organization", "non-profit organization"},
	},
	{
		Coarse: "ORGANIZATION", Fine: "GOVERNMENT_ORG", MinScore: 1,
		TokenClues: tokenSet(
			"government", "ministry", "department", "agency", "parliament",
			"senate", "council", "municipality",
		),
	},
	{
		Coarse: "ORGANIZATION", Fine: "EDUCATIONAL_ORG", MinScore: 1,
		TokenClues: tokenSet("university", "college", "school", "institute", "academy"),
	},
	{
		Coarse: "ORGANIZATION", Fine: "SPORTS_TEAM", MinScore: 1,
		TokenClues:  tokenSet("team", "fc", "athletic", "basketball", "baseball", "soccer", "hockey"),
		PhraseClues: []string{"football club"},
	},
	{
		Coarse: "LOCATION", Fine: "COUNTRY", MinScore: 1,
		TokenClues:  tokenSet("country", "nation", "republic", "kingdom", "sovereign"),
		PhraseClues: []string{"sovereign state", "independent state", "country in"},
	},
	{
		Coarse: "LOCATION", Fine: "CITY", MinScore: 1,
		TokenClues: tokenSet(
			"city", "town", "municipality", "capital", "village", "metropolis",
			"megacity", "commune", "arrondissement", "borough", "suburb",
			"settlement", "cidade", "ciudad", "stadt", "comune", "municipio",
		),
		PhraseClues: []string{
			"city in", "town in", "village in", "capital of", "county seat",
			"census-designated place", "global city", "national capital",
			"primate city", "largest city",
		},
	},
	{
		Coarse: "LOCATION", Fine: "REGION", MinScore: 1,
		TokenClues: tokenSet("region", "province", "district", "county", "territory", "continent"),
		PhraseClues: []string{
			"state of the united states", "state in the united states",
			"federal state", "autonomous region",
		},
	},
	{
		Coarse: "LOCATION", Fine: "LANDMARK", MinScore: 1,
		TokenClues: tokenSet(
			"ocean", "sea", "gulf", "bay", "strait", "mountain", "river", "lake",
			"island", "airport", "station", "bridge", "building", "monument",
			"desert", "valley", "volcano",
		),
	},
	{
		Coarse: "LOCATION", Fine: "CELESTIAL_BODY", MinScore: 1,
		TokenClues:  tokenSet("planet", "moon", "star", "galaxy", "asteroid", "comet", "universe"),
		PhraseClues: []string{"solar system", "celestial body"},
	},
	{
		Coarse: "EVENT", Fine: "CONFLICT", MinScore: 2,
		TokenClues:  tokenSet("war", "battle", "revolution", "uprising", "campaign"),
		PhraseClues: []string{"armed conflict", "military conflict", "civil war"},
	},
	{
		Coarse: "EVENT", Fine: "SPORT_EVENT", MinScore: 2,
		TokenClues: tokenSet("tournament", "championship", "olympics", "cup", "season"),
	},
	{
		Coarse: "EVENT", Fine: "EVENT_GENERIC", MinScore: 2,
		TokenClues: tokenSet("event", "festival", "conference", "election", "summit"),
	},
	{
		Coarse: "WORK", Fine: "FILM", MinScore: 1,
		TokenClues: tokenSet("film", "movie", "documentary", "cinema"),
	},
	{
		Coarse: "WORK", Fine: "BOOK", MinScore: 1,
		TokenClues: tokenSet("book", "novel", "poem", "literature"),
	},
	{
		Coarse: "WORK", Fine: "MUSIC_WORK", MinScore: 1,
		TokenClues: tokenSet("song", "album", "opera", "symphony", "anthem"),
	},
	{
		Coarse: "WORK", Fine: "SOFTWARE", MinScore: 1,
		TokenClues:  tokenSet("software", "application", "app", "program", "library", "framework"),
		PhraseClues: []string{"operating system"},
	},
	{
		Coarse: "WORK", Fine: "INTERNET_MEME", MinScore: 1,
		TokenClues:  tokenSet("meme"),
		PhraseClues: []string{"internet meme"},
	},
	{
		Coarse: "PRODUCT", Fine: "DEVICE", MinScore: 1,
		TokenClues: tokenSet(
			"device", "smartphone", "phone", "laptop", "hardware", "vehicle",
			"aircraft", "airliner", "automobile", "printer", "train",
		),
	},
	{
		Coarse: "PRODUCT", Fine: "MEDICATION", MinScore: 1,
		TokenClues: tokenSet("drug", "medicine", "vaccine", "antibiotic", "treatment"),
	},
	{
		Coarse: "PRODUCT", Fine: "FOOD_BEVERAGE", MinScore: 1,
		TokenClues: tokenSet(
			"beverage", "drink", "food", "dish", "cuisine", "snack", "meal",
			"alcoholic", "non-alcoholic", "nonalcoholic",
		),
		PhraseClues: []string{"alcoholic beverage", "non-alcoholic beverage"},
	},
	{
		Coarse: "PRODUCT", Fine: "PRODUCT_GENERIC", MinScore: 1,
		TokenClues: tokenSet("product", "brand", "model"),
	},
	{
		Coarse: "CONCEPT", Fine: "LANGUAGE", MinScore: 1,
		TokenClues: tokenSet("language", "dialect"),
	},
	{
		Coarse: "CONCEPT", Fine: "LAW", MinScore: 2,
		TokenClues:  tokenSet("law", "statute", "treaty", "regulation", "directive", "constitution", "code"),
		PhraseClues: []string{"law of", "act of", "treaty of", "regulation of"},
	},
	{
		Coarse: "CONCEPT", Fine: "SCIENTIFIC_THEORY", MinScore: 1,
		TokenClues: tokenSet("theory", "principle", "equation", "theorem", "hypothesis"),
	},
	{
		Coarse: "CONCEPT", Fine: "BIOLOGICAL_TAXON", MinScore: 1,
		TokenClues: tokenSet("species", "genus", "taxon", "subspecies", "clade", "mammal"),
	},
	{
		Coarse: "CONCEPT", Fine: "ANATOMY", MinScore: 2,
		TokenClues:  tokenSet("organ", "anatomy", "anatomical", "muscle", "bone", "artery", "vein"),
		PhraseClues: []string{"part of the body", "part of body", "sexual organ", "anatomical structure"},
	},
}
