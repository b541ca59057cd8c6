package wikidata_test

import (
	"testing"

	"github.com/entityretrieval/entityretrieval/internal/wikidata"
)

func TestCompactWikipediaRef(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://en.wikipedia.org/wiki/Apple_Inc.", "Apple_Inc."},
		{"http://en.wikipedia.org/wiki/Apple_Inc.", "Apple_Inc."},
		{"Apple_Inc.", "Apple_Inc."},
		{"", ""},
		{"  https://en.wikipedia.org/wiki/Go_(programming_language)  ", "Go_(programming_language)"},
	}
	for _, c := range cases {
		if got := wikidata.CompactWikipediaRef(c.in); got != c.want {
			t.Errorf("CompactWikipediaRef(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCompactDBpediaRef(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://dbpedia.org/resource/Apple_Inc.", "Apple_Inc."},
		{"Apple_Inc.", "Apple_Inc."},
		{"", ""},
	}
	for _, c := range cases {
		if got := wikidata.CompactDBpediaRef(c.in); got != c.want {
			t.Errorf("CompactDBpediaRef(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCompactCrosslinkHintTriesBothPrefixes(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://en.wikipedia.org/wiki/Apple_Inc.", "Apple_Inc."},
		{"https://dbpedia.org/resource/Apple_Inc.", "Apple_Inc."},
		{"Apple%20Inc.", "Apple Inc."},
		{"", ""},
	}
	for _, c := range cases {
		if got := wikidata.CompactCrosslinkHint(c.in); got != c.want {
			t.Errorf("CompactCrosslinkHint(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
