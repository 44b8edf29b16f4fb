package redirect

import (
	"testing"

	"github.com/coolbeans/abbrevbot/pkg/rcat"
)

const target = "Journal of Foo"

func TestIsValidAcceptsGeneratedContent(t *testing.T) {
	// Everything the bot generates must be recognized as already valid.
	sets := []rcat.Set{
		rcat.ISO4,
		rcat.NLM,
		rcat.MSN,
		rcat.ISO4.Union(rcat.NLM),
		rcat.ISO4.Union(rcat.MSN),
		rcat.ISO4.Union(rcat.NLM).Union(rcat.MSN),
	}
	for _, set := range sets {
		t.Run(set.String(), func(t *testing.T) {
			content := rcat.Content(target, set)
			if !IsValid(content, target, set, Strict) {
				t.Errorf("generated content not accepted:\n%s", content)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	cases := []struct {
		name     string
		content  string
		required rcat.Set
		mode     Mode
		expected bool
	}{
		{
			"canonical single marker strict",
			"#REDIRECT[[Journal of Foo]]\n{{R from ISO 4}}",
			rcat.ISO4, Strict, true,
		},
		{
			"marker synonym accepted",
			"#REDIRECT[[Journal of Foo]]\n{{R from ISO 4 abbreviation}}",
			rcat.ISO4, Strict, true,
		},
		{
			"medline synonym maps to NLM",
			"#REDIRECT[[Journal of Foo]]\n{{R from MEDLINE}}",
			rcat.NLM, Strict, true,
		},
		{
			"spacing and case variations",
			"#redirect [[Journal_of_Foo]] {{R from ISO4}}",
			rcat.ISO4, Strict, true,
		},
		{
			"missing required category",
			"#REDIRECT[[Journal of Foo]]\n{{R from ISO 4}}",
			rcat.ISO4.Union(rcat.NLM), Strict, false,
		},
		{
			"extra category fails strict",
			"#REDIRECT[[Journal of Foo]]\n\n{{Redirect shell |\n  {{R from ISO 4}}\n  {{R from NLM}}\n}}",
			rcat.ISO4, Strict, false,
		},
		{
			"extra category passes lenient",
			"#REDIRECT[[Journal of Foo]]\n\n{{Redirect shell |\n  {{R from ISO 4}}\n  {{R from NLM}}\n}}",
			rcat.ISO4, Lenient, true,
		},
		{
			"printworthy marker ignored",
			"#REDIRECT[[Journal of Foo]]\n{{R from ISO 4}}\n{{R unprintworthy}}",
			rcat.ISO4, Strict, true,
		},
		{
			"section fragment tolerated",
			"#REDIRECT[[Journal of Foo#History]]\n{{R from ISO 4}}",
			rcat.ISO4, Strict, true,
		},
		{
			"wrong target",
			"#REDIRECT[[Journal of Bar]]\n{{R from ISO 4}}",
			rcat.ISO4, Strict, false,
		},
		{
			"unknown template rejects",
			"#REDIRECT[[Journal of Foo]]\n{{R from ISO 4}}\n{{DEFAULTSORT:Foo}}",
			rcat.ISO4, Strict, false,
		},
		{
			"not a redirect",
			"'''Journal of Foo''' is a journal.",
			rcat.ISO4, Strict, false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsValid(tc.content, target, tc.required, tc.mode)
			if got != tc.expected {
				t.Errorf("IsValid(%q, required=%v, mode=%v) = %v, want %v",
					tc.content, tc.required, tc.mode, got, tc.expected)
			}
		})
	}
}

// Lenient acceptance must imply that the existing categories are a superset
// of the required ones, checked here via the strict/lenient relationship.
func TestLenientImpliesSuperset(t *testing.T) {
	content := rcat.Content(target, rcat.ISO4.Union(rcat.NLM))
	if !IsValid(content, target, rcat.ISO4, Lenient) {
		t.Fatal("subset requirement should pass lenient mode")
	}
	if IsValid(content, target, rcat.ISO4, Strict) {
		t.Fatal("subset requirement must fail strict mode")
	}
	if IsValid(content, target, rcat.MSN, Lenient) {
		t.Fatal("category absent from content must fail even lenient mode")
	}
}
