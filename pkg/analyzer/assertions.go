package analyzer

import (
	"strings"
)

// Placement recommendations.
const (
	PlaceInPageObject   = "in_page_object"
	PlaceSeparateMethod = "separate_method"
	PlaceInTest         = "in_test"
)

// knownAssertionTypes is the closed set; every other matcher is custom.
var knownAssertionTypes = map[string]bool{
	"toContainText": true,
	"toHaveURL":     true,
	"toBeVisible":   true,
	"toHaveValue":   true,
}

// ClassifyAssertions assigns a type and placement recommendation to every
// assertion across all pages. Placement needs document-wide recurrence
// counts, so this runs once after page detection.
func ClassifyAssertions(pages []*Page) {
	// First pass: types and shape counts.
	shapeCount := map[string]int{}
	for _, p := range pages {
		for _, as := range p.Assertions {
			as.Type = assertionType(as.Stmt.ActionVerb)
			shapeCount[assertionShape(as)]++
		}
	}

	// Second pass: placement. An assertion right after the interaction
	// that caused the checked change belongs in the page object; a shape
	// recurring across the document earns its own method; everything
	// else stays in the test.
	for _, p := range pages {
		for _, as := range p.Assertions {
			switch {
			case as.PrevInteraction && causedByInteraction(as.Type):
				as.Placement = PlaceInPageObject
			case shapeCount[assertionShape(as)] >= 2:
				as.Placement = PlaceSeparateMethod
			default:
				as.Placement = PlaceInTest
			}
		}
	}
}

// assertionType maps the expectation keyword; negated matchers classify
// by their base keyword.
func assertionType(verb string) string {
	v := strings.TrimPrefix(verb, "not.")
	if knownAssertionTypes[v] {
		return v
	}
	return "custom"
}

// causedByInteraction reports assertion types that check state an
// interaction itself changes (URL, visibility, input value).
func causedByInteraction(t string) bool {
	return t == "toHaveURL" || t == "toBeVisible" || t == "toHaveValue"
}

// assertionShape is the recurrence key: type plus normalized selector.
func assertionShape(as *Assertion) string {
	sel := ""
	if as.Selector != nil {
		sel = strings.ToLower(strings.Join(strings.Fields(as.Selector.Raw), " "))
	}
	return as.Type + "|" + sel
}
