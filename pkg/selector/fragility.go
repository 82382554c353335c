package selector

import (
	"strings"
)

// StabilityThreshold is the score above which a selector is considered
// fragile enough to warrant improvement candidates and a quality flag.
const StabilityThreshold = 40

// baseScore is the neutral starting point before signals apply.
const baseScore = 50

// Fragility signal weights. Penalties raise the score, credits lower it.
const (
	penaltyXPath       = 40
	penaltyPositional  = 35
	penaltyPlaceholder = 30
	penaltyClassOnly   = 25
	penaltyTextOnly    = 20
	penaltyDeepNesting = 15
	penaltyIDOnly      = 10
	penaltyMultiAttr   = 5

	creditTestID       = 40
	creditRole         = 30
	creditNameWithType = 20
	creditAria         = 15
	creditLabel        = 10
)

var positionalMarkers = []string{
	":nth-child(", ":nth-of-type(", ":first-child", ":last-child",
	":first-of-type", ":last-of-type", "nth=",
}

// FragilityScore computes the 0-100 fragility estimate for a classified
// selector. Pure function: the same selector always scores the same.
func FragilityScore(sel Selector) int {
	raw := sel.Raw
	score := baseScore

	if sel.Strategy == StrategyXPath || strings.Contains(raw, "//") {
		score += penaltyXPath
	}
	if hasPositional(raw) {
		score += penaltyPositional
	}
	if sel.Strategy == StrategyPlaceholder {
		score += penaltyPlaceholder
	}
	if isClassOnly(sel) {
		score += penaltyClassOnly
	}
	if sel.Strategy == StrategyText {
		score += penaltyTextOnly
	}
	if nestingLevels(sel) > 3 {
		score += penaltyDeepNesting
	}
	if isIDOnly(sel) {
		score += penaltyIDOnly
	}
	if strings.Count(raw, "[") >= 2 {
		score += penaltyMultiAttr
	}

	if sel.Strategy == StrategyTestID {
		score -= creditTestID
	}
	if sel.Strategy == StrategyRole {
		score -= creditRole
	}
	if _, okName := sel.Details.Attributes["name"]; okName {
		if _, okType := sel.Details.Attributes["type"]; okType {
			score -= creditNameWithType
		}
	}
	if strings.Contains(raw, "aria-") {
		score -= creditAria
	}
	if strings.HasPrefix(raw, "getByLabel(") {
		score -= creditLabel
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// hasPositional detects ordinal pseudo-selectors and xpath index steps.
func hasPositional(raw string) bool {
	for _, m := range positionalMarkers {
		if strings.Contains(raw, m) {
			return true
		}
	}
	// xpath-style index: [2]
	for i := 0; i < len(raw)-1; i++ {
		if raw[i] != '[' {
			continue
		}
		j := i + 1
		for j < len(raw) && raw[j] >= '0' && raw[j] <= '9' {
			j++
		}
		if j > i+1 && j < len(raw) && raw[j] == ']' {
			return true
		}
	}
	return false
}

// isClassOnly reports a CSS selector built from class names alone.
func isClassOnly(sel Selector) bool {
	if sel.Strategy != StrategyCSS {
		return false
	}
	raw := sel.Raw
	if raw == "" || strings.ContainsAny(raw, "[#") {
		return false
	}
	for _, tok := range strings.FieldsFunc(raw, func(r rune) bool { return r == ' ' || r == '>' }) {
		if tok == "" {
			continue
		}
		if !strings.HasPrefix(tok, ".") {
			return false
		}
	}
	return strings.HasPrefix(raw, ".")
}

// isIDOnly reports a bare #id selector.
func isIDOnly(sel Selector) bool {
	if sel.Strategy != StrategyCSS || !strings.HasPrefix(sel.Raw, "#") {
		return false
	}
	return !strings.ContainsAny(sel.Raw[1:], " >.#[")
}

// nestingLevels counts combinator levels: descendant/child steps in CSS,
// path steps in xpath.
func nestingLevels(sel Selector) int {
	raw := sel.Raw
	if sel.Strategy == StrategyXPath {
		return strings.Count(raw, "/") - strings.Count(raw, "//")
	}
	levels := 0
	depth := 0
	var quote byte
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ' ', '>':
			if depth == 0 {
				levels++
				for i+1 < len(raw) && (raw[i+1] == ' ' || raw[i+1] == '>') {
					i++
				}
			}
		}
	}
	return levels
}

// Improvements generates replacement candidates for a fragile selector,
// in the configured strategy preference order. Called only for selectors
// above StabilityThreshold; returns the single non-actionable candidate
// when the selector has no derivable stable content.
func Improvements(sel Selector, preferred []Strategy) []Improvement {
	content := derivableContent(sel)
	if content == "" {
		return []Improvement{{
			Strategy:             StrategyTestID,
			Rationale:            "no stable text or attribute content can be derived from this selector; add a data-testid attribute to the element in the application source",
			SourceChangeRequired: true,
		}}
	}

	if len(preferred) == 0 {
		preferred = []Strategy{StrategyTestID, StrategyRole}
	}

	var out []Improvement
	for _, p := range preferred {
		switch p {
		case StrategyTestID:
			out = append(out, Improvement{
				Strategy:  StrategyTestID,
				Rendered:  "getByTestId('" + slug(content) + "')",
				Rationale: "a dedicated test id derived from \"" + content + "\" survives markup and styling changes",
			})
		case StrategyRole:
			role := sel.Details.Role
			if role == "" {
				role = impliedRole(sel)
			}
			if role == "" {
				continue
			}
			out = append(out, Improvement{
				Strategy:  StrategyRole,
				Rendered:  "getByRole('" + role + "', { name: '" + content + "' })",
				Rationale: "an accessible role with name \"" + content + "\" tracks the element's semantics rather than its markup",
			})
		}
	}
	return out
}

// derivableContent finds text or attribute content in the selector that a
// stable replacement could be built from. Class names and positions are
// structure, not content, and never qualify.
func derivableContent(sel Selector) string {
	if sel.Details.AccessibleName != "" {
		return sel.Details.AccessibleName
	}
	for _, acc := range []string{"getByText", "getByLabel", "getByPlaceholder"} {
		if v := accessorArg(sel.Raw, acc); v != "" {
			return v
		}
	}
	if i := strings.Index(sel.Raw, ":has-text("); i >= 0 {
		return unquoteTrim(callBody(sel.Raw[i+1:], "has-text"))
	}
	if strings.HasPrefix(sel.Raw, "text=") {
		return strings.TrimPrefix(sel.Raw, "text=")
	}
	for _, key := range []string{"placeholder", "name", "aria-label", "title"} {
		if v := sel.Details.Attributes[key]; v != "" {
			return v
		}
	}
	return ""
}

// impliedRole guesses a role for strategies that imply one.
func impliedRole(sel Selector) string {
	if sel.Strategy == StrategyPlaceholder {
		return "textbox"
	}
	return ""
}

// slug lowercases content into a hyphenated test-id token.
func slug(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Analyze is the convenience entry: classify, score, and (when requested
// and warranted) attach improvement candidates.
func Analyze(raw string, preferred []Strategy, suggest bool) Selector {
	sel := Classify(raw)
	sel.FragilityScore = FragilityScore(sel)
	if suggest && sel.FragilityScore > StabilityThreshold {
		sel.Improvements = Improvements(sel, preferred)
	}
	return sel
}
