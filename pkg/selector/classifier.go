// Package selector classifies locator expressions by strategy and scores
// how likely each one is to break under unrelated UI changes.
//
// Both entry points are total, pure functions: every input classifies to
// exactly one strategy (css is the fallback), and identical input always
// yields identical scores and candidates.
//
// Strategies:
//
//	testid      - data-testid attribute or getByTestId accessor
//	role        - accessible role, optionally with accessible name
//	text        - text content accessor or text pseudo-selector
//	css         - everything attribute/class/id/tag shaped (fallback)
//	xpath       - path-expression syntax
//	placeholder - placeholder-attribute accessor
package selector

import (
	"strings"
)

// Strategy identifies how a selector locates its element.
type Strategy string

const (
	StrategyTestID      Strategy = "testid"
	StrategyRole        Strategy = "role"
	StrategyText        Strategy = "text"
	StrategyCSS         Strategy = "css"
	StrategyXPath       Strategy = "xpath"
	StrategyPlaceholder Strategy = "placeholder"
)

// Details holds the structured breakdown of a classified selector.
type Details struct {
	Role           string            `json:"role,omitempty"`
	AccessibleName string            `json:"accessible_name,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
}

// Improvement is one suggested replacement selector.
type Improvement struct {
	Strategy  Strategy `json:"strategy"`
	Rendered  string   `json:"rendered_selector,omitempty"`
	Rationale string   `json:"rationale"`

	// SourceChangeRequired marks the non-actionable case: nothing stable
	// can be derived from the selector, the application source itself
	// needs a stable attribute added.
	SourceChangeRequired bool `json:"source_change_required,omitempty"`
}

// Selector is a classified and scored locator expression. Two selectors
// are equal iff their normalized Raw strings match exactly.
type Selector struct {
	Raw            string        `json:"raw"`
	Strategy       Strategy      `json:"strategy"`
	Details        Details       `json:"structured_details"`
	FragilityScore int           `json:"fragility_score"`
	Improvements   []Improvement `json:"improvement_candidates,omitempty"`
}

// Classify determines the strategy and structured details for a raw
// locator expression. First match wins, in the fixed precedence order
// testid, role, text, xpath, placeholder; css is the fallback.
func Classify(raw string) Selector {
	norm := strings.TrimSpace(raw)
	sel := Selector{Raw: norm}

	switch {
	case isTestID(norm):
		sel.Strategy = StrategyTestID
		sel.Details.Attributes = map[string]string{"data-testid": testIDValue(norm)}

	case isRole(norm):
		sel.Strategy = StrategyRole
		sel.Details.Role, sel.Details.AccessibleName = roleDetails(norm)

	case isText(norm):
		sel.Strategy = StrategyText

	case isXPath(norm):
		sel.Strategy = StrategyXPath

	case isPlaceholder(norm):
		sel.Strategy = StrategyPlaceholder
		if v := accessorArg(norm, "getByPlaceholder"); v != "" {
			sel.Details.Attributes = map[string]string{"placeholder": v}
		} else if attrs := parseAttributes(norm); len(attrs) > 0 {
			sel.Details.Attributes = attrs
		}

	default:
		sel.Strategy = StrategyCSS
		if attrs := parseAttributes(norm); len(attrs) > 0 {
			sel.Details.Attributes = attrs
		}
	}

	return sel
}

func isTestID(s string) bool {
	return strings.HasPrefix(s, "getByTestId(") ||
		strings.Contains(s, "[data-testid") ||
		strings.Contains(s, "[data-test-id") ||
		strings.Contains(s, "[data-test=")
}

func isRole(s string) bool {
	return strings.HasPrefix(s, "getByRole(") || strings.HasPrefix(s, "role=")
}

func isText(s string) bool {
	return strings.HasPrefix(s, "getByText(") ||
		strings.HasPrefix(s, "getByLabel(") ||
		strings.HasPrefix(s, "text=") ||
		strings.Contains(s, ":has-text(") ||
		strings.Contains(s, ":text(") ||
		strings.Contains(s, ":text-is(")
}

func isXPath(s string) bool {
	return strings.HasPrefix(s, "//") || strings.HasPrefix(s, "xpath=") ||
		strings.HasPrefix(s, "(//")
}

func isPlaceholder(s string) bool {
	return strings.HasPrefix(s, "getByPlaceholder(") || strings.Contains(s, "[placeholder")
}

// testIDValue pulls the test id out of either accessor or attribute form.
func testIDValue(s string) string {
	if v := accessorArg(s, "getByTestId"); v != "" {
		return v
	}
	for _, key := range []string{"data-testid", "data-test-id", "data-test"} {
		attrs := parseAttributes(s)
		if v, ok := attrs[key]; ok {
			return v
		}
	}
	return ""
}

// roleDetails extracts role and accessible name from getByRole('button',
// { name: 'Sign in' }) or role=button[name="Sign in"].
func roleDetails(s string) (role, name string) {
	if strings.HasPrefix(s, "getByRole(") {
		args := callBody(s, "getByRole")
		parts := splitTop(args)
		if len(parts) > 0 {
			role = unquoteTrim(parts[0])
		}
		if i := strings.Index(args, "name:"); i >= 0 {
			rest := strings.TrimSpace(args[i+len("name:"):])
			name = leadingQuoted(rest)
		}
		return role, name
	}
	// role=button[name="Sign in"]
	rest := strings.TrimPrefix(s, "role=")
	if i := strings.Index(rest, "["); i >= 0 {
		role = rest[:i]
		attrs := parseAttributes(rest[i:])
		name = attrs["name"]
	} else {
		role = rest
	}
	return role, name
}

// accessorArg returns the first string argument of name(...) when s is
// that accessor form.
func accessorArg(s, name string) string {
	if !strings.HasPrefix(s, name+"(") {
		return ""
	}
	parts := splitTop(callBody(s, name))
	if len(parts) == 0 {
		return ""
	}
	return unquoteTrim(parts[0])
}

// callBody returns the text inside the balanced parens of a leading
// name(...) call.
func callBody(s, name string) string {
	open := len(name)
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[open+1 : i]
			}
		}
	}
	return s[open+1:]
}

// splitTop splits on top-level commas respecting quotes and brackets.
func splitTop(s string) []string {
	var parts []string
	depth, start := 0, 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if strings.TrimSpace(s[start:]) != "" {
		parts = append(parts, s[start:])
	}
	return parts
}

func unquoteTrim(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		c := s[0]
		if (c == '\'' || c == '"' || c == '`') && s[len(s)-1] == c {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// leadingQuoted returns the quoted string at the start of s, if any.
func leadingQuoted(s string) string {
	if s == "" {
		return ""
	}
	q := s[0]
	if q != '\'' && q != '"' && q != '`' {
		return ""
	}
	for i := 1; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == q {
			return s[1:i]
		}
	}
	return ""
}

// parseAttributes collects [key=value] groups from a CSS-ish selector.
// Values may be quoted or bare; the = may carry ^, $, * prefixes which
// are dropped.
func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	for i := 0; i < len(s); i++ {
		if s[i] != '[' {
			continue
		}
		j := strings.IndexByte(s[i:], ']')
		if j < 0 {
			break
		}
		group := s[i+1 : i+j]
		i += j
		eq := strings.IndexByte(group, '=')
		if eq < 0 {
			if group != "" {
				attrs[group] = ""
			}
			continue
		}
		key := strings.TrimRight(group[:eq], "^$*~|")
		attrs[key] = unquoteTrim(group[eq+1:])
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}
