package analyzer

import (
	"strings"
)

// pascalWords converts free text ("Sign in", "user-menu") into PascalCase.
func pascalWords(s string) string {
	var b strings.Builder
	newWord := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			if newWord {
				b.WriteRune(r - 32)
			} else {
				b.WriteRune(r)
			}
			newWord = false
		case r >= 'A' && r <= 'Z':
			if newWord {
				b.WriteRune(r)
			} else {
				b.WriteRune(r + 32)
			}
			newWord = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			newWord = true
		default:
			newWord = true
		}
	}
	return b.String()
}

// camel lowercases the first rune of a PascalCase name.
func camel(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'A' && s[0] <= 'Z' {
		return string(s[0]+32) + s[1:]
	}
	return s
}

// urlNoun picks the naming-relevant segment of a URL pattern: the last
// path segment that is not a wildcard, parameter, or bare number.
func urlNoun(pattern string) string {
	p := pattern
	if i := strings.Index(p, "?"); i >= 0 {
		p = p[:i]
	}
	if i := strings.Index(p, "://"); i >= 0 {
		p = p[i+3:]
		if j := strings.Index(p, "/"); j >= 0 {
			p = p[j:]
		} else {
			p = "/"
		}
	}
	segs := strings.Split(p, "/")
	for i := len(segs) - 1; i >= 0; i-- {
		s := segs[i]
		if s == "" || s == "*" || s == "**" || strings.HasPrefix(s, ":") || isDigits(s) {
			continue
		}
		return s
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// selectorNoun extracts a naming token from a selector: test id, name
// attribute, id, or first class, in that order.
func selectorNoun(a *Action) string {
	if a.Selector == nil {
		return ""
	}
	sel := a.Selector
	if v := sel.Details.Attributes["data-testid"]; v != "" {
		return v
	}
	if sel.Details.AccessibleName != "" {
		return sel.Details.AccessibleName
	}
	for _, key := range []string{"name", "placeholder", "id", "aria-label"} {
		if v := sel.Details.Attributes[key]; v != "" {
			return v
		}
	}
	raw := sel.Raw
	if strings.HasPrefix(raw, "#") {
		return strings.TrimLeft(strings.SplitN(raw[1:], " ", 2)[0], "#")
	}
	if strings.HasPrefix(raw, ".") {
		return strings.SplitN(raw[1:], " ", 2)[0]
	}
	return ""
}

// actionContent returns the explicit test-id or text content of an
// action's selector, the strongest naming signal method inference has.
func actionContent(a *Action) string {
	if a.Selector == nil {
		return ""
	}
	sel := a.Selector
	if sel.Details.AccessibleName != "" {
		return sel.Details.AccessibleName
	}
	if v := sel.Details.Attributes["data-testid"]; v != "" {
		return v
	}
	raw := sel.Raw
	for _, acc := range []string{"getByText(", "getByLabel(", "getByTestId("} {
		if strings.HasPrefix(raw, acc) {
			inner := raw[len(acc):]
			if j := strings.IndexByte(inner, ')'); j >= 0 {
				return strings.Trim(inner[:j], "'\"` ")
			}
		}
	}
	if strings.HasPrefix(raw, "text=") {
		return strings.TrimPrefix(raw, "text=")
	}
	if i := strings.Index(raw, ":has-text("); i >= 0 {
		inner := raw[i+len(":has-text("):]
		if j := strings.IndexByte(inner, ')'); j >= 0 {
			return strings.Trim(inner[:j], "'\"` ")
		}
	}
	return ""
}
