package script

import (
	"errors"
	"strings"
)

// ErrNoStatements is returned by callers that require at least one semantic
// statement. Extraction itself never fails; an empty or comment-only input
// is only an error once something needs to analyze it.
var ErrNoStatements = errors.New("script contains no recognizable statements")

// maxContinuationLines caps how many physical lines one logical statement
// may span before the extractor gives up and treats the rest separately.
const maxContinuationLines = 20

// interactionVerbs are the element-interaction call names the extractor
// recognizes. Order does not matter; longest-match is handled by scanning
// for the final call in the chain.
var interactionVerbs = map[string]bool{
	"click":                  true,
	"dblclick":               true,
	"fill":                   true,
	"type":                   true,
	"press":                  true,
	"check":                  true,
	"uncheck":                true,
	"selectOption":           true,
	"hover":                  true,
	"focus":                  true,
	"blur":                   true,
	"tap":                    true,
	"clear":                  true,
	"setInputFiles":          true,
	"dragTo":                 true,
	"selectText":             true,
	"scrollIntoViewIfNeeded": true,
}

// locatorAccessors mark the start of a locator chain inside a receiver
// expression.
var locatorAccessors = []string{
	"locator(",
	"getByTestId(",
	"getByRole(",
	"getByText(",
	"getByLabel(",
	"getByPlaceholder(",
	"getByAltText(",
	"getByTitle(",
	"frameLocator(",
}

// Extract tokenizes raw script text into an ordered statement sequence.
// It is a pure function of the input text and never fails; every line is
// either part of a recognized statement or recorded as structural.
func Extract(text string) []Statement {
	lines := strings.Split(text, "\n")
	stmts := make([]Statement, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}

		startLine := i + 1
		logical := trimmed

		// Collapse continuation lines while parentheses stay open. A line
		// ending in an open brace is a block opener (test/describe
		// callbacks), never a continuation, even though its paren for the
		// callback argument is still unclosed.
		joined := 0
		for parenBalance(logical) > 0 && !strings.HasSuffix(logical, "{") &&
			i+1 < len(lines) && joined < maxContinuationLines {
			i++
			joined++
			logical += " " + strings.TrimSpace(lines[i])
		}

		stmts = append(stmts, classify(logical, startLine))
	}

	return stmts
}

// HasSemantic reports whether any extracted statement is non-structural.
// Input in which nothing at all is recognizable is the pipeline's single
// fatal condition.
func HasSemantic(stmts []Statement) bool {
	for _, s := range stmts {
		if s.IsSemantic() {
			return true
		}
	}
	return false
}

// classify turns one logical line into a Statement. Unrecognized input
// falls through to a structural statement; nothing is ever dropped.
func classify(raw string, line int) Statement {
	st := Statement{LineNumber: line, RawText: raw, Kind: KindStructural}

	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "await ")
	body = strings.TrimSuffix(body, ";")

	if strings.HasPrefix(body, "//") || strings.HasPrefix(body, "/*") || strings.HasPrefix(body, "*") {
		return st
	}

	// Assertions: expect(target).matcher(expected)
	if idx := indexCall(body, "expect"); idx >= 0 {
		args, end, ok := argSpan(body, idx+len("expect"))
		if ok {
			st.Kind = KindAssertion
			st.SelectorExpression = selectorFromReceiver(strings.TrimSpace(args))
			verb, margs := lastCall(body[end:])
			if verb != "" {
				st.ActionVerb = verb
				st.LiteralArguments = literalArgs(margs)
			}
			return st
		}
	}

	// Navigation
	if args, ok := chainArgs(body, "goto"); ok {
		st.Kind = KindNavigation
		st.ActionVerb = "goto"
		st.TargetURL = firstString(args)
		return st
	}

	// Waits
	if args, ok := chainArgs(body, "waitForURL"); ok {
		st.Kind = KindWait
		st.ActionVerb = "waitForURL"
		st.TargetURL = firstString(args)
		return st
	}
	if args, ok := chainArgs(body, "waitForSelector"); ok {
		st.Kind = KindWait
		st.ActionVerb = "waitForSelector"
		st.SelectorExpression = firstString(args)
		return st
	}
	if args, ok := chainArgs(body, "waitForTimeout"); ok {
		st.Kind = KindWait
		st.ActionVerb = "waitForTimeout"
		st.LiteralArguments = literalArgs(args)
		return st
	}
	if _, ok := chainArgs(body, "waitForLoadState"); ok {
		st.Kind = KindWait
		st.ActionVerb = "waitForLoadState"
		return st
	}
	if args, ok := chainArgs(body, "waitForEvent"); ok {
		st.Kind = KindWait
		st.ActionVerb = "waitForEvent"
		if firstString(args) == "popup" {
			st.Subtype = SubtypeTab
		}
		return st
	}

	// Dialog handlers and dialog actions
	if args, ok := chainArgs(body, "on"); ok && firstString(args) == "dialog" {
		st.Kind = KindInteraction
		st.Subtype = SubtypeDialog
		st.ActionVerb = "onDialog"
		return st
	}
	if strings.Contains(body, "dialog.accept(") || strings.Contains(body, "dialog.dismiss(") {
		st.Kind = KindInteraction
		st.Subtype = SubtypeDialog
		verb, _ := lastCall(body)
		st.ActionVerb = verb
		return st
	}

	// Multi-tab calls
	if strings.Contains(body, ".newPage(") || strings.Contains(body, ".bringToFront(") {
		st.Kind = KindInteraction
		st.Subtype = SubtypeTab
		verb, _ := lastCall(body)
		st.ActionVerb = verb
		return st
	}

	// Element interactions: the final call in the chain decides the verb.
	if verb, vidx, args, ok := finalInteraction(body); ok {
		st.Kind = KindInteraction
		st.ActionVerb = verb
		if verb == "setInputFiles" {
			st.Subtype = SubtypeUpload
		}

		receiver := strings.TrimSpace(strings.TrimSuffix(body[:vidx], "."))
		if endsWithDeviceReceiver(receiver) {
			// page.keyboard.press / page.mouse.click target no element
			st.LiteralArguments = literalArgs(args)
			return st
		}

		if sel, ok := selectorFromChain(receiver); ok {
			st.SelectorExpression = sel
			st.LiteralArguments = literalArgs(args)
			return st
		}

		// Old-style page.click('sel', value...): first argument is the
		// selector, rest are literals.
		parts := splitArgs(args)
		if len(parts) > 0 {
			st.SelectorExpression = unquote(strings.TrimSpace(parts[0]))
			st.LiteralArguments = literalArgs(strings.Join(parts[1:], ","))
		}
		return st
	}

	return st
}

// =============================================================================
// Scanning helpers
// =============================================================================

// parenBalance counts unbalanced parentheses outside string literals.
func parenBalance(s string) int {
	depth := 0
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
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return depth
}

// indexCall finds name immediately followed by ( at a word boundary,
// skipping matches inside string literals. A name starting with '.'
// carries its own left boundary, so only the plain form inspects the
// preceding character.
func indexCall(s, name string) int {
	inStr := quotedMask(s)
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], name+"(")
		if i < 0 {
			return -1
		}
		i += from
		if !inStr[i] && (name[0] == '.' || i == 0 || !isWordChar(s[i-1])) {
			return i
		}
		from = i + len(name)
	}
	return -1
}

// quotedMask marks every byte position that sits inside a string literal,
// quote characters included.
func quotedMask(s string) []bool {
	mask := make([]bool, len(s))
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			mask[i] = true
			if c == '\\' {
				if i+1 < len(s) {
					mask[i+1] = true
				}
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		if c == '\'' || c == '"' || c == '`' {
			quote = c
			mask[i] = true
		}
	}
	return mask
}

func isWordChar(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// argSpan returns the content of the balanced parenthesis group starting
// at s[open] (which must be '(') and the index just past the closing paren.
func argSpan(s string, open int) (args string, end int, ok bool) {
	if open >= len(s) || s[open] != '(' {
		return "", 0, false
	}
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
				return s[open+1 : i], i + 1, true
			}
		}
	}
	return "", 0, false
}

// chainArgs finds .name( anywhere in the statement and returns its argument
// text.
func chainArgs(s, name string) (string, bool) {
	i := indexCall(s, "."+name)
	if i < 0 {
		return "", false
	}
	args, _, ok := argSpan(s, i+1+len(name))
	return args, ok
}

// finalInteraction locates the last recognized interaction verb call in the
// chain. Returns the verb, the index of its leading dot, and its arguments.
// Parens inside string literals are not call sites.
func finalInteraction(s string) (verb string, at int, args string, ok bool) {
	inStr := quotedMask(s)
	for i := len(s) - 1; i > 0; i-- {
		if s[i] != '(' || inStr[i] {
			continue
		}
		// Scan the identifier preceding the paren.
		j := i
		for j > 0 && isIdentChar(s[j-1]) {
			j--
		}
		if j == 0 || s[j-1] != '.' {
			continue
		}
		name := s[j:i]
		if !interactionVerbs[name] {
			continue
		}
		a, _, okSpan := argSpan(s, i)
		if !okSpan {
			a = strings.TrimSuffix(s[i+1:], ")")
		}
		return name, j - 1, a, true
	}
	return "", 0, "", false
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// lastCall returns the name and arguments of the final .name(...) call,
// ignoring parens inside string literals.
func lastCall(s string) (string, string) {
	inStr := quotedMask(s)
	for i := len(s) - 1; i > 0; i-- {
		if s[i] != '(' || inStr[i] {
			continue
		}
		j := i
		for j > 0 && isIdentChar(s[j-1]) {
			j--
		}
		if j == 0 || s[j-1] != '.' || j == i {
			continue
		}
		args, _, ok := argSpan(s, i)
		if !ok {
			args = strings.TrimSuffix(s[i+1:], ")")
		}
		return s[j:i], args
	}
	return "", ""
}

// endsWithDeviceReceiver reports whether the receiver targets the keyboard
// or mouse rather than an element.
func endsWithDeviceReceiver(receiver string) bool {
	return strings.HasSuffix(receiver, ".keyboard") || strings.HasSuffix(receiver, ".mouse") ||
		receiver == "keyboard" || receiver == "mouse"
}

// selectorFromChain extracts the locator expression from a receiver chain
// such as page.getByRole('button', { name: 'Save' }) or
// page.locator('#form').locator('.submit').
func selectorFromChain(receiver string) (string, bool) {
	start := -1
	for _, acc := range locatorAccessors {
		if i := strings.Index(receiver, acc); i >= 0 && (start < 0 || i < start) {
			start = i
		}
	}
	if start < 0 {
		return "", false
	}
	chain := receiver[start:]

	// A chain built purely from locator() calls collapses to the CSS text
	// itself, with descendant combinators between segments.
	if collapsed, ok := collapseLocatorChain(chain); ok {
		return collapsed, true
	}
	return chain, true
}

// collapseLocatorChain rewrites locator('#a').locator('.b') as "#a .b".
// Chains containing any other accessor are left alone.
func collapseLocatorChain(chain string) (string, bool) {
	var parts []string
	rest := chain
	for rest != "" {
		if !strings.HasPrefix(rest, "locator(") {
			return "", false
		}
		args, end, ok := argSpan(rest, len("locator"))
		if !ok {
			return "", false
		}
		inner := unquote(strings.TrimSpace(strings.SplitN(args, ",", 2)[0]))
		parts = append(parts, inner)
		rest = rest[end:]
		rest = strings.TrimPrefix(rest, ".")
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

// selectorFromReceiver pulls a locator expression out of an expect()
// argument like page.locator('.welcome'). A bare page receiver yields no
// selector.
func selectorFromReceiver(inner string) string {
	if sel, ok := selectorFromChain(inner); ok {
		return sel
	}
	return ""
}

// splitArgs splits an argument list on top-level commas, respecting
// string quoting and nested bracket groups.
func splitArgs(args string) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(args); i++ {
		c := args[i]
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
				parts = append(parts, args[start:i])
				start = i + 1
			}
		}
	}
	if strings.TrimSpace(args[start:]) != "" {
		parts = append(parts, args[start:])
	}
	return parts
}

// literalArgs keeps the literal values from an argument list: quoted
// strings (unquoted), numbers, and booleans. Options objects and
// identifier references are not literals.
func literalArgs(args string) []string {
	var out []string
	for _, p := range splitArgs(args) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if isQuoted(p) {
			out = append(out, unquote(p))
			continue
		}
		if p == "true" || p == "false" || isNumeric(p) {
			out = append(out, p)
		}
	}
	return out
}

// firstString returns the first quoted argument, unquoted.
func firstString(args string) string {
	for _, p := range splitArgs(args) {
		p = strings.TrimSpace(p)
		if isQuoted(p) {
			return unquote(p)
		}
	}
	return ""
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	c := s[0]
	return (c == '\'' || c == '"' || c == '`') && s[len(s)-1] == c
}

func unquote(s string) string {
	if isQuoted(s) {
		return s[1 : len(s)-1]
	}
	return s
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && c != '.' && c != '-' {
			return false
		}
	}
	return true
}
