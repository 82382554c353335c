package analyzer

import (
	"fmt"
	"strings"

	"github.com/asub927/pagelift/pkg/config"
	"github.com/asub927/pagelift/pkg/script"
)

// Method naming confidence by inference source.
const (
	confNameContent = 85
	confNameURL     = 70
	confNameNoun    = 65
	confNameGeneric = 55
)

// ComplexityHighWater is the refactoring recommendation threshold.
const ComplexityHighWater = 80

// GroupMethods partitions a page's undelegated actions into logical
// method suggestions using greedy windowing. Every undelegated,
// non-entry action lands in exactly one method; assertions join only
// when separate_assertions is off. The generic-fallback counter is
// shared across pages so names stay unique document-wide.
func GroupMethods(p *Page, cfg *config.Config, urlPattern string, genericSeq *int) []Method {
	mg := cfg.MethodGrouping

	type item struct {
		action    int // index into p.Actions, -1 for assertions
		assertion int // index into p.Assertions, -1 for actions
		line      int
	}
	var timeline []item
	for i, a := range p.Actions {
		if a.IsEntry || a.Delegated {
			continue
		}
		timeline = append(timeline, item{action: i, assertion: -1, line: a.Stmt.LineNumber})
	}
	for i, as := range p.Assertions {
		timeline = append(timeline, item{action: -1, assertion: i, line: as.Stmt.LineNumber})
	}
	sortByLine := func() {
		for i := 1; i < len(timeline); i++ {
			for j := i; j > 0 && timeline[j].line < timeline[j-1].line; j-- {
				timeline[j], timeline[j-1] = timeline[j-1], timeline[j]
			}
		}
	}
	sortByLine()

	var methods []Method
	var cur Method
	fillRun := 0

	closeCur := func() {
		if len(cur.ActionIdx) == 0 && len(cur.AssertionIdx) == 0 {
			return
		}
		finishMethod(&cur, p, cfg, urlPattern, genericSeq)
		methods = append(methods, cur)
		cur = Method{}
		fillRun = 0
	}

	for _, it := range timeline {
		if it.assertion >= 0 {
			if mg.SeparateAssertions {
				// An assertion boundary always closes the open method.
				closeCur()
				continue
			}
			cur.AssertionIdx = append(cur.AssertionIdx, it.assertion)
			continue
		}

		a := p.Actions[it.action]

		if a.Stmt.Kind == script.KindNavigation && mg.SeparateNavigation {
			closeCur()
			cur.ActionIdx = append(cur.ActionIdx, it.action)
			closeCur()
			continue
		}

		if len(cur.ActionIdx) > 0 {
			prev := p.Actions[cur.ActionIdx[len(cur.ActionIdx)-1]]
			if len(cur.ActionIdx) >= mg.MaxActionsPerMethod || !related(prev, a, fillRun, mg) {
				closeCur()
			}
		}

		cur.ActionIdx = append(cur.ActionIdx, it.action)
		if isFillVerb(a.Stmt.ActionVerb) {
			fillRun++
		}

		// A submit click after a fill run, or a wait-for-URL, terminates
		// the method it belongs to.
		if (fillRun > 0 && isTerminalClick(a)) || a.Stmt.ActionVerb == "waitForURL" {
			closeCur()
		}
	}
	closeCur()

	return methods
}

func isFillVerb(verb string) bool {
	switch verb {
	case "fill", "type", "selectOption", "check", "uncheck", "setInputFiles":
		return true
	}
	return false
}

func isTerminalClick(a *Action) bool {
	if a.Stmt.ActionVerb != "click" {
		return false
	}
	if a.Selector == nil {
		return true
	}
	low := strings.ToLower(a.Selector.Raw)
	return a.Selector.Details.Role == "button" ||
		strings.Contains(low, "submit") || strings.Contains(low, "button") ||
		strings.Contains(low, "btn") || a.Selector.Details.AccessibleName != ""
}

// related decides whether the next action continues the current method:
// same selector root, a related-fill run, or the run's terminal click.
func related(prev, next *Action, fillRun int, mg config.MethodGrouping) bool {
	if mg.GroupRelatedFills && isFillVerb(prev.Stmt.ActionVerb) && isFillVerb(next.Stmt.ActionVerb) {
		return true
	}
	if fillRun > 0 && isTerminalClick(next) {
		return true
	}
	if prev.Stmt.Kind == script.KindWait || next.Stmt.Kind == script.KindWait {
		return true
	}
	pr, nr := selectorRoot(prev), selectorRoot(next)
	return pr != "" && pr == nr
}

// selectorRoot is the leading segment of the selector, the shared-form
// signal for relatedness.
func selectorRoot(a *Action) string {
	if a.Selector == nil {
		return ""
	}
	return strings.SplitN(a.Selector.Raw, " ", 2)[0]
}

// finishMethod fills in name, alternatives, parameters, and complexity.
func finishMethod(m *Method, p *Page, cfg *config.Config, urlPattern string, genericSeq *int) {
	m.Parameters = collectParameters(m, p)
	m.Complexity = complexity(m, p)
	nameMethod(m, p, urlPattern, genericSeq)
}

// collectParameters deduplicates by normalized input name; first
// occurrence wins.
func collectParameters(m *Method, p *Page) []Parameter {
	var out []Parameter
	seen := map[string]bool{}
	for _, ai := range m.ActionIdx {
		for _, param := range p.Actions[ai].Params {
			if seen[param.Name] {
				continue
			}
			seen[param.Name] = true
			out = append(out, param)
		}
	}
	return out
}

// complexity scores a method from fixed weighted signals. Unbounded by
// design: the refactoring report wants the raw magnitude.
func complexity(m *Method, p *Page) int {
	score := 5*len(m.ActionIdx) + 10*len(m.Parameters)

	branching, looping, upload, crossPage, delegated := false, false, false, false, false
	var first, last int
	for i, ai := range m.ActionIdx {
		a := p.Actions[ai]
		raw := a.Stmt.RawText
		if strings.Contains(raw, "if (") || strings.Contains(raw, " ? ") {
			branching = true
		}
		if strings.Contains(raw, "for (") || strings.Contains(raw, "while (") || strings.Contains(raw, ".forEach(") {
			looping = true
		}
		if a.Stmt.Subtype == script.SubtypeUpload {
			upload = true
		}
		if a.Stmt.ActionVerb == "goto" || a.Stmt.ActionVerb == "waitForURL" {
			crossPage = true
		}
		if i == 0 {
			first = a.Stmt.LineNumber
		}
		last = a.Stmt.LineNumber
	}
	for _, a := range p.Actions {
		if a.Delegated && a.Stmt.LineNumber > first && a.Stmt.LineNumber < last {
			delegated = true
		}
	}

	if branching {
		score += 15
	}
	if looping {
		score += 20
	}
	if upload {
		score += 10
	}
	if len(m.AssertionIdx) > 1 {
		score += 15
	}
	if crossPage {
		score += 20
	}
	if delegated {
		score += 10
	}
	return score
}

// nameMethod applies the inference precedence: terminal-action content,
// then URL context, then verb+noun, then the generic numbered fallback.
func nameMethod(m *Method, p *Page, urlPattern string, genericSeq *int) {
	if len(m.ActionIdx) == 0 {
		*genericSeq++
		m.Name = fmt.Sprintf("verifyState%d", *genericSeq)
		m.Confidence = confNameGeneric
		m.Alternatives = []string{fmt.Sprintf("checkState%d", *genericSeq), fmt.Sprintf("assertState%d", *genericSeq)}
		m.GenericName = true
		return
	}

	terminal := p.Actions[m.ActionIdx[len(m.ActionIdx)-1]]
	verb := normalizedVerb(terminal, len(m.ActionIdx))

	if content := actionContent(terminal); content != "" {
		base := pascalWords(content)
		m.Name = camel(verb + base)
		m.Confidence = confNameContent
		m.Alternatives = []string{camel(base), "perform" + base}
		return
	}

	if noun := urlNoun(urlPattern); noun != "" && len(m.ActionIdx) > 1 {
		base := pascalWords(noun)
		m.Name = camel(verb + base)
		m.Confidence = confNameURL
		m.Alternatives = []string{camel(base) + "Flow", "complete" + base}
		return
	}

	if noun := selectorNoun(terminal); noun != "" {
		base := pascalWords(noun)
		m.Name = camel(verb + base)
		m.Confidence = confNameNoun
		m.Alternatives = []string{camel(base) + "Action"}
		return
	}

	*genericSeq++
	m.Name = fmt.Sprintf("performAction%d", *genericSeq)
	m.Confidence = confNameGeneric
	m.Alternatives = []string{
		fmt.Sprintf("doStep%d", *genericSeq),
		fmt.Sprintf("executeStep%d", *genericSeq),
	}
	m.GenericName = true
}

// normalizedVerb maps the terminal action's verb to a naming verb; a
// fill run ending in a click reads as a submit.
func normalizedVerb(terminal *Action, actionCount int) string {
	verb := terminal.Stmt.ActionVerb
	switch verb {
	case "click", "dblclick", "tap":
		if actionCount > 1 {
			return "submit"
		}
		return "click"
	case "fill", "type":
		return "fill"
	case "selectOption":
		return "select"
	case "setInputFiles":
		return "upload"
	case "goto":
		return "open"
	case "waitForURL", "waitForSelector", "waitForLoadState", "waitForTimeout", "waitForEvent":
		return "awaitFor"
	}
	return verb
}
