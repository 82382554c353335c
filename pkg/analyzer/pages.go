package analyzer

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/asub927/pagelift/pkg/config"
	"github.com/asub927/pagelift/pkg/script"
	"github.com/asub927/pagelift/pkg/selector"
)

// Boundary confidence levels.
const (
	confGoto       = 100
	confURLWaitFar = 100
	confURLWait    = 95
	confModal      = 60
	confTab        = 55
	confDegenerate = 60
)

// ambiguityThreshold marks boundary decisions worth a warning.
const ambiguityThreshold = 70

// DetectPages partitions the statement sequence into pages. Every
// statement ends up on exactly one page; the boundary statement belongs
// to the page it opens, and the closing page records it as exit_event.
func DetectPages(stmts []script.Statement, cfg *config.Config) ([]*Page, []Warning) {
	var (
		pages    []*Page
		warnings []Warning
	)

	pd := cfg.PageDetection

	cur := &Page{
		EntryEvent: "start of script",
		Confidence: confDegenerate,
	}
	var curOwned []script.Statement

	open := func(entry script.Statement, event string, confidence int, urlPattern string) {
		if hasSemantic(curOwned) || len(pages) > 0 {
			cur.ExitEvent = event
			appendPage(&pages, cur, curOwned, cfg)
			curOwned = nil
		}
		// A structural-only prefix folds into the page being opened.
		cur = &Page{
			EntryEvent: event,
			Confidence: confidence,
			URLPattern: urlPattern,
		}
		if confidence < ambiguityThreshold {
			warnings = append(warnings, Warning{
				Line:    entry.LineNumber,
				Message: fmt.Sprintf("ambiguous page boundary at line %d (%s, confidence %d)", entry.LineNumber, event, confidence),
			})
		}
	}

	for _, st := range stmts {
		switch {
		case st.Kind == script.KindNavigation:
			if pd.URLChangeCreatesNewPage {
				open(st, "goto "+st.TargetURL, confGoto, st.TargetURL)
			} else if cur.URLPattern == "" {
				cur.URLPattern = st.TargetURL
			}

		case st.Kind == script.KindWait && st.ActionVerb == "waitForURL":
			if pd.URLChangeCreatesNewPage && urlDiffers(cur.URLPattern, st.TargetURL, pd.URLChangeThreshold) {
				conf := confURLWait
				if materiallyDifferent(cur.URLPattern, st.TargetURL) {
					conf = confURLWaitFar
				}
				open(st, "waitForURL "+st.TargetURL, conf, normalizeGlob(st.TargetURL))
			}

		case isModalSignal(st):
			if pd.ModalDetection == config.ModalAsPage {
				open(st, "modal opened at line "+fmt.Sprint(st.LineNumber), confModal, cur.URLPattern)
			}
			// component mode absorbs the signal into the current page

		case isTabSignal(st):
			// Same-URL content switches never open a boundary unless the
			// caller opted in, and then only as a low-confidence one.
			if pd.TabSwitchCreatesNewPage {
				open(st, "tab switch at line "+fmt.Sprint(st.LineNumber), confTab, cur.URLPattern)
			}
		}

		curOwned = append(curOwned, st)
	}
	appendPage(&pages, cur, curOwned, cfg)

	if len(pages) == 0 {
		pages = append(pages, &Page{
			InferredName: "MainPage",
			Confidence:   confDegenerate,
			EntryEvent:   "start of script",
		})
	}

	// Degenerate single-page case: no boundary signal found anywhere.
	if len(pages) == 1 && pages[0].EntryEvent == "start of script" {
		pages[0].Confidence = confDegenerate
		warnings = append(warnings, Warning{
			Message: "no navigation signals found; page boundaries are uncertain (single page assumed)",
		})
	}

	// Terminal exit is synthetic, not a statement.
	pages[len(pages)-1].ExitEvent = "end of script"

	nameAndDedupe(pages)
	return pages, warnings
}

// appendPage enriches the accumulated statements into Action/Assertion
// records and appends the page, dropping pages that own nothing semantic.
func appendPage(pages *[]*Page, p *Page, owned []script.Statement, cfg *config.Config) {
	if !hasSemantic(owned) && len(owned) == 0 {
		return
	}
	prevWait := false
	prevTimeout := false
	prevInteraction := false
	entrySeen := false

	for _, st := range owned {
		switch {
		case st.IsAction():
			a := &Action{Stmt: st, ComponentIndex: -1}
			if st.SelectorExpression != "" {
				sel := selector.Analyze(st.SelectorExpression,
					cfg.SelectorAnalysis.PreferredStrategies,
					cfg.SelectorAnalysis.SuggestImprovements)
				a.Selector = &sel
			}
			a.Params = extractParams(a)
			a.Wait = WaitBehavior{PrecededByWait: prevWait, TimeoutAntiPattern: prevTimeout}
			if !entrySeen && (st.Kind == script.KindNavigation ||
				(st.Kind == script.KindWait && st.ActionVerb == "waitForURL")) {
				a.IsEntry = true
				entrySeen = true
			}
			p.Actions = append(p.Actions, a)

			prevWait = st.Kind == script.KindWait
			prevTimeout = st.ActionVerb == "waitForTimeout"
			prevInteraction = st.Kind == script.KindInteraction

		case st.Kind == script.KindAssertion:
			as := &Assertion{Stmt: st, PrevInteraction: prevInteraction}
			if st.SelectorExpression != "" {
				sel := selector.Analyze(st.SelectorExpression,
					cfg.SelectorAnalysis.PreferredStrategies,
					cfg.SelectorAnalysis.SuggestImprovements)
				as.Selector = &sel
			}
			if len(st.LiteralArguments) > 0 {
				as.Expected = st.LiteralArguments[0]
			}
			p.Assertions = append(p.Assertions, as)

			prevWait, prevTimeout, prevInteraction = false, false, false
		}
	}
	if len(p.Actions) == 0 && len(p.Assertions) == 0 {
		return
	}
	*pages = append(*pages, p)
}

func hasSemantic(stmts []script.Statement) bool {
	for _, s := range stmts {
		if s.IsSemantic() {
			return true
		}
	}
	return false
}

// extractParams derives parameters from an action's literal arguments.
func extractParams(a *Action) []Parameter {
	if len(a.Stmt.LiteralArguments) == 0 {
		return nil
	}
	switch a.Stmt.ActionVerb {
	case "fill", "type", "selectOption", "press", "setInputFiles":
	default:
		return nil
	}

	name := selectorNoun(a)
	if name == "" {
		name = a.Stmt.ActionVerb + "Value"
	}
	value := a.Stmt.LiteralArguments[0]
	return []Parameter{{
		Name:              camel(pascalWords(name)),
		ExampleValue:      value,
		ShouldBeParameter: !constantLike(value, a.Stmt.ActionVerb),
	}}
}

// constantLike reports structural tokens that should stay inline rather
// than become parameters: key names, booleans, all-caps constants.
func constantLike(v, verb string) bool {
	if v == "" || v == "true" || v == "false" {
		return true
	}
	if verb == "press" {
		return true
	}
	upper := strings.ToUpper(v)
	return upper == v && len(v) > 1 && !strings.ContainsAny(v, " @/")
}

// =============================================================================
// Boundary signal heuristics
// =============================================================================

var modalMarkers = []string{"modal", "dialog", "popup", "overlay"}
var tabMarkers = []string{"tab", "accordion"}

func isModalSignal(st script.Statement) bool {
	if st.Subtype == script.SubtypeDialog {
		return true
	}
	if st.Kind != script.KindInteraction {
		return false
	}
	return selectorMentions(st.SelectorExpression, modalMarkers)
}

func isTabSignal(st script.Statement) bool {
	if st.Subtype == script.SubtypeTab {
		return true
	}
	if st.Kind != script.KindInteraction || st.ActionVerb != "click" {
		return false
	}
	sel := strings.ToLower(st.SelectorExpression)
	if strings.Contains(sel, "role=tab") || strings.Contains(sel, "'tab'") {
		return true
	}
	return selectorMentions(st.SelectorExpression, tabMarkers)
}

func selectorMentions(sel string, markers []string) bool {
	low := strings.ToLower(sel)
	for _, m := range markers {
		if strings.Contains(low, m) {
			return true
		}
	}
	return false
}

// =============================================================================
// URL comparison
// =============================================================================

// urlDiffers compares the current page URL with a navigation target under
// the configured threshold.
func urlDiffers(current, target string, threshold config.URLThreshold) bool {
	if target == "" {
		return false
	}
	if current == "" {
		return true
	}
	cur := normalizeGlob(current)
	tgt := normalizeGlob(target)

	switch threshold {
	case config.ThresholdFull:
		return cur != tgt
	case config.ThresholdDomain:
		return hostOf(cur) != hostOf(tgt)
	default: // path
		return pathOf(cur) != pathOf(tgt) && !strings.HasPrefix(pathOf(tgt), pathOf(cur)+"/")
	}
}

// materiallyDifferent reports that the target shares no path segments at
// all with the current URL, the highest-confidence wait boundary.
func materiallyDifferent(current, target string) bool {
	curSegs := pathSegments(normalizeGlob(current))
	tgtSegs := pathSegments(normalizeGlob(target))
	for _, t := range tgtSegs {
		for _, c := range curSegs {
			if t == c {
				return false
			}
		}
	}
	return true
}

// normalizeGlob strips wildcard prefixes from waitForURL patterns so
// **/dashboard compares as /dashboard.
func normalizeGlob(u string) string {
	s := u
	for strings.HasPrefix(s, "*") {
		s = strings.TrimPrefix(s, "*")
	}
	if s == "" {
		return u
	}
	return s
}

func hostOf(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return parsed.Host
}

func pathOf(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	p := parsed.Path
	if p == "" {
		p = "/"
	}
	return strings.TrimSuffix(p, "/")
}

func pathSegments(u string) []string {
	var out []string
	for _, s := range strings.Split(pathOf(u), "/") {
		if s != "" && s != "*" && s != "**" {
			out = append(out, s)
		}
	}
	return out
}

// =============================================================================
// Naming
// =============================================================================

// nameAndDedupe infers page names from URL patterns and disambiguates
// repeats with a numeric suffix.
func nameAndDedupe(pages []*Page) {
	used := map[string]int{}
	for _, p := range pages {
		name := inferPageName(p)
		used[name]++
		if n := used[name]; n > 1 {
			name = fmt.Sprintf("%s%d", name, n)
		}
		p.InferredName = name
	}
}

func inferPageName(p *Page) string {
	if strings.HasPrefix(p.EntryEvent, "modal opened") {
		return "ModalPage"
	}
	if strings.HasPrefix(p.EntryEvent, "tab switch") {
		return "TabPage"
	}
	noun := urlNoun(p.URLPattern)
	if noun == "" {
		if p.URLPattern != "" {
			return "HomePage"
		}
		return "MainPage"
	}
	return pascalWords(noun) + "Page"
}
