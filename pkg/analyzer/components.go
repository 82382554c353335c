package analyzer

import (
	"fmt"
	"strings"

	"github.com/asub927/pagelift/pkg/config"
	"github.com/asub927/pagelift/pkg/script"
)

// Window lengths tried by the detector, longest first so a 4-step match
// is never shadowed by its own 2-step sub-sequences.
var windowLengths = []int{4, 3, 2}

// Component confidence bands.
const (
	confExactBase   = 90 // identical sequence on >=3 pages
	confExactTwo    = 85 // identical sequence on exactly 2 pages
	confNear        = 72 // near-identical on 2+ pages
	confProvisional = 60 // strong semantic signal on a single page
)

// slot is one interaction action eligible for component matching.
type slot struct {
	pageIdx   int
	actionIdx int
	verb      string
	selRaw    string
	key       string
}

// DetectComponents mines recurring interaction sub-sequences across
// pages. Matched actions gain a non-owning back-reference; they are never
// removed from their page. The second return value carries architectural
// suggestions for patterns too weak to promote.
func DetectComponents(pages []*Page, cfg *config.Config) ([]*Component, []string) {
	cd := cfg.ComponentDetection

	perPage := make([][]slot, len(pages))
	for pi, p := range pages {
		for ai, a := range p.Actions {
			if a.Stmt.Kind != script.KindInteraction || a.IsEntry {
				continue
			}
			raw := ""
			if a.Selector != nil {
				raw = a.Selector.Raw
			}
			perPage[pi] = append(perPage[pi], slot{
				pageIdx:   pi,
				actionIdx: ai,
				verb:      a.Stmt.ActionVerb,
				selRaw:    raw,
				key:       normalizeSlot(a.Stmt.ActionVerb, raw),
			})
		}
	}

	used := map[[2]int]bool{}
	var components []*Component
	var architectural []string

	// Exact pass: byte-identical normalized sequences across distinct pages.
	for _, length := range windowLengths {
		order, occs := collectWindows(perPage, length, used)
		for _, fp := range order {
			windows := availableWindows(occs[fp], used)
			pageSet := distinctPages(windows)
			if len(pageSet) < cd.MinAppearances || len(pageSet) < 2 {
				continue
			}
			comp := buildComponent(pages, windows, confidenceExact(len(pageSet)))
			if !typeEnabled(comp.Type, cd) {
				continue
			}
			claim(pages, windows, len(components), used)
			comp.Occurrences = toOccurrences(windows)
			components = append(components, comp)
		}
	}

	// Near pass: same verb shape, at least half the selectors identical.
	for _, length := range windowLengths {
		for pi := range perPage {
			for start := 0; start+length <= len(perPage[pi]); start++ {
				tmpl := perPage[pi][start : start+length]
				if windowUsed(tmpl, used) {
					continue
				}
				matches := [][]slot{tmpl}
				partial := false
				for pj := pi + 1; pj < len(perPage); pj++ {
					for s2 := 0; s2+length <= len(perPage[pj]); s2++ {
						cand := perPage[pj][s2 : s2+length]
						if windowUsed(cand, used) {
							continue
						}
						switch nearMatch(tmpl, cand) {
						case matchNear:
							matches = append(matches, cand)
						case matchShape:
							partial = true
						}
					}
				}
				if len(distinctPages(matches)) >= 2 && len(distinctPages(matches)) >= cd.MinAppearances {
					comp := buildComponent(pages, matches, confNear)
					if !typeEnabled(comp.Type, cd) {
						continue
					}
					claim(pages, matches, len(components), used)
					comp.Occurrences = toOccurrences(matches)
					components = append(components, comp)
				} else if partial {
					architectural = append(architectural, fmt.Sprintf(
						"similar %d-step interaction sequences start at line %d; consider extracting a shared helper once the selectors converge",
						length, pages[pi].Actions[tmpl[0].actionIdx].Stmt.LineNumber))
				}
			}
		}
	}

	// Provisional pass: a landmark-flavored run on a single page is kept
	// as a needs-more-evidence component.
	for pi := range perPage {
		run := landmarkRun(perPage[pi], used)
		if len(run) < 2 {
			continue
		}
		comp := buildComponent(pages, [][]slot{run}, confProvisional)
		if comp.Type == "custom" || comp.Type == "form" || !typeEnabled(comp.Type, cd) {
			continue
		}
		claim(pages, [][]slot{run}, len(components), used)
		comp.Occurrences = toOccurrences([][]slot{run})
		components = append(components, comp)
	}

	nameComponents(components)
	return components, architectural
}

func normalizeSlot(verb, sel string) string {
	return verb + "|" + strings.ToLower(strings.Join(strings.Fields(sel), " "))
}

// collectWindows gathers every unused window of the given length, keyed
// by fingerprint, preserving first-seen order for determinism.
func collectWindows(perPage [][]slot, length int, used map[[2]int]bool) ([]string, map[string][][]slot) {
	var order []string
	occs := map[string][][]slot{}
	for pi := range perPage {
		for start := 0; start+length <= len(perPage[pi]); start++ {
			w := perPage[pi][start : start+length]
			if windowUsed(w, used) {
				continue
			}
			fp := fingerprint(w)
			if _, seen := occs[fp]; !seen {
				order = append(order, fp)
			}
			occs[fp] = append(occs[fp], w)
		}
	}
	return order, occs
}

func fingerprint(w []slot) string {
	keys := make([]string, len(w))
	for i, s := range w {
		keys[i] = s.key
	}
	return strings.Join(keys, "§")
}

func windowUsed(w []slot, used map[[2]int]bool) bool {
	for _, s := range w {
		if used[[2]int{s.pageIdx, s.actionIdx}] {
			return true
		}
	}
	return false
}

func availableWindows(ws [][]slot, used map[[2]int]bool) [][]slot {
	var out [][]slot
	taken := map[[2]int]bool{}
	for _, w := range ws {
		if windowUsed(w, used) {
			continue
		}
		overlap := false
		for _, s := range w {
			if taken[[2]int{s.pageIdx, s.actionIdx}] {
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}
		for _, s := range w {
			taken[[2]int{s.pageIdx, s.actionIdx}] = true
		}
		out = append(out, w)
	}
	return out
}

func distinctPages(ws [][]slot) map[int]bool {
	set := map[int]bool{}
	for _, w := range ws {
		set[w[0].pageIdx] = true
	}
	return set
}

func confidenceExact(pageCount int) int {
	if pageCount >= 3 {
		c := confExactBase + 2*(pageCount-3)
		if c > 100 {
			c = 100
		}
		return c
	}
	return confExactTwo
}

type matchKind int

const (
	matchNone matchKind = iota
	matchShape
	matchNear
)

// nearMatch compares two windows: matchNear when the verb shapes agree
// and at least half the selectors are byte-identical, matchShape when
// only the verbs agree.
func nearMatch(a, b []slot) matchKind {
	same := 0
	for i := range a {
		if a[i].verb != b[i].verb {
			return matchNone
		}
		if a[i].key == b[i].key {
			same++
		}
	}
	if same == len(a) {
		return matchNear
	}
	if 2*same >= len(a) {
		return matchNear
	}
	if same > 0 {
		return matchShape
	}
	return matchNone
}

// landmarkRun finds the first unused run of consecutive interactions whose
// selectors all mention the same landmark family.
func landmarkRun(slots []slot, used map[[2]int]bool) []slot {
	families := [][]string{
		{"header", "masthead", "banner"},
		{"footer"},
		{"nav", "menu"},
		{"modal", "dialog"},
	}
	for _, fam := range families {
		var run []slot
		for _, s := range slots {
			if used[[2]int{s.pageIdx, s.actionIdx}] || !mentionsAny(s.selRaw, fam) {
				if len(run) >= 2 {
					return run
				}
				run = nil
				continue
			}
			run = append(run, s)
		}
		if len(run) >= 2 {
			return run
		}
	}
	return nil
}

func mentionsAny(sel string, words []string) bool {
	low := strings.ToLower(sel)
	for _, w := range words {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}

// buildComponent assembles a component from matched windows; the first
// window serves as the selector template.
func buildComponent(pages []*Page, windows [][]slot, confidence int) *Component {
	tmpl := windows[0]
	comp := &Component{Confidence: confidence}
	for _, s := range tmpl {
		comp.SelectorTemplates = append(comp.SelectorTemplates, s.selRaw)
	}
	comp.Type = inferComponentType(pages, tmpl)
	return comp
}

// inferComponentType uses lexical signals in selector text and accessible
// roles, with custom as the fallback.
func inferComponentType(pages []*Page, tmpl []slot) string {
	fills := 0
	for _, s := range tmpl {
		a := pages[s.pageIdx].Actions[s.actionIdx]
		role := ""
		if a.Selector != nil {
			role = a.Selector.Details.Role
		}
		low := strings.ToLower(s.selRaw)
		switch {
		case role == "dialog" || mentionsAny(low, []string{"modal", "dialog", "overlay"}):
			return "modal"
		case role == "navigation" || mentionsAny(low, []string{"nav", "menu"}):
			return "navigation"
		case role == "banner" || mentionsAny(low, []string{"header", "masthead"}):
			return "header"
		case mentionsAny(low, []string{"footer"}):
			return "footer"
		}
		if s.verb == "fill" || s.verb == "type" || s.verb == "selectOption" {
			fills++
		}
	}
	if fills >= 2 {
		return "form"
	}
	return "custom"
}

func typeEnabled(t string, cd config.ComponentDetection) bool {
	switch t {
	case "header":
		return cd.DetectHeaders
	case "footer":
		return cd.DetectFooters
	case "modal":
		return cd.DetectModals
	case "navigation":
		return cd.DetectNavigation
	default:
		return true
	}
}

// claim marks every matched action as delegated to the component.
func claim(pages []*Page, windows [][]slot, compIdx int, used map[[2]int]bool) {
	for _, w := range windows {
		for _, s := range w {
			used[[2]int{s.pageIdx, s.actionIdx}] = true
			a := pages[s.pageIdx].Actions[s.actionIdx]
			a.Delegated = true
			a.ComponentIndex = compIdx
		}
	}
}

func toOccurrences(windows [][]slot) []Occurrence {
	var out []Occurrence
	for _, w := range windows {
		occ := Occurrence{PageIdx: w[0].pageIdx}
		for _, s := range w {
			occ.ActionIdx = append(occ.ActionIdx, s.actionIdx)
		}
		out = append(out, occ)
	}
	return out
}

// nameComponents derives stable names, disambiguating repeats.
func nameComponents(components []*Component) {
	used := map[string]int{}
	for _, c := range components {
		base := componentBaseName(c)
		used[base]++
		if n := used[base]; n > 1 {
			base = fmt.Sprintf("%s%d", base, n)
		}
		c.InferredName = base
	}
}

func componentBaseName(c *Component) string {
	if len(c.SelectorTemplates) > 0 {
		if noun := selectorNameToken(c.SelectorTemplates[0]); noun != "" {
			return pascalWords(noun) + "Component"
		}
	}
	return pascalWords(c.Type) + "Component"
}

// selectorNameToken pulls a naming token straight from selector text:
// test id value, accessor argument, id, or first class.
func selectorNameToken(sel string) string {
	for _, acc := range []string{"getByTestId('", "getByText('", "getByLabel('"} {
		if strings.HasPrefix(sel, acc) {
			rest := sel[len(acc):]
			if j := strings.IndexByte(rest, '\''); j >= 0 {
				return rest[:j]
			}
		}
	}
	if i := strings.Index(sel, "data-testid="); i >= 0 {
		rest := strings.Trim(sel[i+len("data-testid="):], "'\"]")
		if j := strings.IndexAny(rest, "'\"]"); j >= 0 {
			rest = rest[:j]
		}
		return rest
	}
	if strings.HasPrefix(sel, "#") {
		return strings.SplitN(sel[1:], " ", 2)[0]
	}
	if strings.HasPrefix(sel, ".") {
		return strings.SplitN(sel[1:], " ", 2)[0]
	}
	return ""
}
