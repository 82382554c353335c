// Package ir provides the Builder that assembles analyzer output into the
// final cross-referenced document.
package ir

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/asub927/pagelift/pkg/analyzer"
	"github.com/asub927/pagelift/pkg/config"
	"github.com/asub927/pagelift/pkg/script"
	"github.com/asub927/pagelift/pkg/selector"
)

// Operational limits: exceeding one still yields complete output but adds
// a metadata warning.
const (
	LimitActions    = 200
	LimitPages      = 20
	LimitComponents = 10
)

// Builder merges all prior stage outputs into a Document. It never fails
// on valid analyzer input; referential integrity is its own obligation.
type Builder struct {
	sourceLines int
	stmts       []script.Statement
	pages       []*analyzer.Page
	components  []*analyzer.Component
	archNotes   []string
	warnings    []analyzer.Warning
	cfg         *config.Config
}

// NewBuilder creates a builder over the completed analysis stages.
func NewBuilder(sourceLines int, stmts []script.Statement, pages []*analyzer.Page,
	components []*analyzer.Component, archNotes []string,
	warnings []analyzer.Warning, cfg *config.Config) *Builder {
	return &Builder{
		sourceLines: sourceLines,
		stmts:       stmts,
		pages:       pages,
		components:  components,
		archNotes:   archNotes,
		warnings:    warnings,
		cfg:         cfg,
	}
}

// Build assembles the document. Ids are assigned here, in emission order,
// and nowhere else.
func (b *Builder) Build() *Document {
	doc := &Document{
		Pages:           make([]Page, 0, len(b.pages)),
		Components:      make([]Component, 0, len(b.components)),
		ActionSequences: make([]SequenceEntry, 0),
		Recommendations: Recommendations{
			Architectural: []string{},
			Refactoring:   []string{},
			Quality:       []string{},
		},
	}
	doc.Metadata.Warnings = []string{}

	// Id matrices let methods and components resolve their references.
	actionIDs := make([][]string, len(b.pages))
	assertionIDs := make([][]string, len(b.pages))
	actionSeq, assertionSeq := 0, 0
	for pi, p := range b.pages {
		actionIDs[pi] = make([]string, len(p.Actions))
		for ai := range p.Actions {
			actionSeq++
			actionIDs[pi][ai] = fmt.Sprintf("action_%d", actionSeq)
		}
		assertionIDs[pi] = make([]string, len(p.Assertions))
		for ai := range p.Assertions {
			assertionSeq++
			assertionIDs[pi][ai] = fmt.Sprintf("assertion_%d", assertionSeq)
		}
	}

	methodSeq := 0
	for pi, p := range b.pages {
		pageID := fmt.Sprintf("page_%d", pi+1)
		irPage := Page{
			ID:               pageID,
			InferredName:     p.InferredName,
			Confidence:       p.Confidence,
			URLPattern:       p.URLPattern,
			EntryEvent:       p.EntryEvent,
			ExitEvent:        p.ExitEvent,
			Actions:          make([]Action, 0, len(p.Actions)),
			Assertions:       make([]Assertion, 0, len(p.Assertions)),
			SuggestedMethods: make([]Method, 0, len(p.Methods)),
		}

		usageByComponent := map[int][]string{}
		for ai, a := range p.Actions {
			irAction := Action{
				ID:           actionIDs[pi][ai],
				LineNumber:   a.Stmt.LineNumber,
				ActionVerb:   a.Stmt.ActionVerb,
				RawText:      a.Stmt.RawText,
				TargetURL:    a.Stmt.TargetURL,
				Selector:     a.Selector,
				Parameters:   a.Params,
				WaitBehavior: a.Wait,
			}
			if a.Delegated {
				compID := fmt.Sprintf("component_%d", a.ComponentIndex+1)
				irAction.ComponentUsage = &ComponentRef{ComponentID: compID}
				usageByComponent[a.ComponentIndex] = append(usageByComponent[a.ComponentIndex], irAction.ID)
			}
			irPage.Actions = append(irPage.Actions, irAction)
			doc.ActionSequences = append(doc.ActionSequences, SequenceEntry{
				ID: irAction.ID, Kind: "action", LineNumber: irAction.LineNumber,
			})
		}

		for ai, as := range p.Assertions {
			irAssertion := Assertion{
				ID:            assertionIDs[pi][ai],
				LineNumber:    as.Stmt.LineNumber,
				RawText:       as.Stmt.RawText,
				AssertionType: as.Type,
				Selector:      as.Selector,
				ExpectedValue: as.Expected,
				Placement:     as.Placement,
			}
			irPage.Assertions = append(irPage.Assertions, irAssertion)
			doc.ActionSequences = append(doc.ActionSequences, SequenceEntry{
				ID: irAssertion.ID, Kind: "assertion", LineNumber: irAssertion.LineNumber,
			})
		}

		for _, m := range p.Methods {
			methodSeq++
			irPage.SuggestedMethods = append(irPage.SuggestedMethods,
				buildMethod(m, methodSeq, actionIDs[pi], assertionIDs[pi]))
		}

		for _, ci := range sortedKeys(usageByComponent) {
			irPage.ComponentUsages = append(irPage.ComponentUsages, ComponentUsage{
				ComponentID: fmt.Sprintf("component_%d", ci+1),
				ActionIDs:   usageByComponent[ci],
			})
		}

		doc.Pages = append(doc.Pages, irPage)
	}

	for ci, c := range b.components {
		irComp := Component{
			ID:                fmt.Sprintf("component_%d", ci+1),
			InferredName:      c.InferredName,
			Type:              c.Type,
			Confidence:        c.Confidence,
			AppearanceCount:   c.PageCount(),
			AppearsOnPageIDs:  make([]string, 0),
			SelectorTemplates: c.SelectorTemplates,
			Instances:         make([]ComponentInstance, 0, len(c.Occurrences)),
			SuggestedMethods:  make([]Method, 0, len(c.Methods)),
		}

		seenPages := map[int]bool{}
		for _, occ := range c.Occurrences {
			if !seenPages[occ.PageIdx] {
				seenPages[occ.PageIdx] = true
				irComp.AppearsOnPageIDs = append(irComp.AppearsOnPageIDs, fmt.Sprintf("page_%d", occ.PageIdx+1))
			}
			inst := ComponentInstance{PageID: fmt.Sprintf("page_%d", occ.PageIdx+1)}
			for _, ai := range occ.ActionIdx {
				inst.ActionIDs = append(inst.ActionIDs, actionIDs[occ.PageIdx][ai])
			}
			irComp.Instances = append(irComp.Instances, inst)
		}

		// Component method suggestions index positions within the
		// template occurrence; resolve them against the first instance.
		if len(c.Occurrences) > 0 {
			occ0 := c.Occurrences[0]
			templateIDs := make([]string, len(occ0.ActionIdx))
			for i, ai := range occ0.ActionIdx {
				templateIDs[i] = actionIDs[occ0.PageIdx][ai]
			}
			for _, m := range c.Methods {
				methodSeq++
				irComp.SuggestedMethods = append(irComp.SuggestedMethods,
					buildMethod(m, methodSeq, templateIDs, nil))
			}
		}

		doc.Components = append(doc.Components, irComp)
	}

	// Entries were collected page by page; the sequence view is source
	// order regardless of where assertions fell within a page.
	sort.SliceStable(doc.ActionSequences, func(i, j int) bool {
		return doc.ActionSequences[i].LineNumber < doc.ActionSequences[j].LineNumber
	})

	b.buildMetadata(doc)
	b.buildSelectorAnalysis(doc)
	b.buildRecommendations(doc)

	return doc
}

func buildMethod(m analyzer.Method, seq int, actionIDs, assertionIDs []string) Method {
	irm := Method{
		ID:           fmt.Sprintf("method_%d", seq),
		Name:         m.Name,
		Confidence:   m.Confidence,
		Alternatives: m.Alternatives,
		ActionIDs:    make([]string, 0, len(m.ActionIdx)),
		Parameters:   m.Parameters,
		Complexity:   m.Complexity,
	}
	for _, ai := range m.ActionIdx {
		irm.ActionIDs = append(irm.ActionIDs, actionIDs[ai])
	}
	for _, ai := range m.AssertionIdx {
		irm.AssertionIDs = append(irm.AssertionIDs, assertionIDs[ai])
	}
	return irm
}

func (b *Builder) buildMetadata(doc *Document) {
	semantic := 0
	for _, s := range b.stmts {
		if s.IsSemantic() {
			semantic++
		}
	}
	actions, assertions := 0, 0
	for _, p := range doc.Pages {
		actions += len(p.Actions)
		assertions += len(p.Assertions)
	}

	doc.Metadata.SourceLineCount = b.sourceLines
	doc.Metadata.StatementCount = semantic
	doc.Metadata.ActionCount = actions
	doc.Metadata.AssertionCount = assertions
	doc.Metadata.UniquePagesDetected = len(doc.Pages)
	doc.Metadata.ComponentsDetected = len(doc.Components)

	for _, w := range b.warnings {
		if w.Line > 0 {
			doc.Metadata.Warnings = append(doc.Metadata.Warnings, fmt.Sprintf("line %d: %s", w.Line, w.Message))
		} else {
			doc.Metadata.Warnings = append(doc.Metadata.Warnings, w.Message)
		}
	}
	for _, p := range doc.Pages {
		for _, m := range p.SuggestedMethods {
			if strings.HasPrefix(m.Name, "performAction") {
				doc.Metadata.Warnings = append(doc.Metadata.Warnings,
					fmt.Sprintf("method %s uses a generic fallback name; no semantic signal was found", m.ID))
			}
		}
		for _, as := range p.Assertions {
			if as.AssertionType == "custom" {
				doc.Metadata.Warnings = append(doc.Metadata.Warnings,
					fmt.Sprintf("line %d: unrecognized assertion matcher classified as custom", as.LineNumber))
			}
		}
	}
	for _, c := range doc.Components {
		if c.Confidence < 70 {
			doc.Metadata.Warnings = append(doc.Metadata.Warnings,
				fmt.Sprintf("component %s (%s) detected with low confidence %d", c.ID, c.InferredName, c.Confidence))
		}
	}

	if actions > LimitActions {
		doc.Metadata.Warnings = append(doc.Metadata.Warnings,
			fmt.Sprintf("input exceeds operational limit: %d actions (limit %d)", actions, LimitActions))
	}
	if len(doc.Pages) > LimitPages {
		doc.Metadata.Warnings = append(doc.Metadata.Warnings,
			fmt.Sprintf("input exceeds operational limit: %d pages (limit %d)", len(doc.Pages), LimitPages))
	}
	if len(doc.Components) > LimitComponents {
		doc.Metadata.Warnings = append(doc.Metadata.Warnings,
			fmt.Sprintf("input exceeds operational limit: %d components (limit %d)", len(doc.Components), LimitComponents))
	}
}

func (b *Builder) buildSelectorAnalysis(doc *Document) {
	sa := SelectorAnalysis{
		ByStrategy: map[string]int{},
		Duplicates: []DuplicateSelector{},
	}

	type ref struct {
		id   string
		line int
		sel  *selector.Selector
	}
	var refs []ref
	for _, p := range doc.Pages {
		for _, a := range p.Actions {
			if a.Selector != nil {
				refs = append(refs, ref{a.ID, a.LineNumber, a.Selector})
			}
		}
		for _, as := range p.Assertions {
			if as.Selector != nil {
				refs = append(refs, ref{as.ID, as.LineNumber, as.Selector})
			}
		}
	}

	byRaw := map[string][]OccurrenceRef{}
	for _, r := range refs {
		sa.TotalSelectors++
		sa.ByStrategy[string(r.sel.Strategy)]++
		norm := normalizeRaw(r.sel.Raw)
		byRaw[norm] = append(byRaw[norm], OccurrenceRef{ID: r.id, LineNumber: r.line})
	}
	sa.UniqueSelectors = len(byRaw)

	for _, raw := range sortedStringKeys(byRaw) {
		occs := byRaw[raw]
		if len(occs) < 2 {
			continue
		}
		sa.Duplicates = append(sa.Duplicates, DuplicateSelector{
			Selector:    raw,
			Count:       len(occs),
			Occurrences: occs,
		})
	}

	doc.SelectorAnalysis = sa
}

func (b *Builder) buildRecommendations(doc *Document) {
	rec := &doc.Recommendations

	if len(doc.Pages) >= 2 {
		rec.Architectural = append(rec.Architectural, fmt.Sprintf(
			"%d pages detected; introduce a base page object for shared navigation and wait helpers", len(doc.Pages)))
	}
	rec.Architectural = append(rec.Architectural, b.archNotes...)

	for _, p := range doc.Pages {
		for _, m := range p.SuggestedMethods {
			if m.Complexity > analyzer.ComplexityHighWater {
				rec.Refactoring = append(rec.Refactoring, fmt.Sprintf(
					"method %s (%s) has complexity %d; split it into smaller operations", m.Name, m.ID, m.Complexity))
			}
		}
	}

	if b.cfg.SelectorAnalysis.FlagFragile {
		seen := map[string]bool{}
		for _, p := range doc.Pages {
			for _, a := range p.Actions {
				b.flagFragile(rec, a.Selector, a.LineNumber, seen)
			}
			for _, as := range p.Assertions {
				b.flagFragile(rec, as.Selector, as.LineNumber, seen)
			}
		}
	}

	for _, p := range doc.Pages {
		for _, a := range p.Actions {
			if a.ActionVerb == "waitForTimeout" {
				rec.Quality = append(rec.Quality, fmt.Sprintf(
					"line %d: waitForTimeout is a fixed-delay anti-pattern; wait on a URL, selector, or load state instead", a.LineNumber))
			}
		}
		if p.Confidence < 70 {
			rec.Quality = append(rec.Quality, fmt.Sprintf(
				"page %s (%s) boundary decided with confidence %d; review the page split", p.ID, p.InferredName, p.Confidence))
		}
	}
}

func (b *Builder) flagFragile(rec *Recommendations, sel *selector.Selector, line int, seen map[string]bool) {
	if sel == nil || sel.FragilityScore <= selector.StabilityThreshold {
		return
	}
	norm := normalizeRaw(sel.Raw)
	if seen[norm] {
		return
	}
	seen[norm] = true
	rec.Quality = append(rec.Quality, fmt.Sprintf(
		"line %d: selector %q scores %d for fragility (strategy %s); prefer a test id or role",
		line, sel.Raw, sel.FragilityScore, sel.Strategy))
}

// normalizeRaw is the selector equality key: whitespace-collapsed raw text.
func normalizeRaw(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

func sortedKeys(m map[int][]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedStringKeys(m map[string][]OccurrenceRef) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// JSON renders the document, optionally indented. Key order is fixed by
// the struct definitions, so identical input yields identical bytes.
func (d *Document) JSON(pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(d, "", "  ")
	}
	return json.Marshal(d)
}
