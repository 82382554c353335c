// Package pipeline runs the full analysis chain over raw script text and
// returns the assembled document. Stages always run in the same order and
// each one consumes only the outputs of the stages before it.
package pipeline

import (
	"log/slog"
	"strings"

	"github.com/asub927/pagelift/pkg/analyzer"
	"github.com/asub927/pagelift/pkg/config"
	"github.com/asub927/pagelift/pkg/ir"
	"github.com/asub927/pagelift/pkg/script"
)

// Analyze runs extraction, page detection, component detection, assertion
// classification, and method grouping over text, then builds the output
// document. The only failure is input with no recognizable statements;
// everything else degrades to warnings and confidence scores.
func Analyze(text string, cfg *config.Config, logger *slog.Logger) (*ir.Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	stmts := script.Extract(text)
	if !script.HasSemantic(stmts) {
		return nil, script.ErrNoStatements
	}
	logger.Debug("extracted statements", "total", len(stmts))

	pages, warnings := analyzer.DetectPages(stmts, cfg)
	logger.Debug("detected pages", "pages", len(pages))
	for _, w := range warnings {
		logger.Warn("structural ambiguity", "line", w.Line, "message", w.Message)
	}

	analyzer.ClassifyAssertions(pages)

	components, archNotes := analyzer.DetectComponents(pages, cfg)
	logger.Debug("detected components", "components", len(components))

	genericSeq := 0
	for _, p := range pages {
		p.Methods = analyzer.GroupMethods(p, cfg, p.URLPattern, &genericSeq)
	}
	for _, c := range components {
		c.Methods = componentMethods(c, pages, cfg, &genericSeq)
	}

	sourceLines := len(strings.Split(text, "\n"))
	doc := ir.NewBuilder(sourceLines, stmts, pages, components, archNotes, warnings, cfg).Build()
	logger.Debug("built document",
		"actions", doc.Metadata.ActionCount,
		"assertions", doc.Metadata.AssertionCount,
		"warnings", len(doc.Metadata.Warnings))

	return doc, nil
}

// componentMethods groups the component's template occurrence as if it
// were a tiny page of its own. Actions are cloned with delegation cleared
// so the grouper will consider them; method indices therefore point into
// the occurrence template, not into any page.
func componentMethods(c *analyzer.Component, pages []*analyzer.Page, cfg *config.Config, genericSeq *int) []analyzer.Method {
	if len(c.Occurrences) == 0 {
		return nil
	}
	occ := c.Occurrences[0]
	owner := pages[occ.PageIdx]

	pseudo := &analyzer.Page{URLPattern: owner.URLPattern}
	for _, ai := range occ.ActionIdx {
		clone := *owner.Actions[ai]
		clone.Delegated = false
		clone.IsEntry = false
		pseudo.Actions = append(pseudo.Actions, &clone)
	}

	return analyzer.GroupMethods(pseudo, cfg, owner.URLPattern, genericSeq)
}
