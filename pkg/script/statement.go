// Package script extracts discrete statements from raw browser-automation
// test scripts (Playwright-style dialect).
//
// The extractor performs line-oriented scanning to produce statements for
// the downstream analyzers. It never fails: lines it cannot recognize
// become structural statements so that line numbering and forward progress
// are always preserved.
//
// Statement Kinds:
//
//	navigation  - page.goto(url)
//	interaction - click/fill/select/check/hover/press/setInputFiles/...
//	wait        - waitForURL/waitForSelector/waitForTimeout/waitForLoadState
//	assertion   - expect(...).toXxx(...)
//	structural  - comments, block delimiters, imports, unrecognized lines
package script

// Kind classifies an extracted statement.
type Kind string

const (
	KindNavigation  Kind = "navigation"
	KindInteraction Kind = "interaction"
	KindWait        Kind = "wait"
	KindAssertion   Kind = "assertion"
	KindStructural  Kind = "structural"
)

// Subtype distinguishes notable interaction and wait families that the
// page-boundary heuristics care about.
type Subtype string

const (
	SubtypeNone   Subtype = ""
	SubtypeUpload Subtype = "file_upload"
	SubtypeDialog Subtype = "dialog"
	SubtypeTab    Subtype = "tab"
)

// Statement is one parsed unit of the input script. Statements are
// immutable once extracted: later stages read them, never mutate them.
type Statement struct {
	// LineNumber is 1-based and matches the source text. A statement
	// spanning multiple physical lines carries the line of its first token.
	LineNumber int

	Kind    Kind
	Subtype Subtype

	// RawText is the trimmed logical statement text (continuation lines
	// collapsed, trailing semicolon kept as written).
	RawText string

	// ActionVerb is the trailing call name: goto, click, fill,
	// waitForURL, toContainText, ...
	ActionVerb string

	// SelectorExpression is the raw locator expression, empty when the
	// statement targets no element.
	SelectorExpression string

	// LiteralArguments holds the literal values passed to the call in
	// order (fill value, selectOption value, expected assertion value...).
	LiteralArguments []string

	// TargetURL is set only for navigation and wait-for-URL statements.
	TargetURL string
}

// IsSemantic reports whether the statement carries meaning for the
// analyzers (everything except structural filler).
func (s Statement) IsSemantic() bool {
	return s.Kind != KindStructural
}

// IsAction reports whether the statement becomes an Action record in the
// output document (any semantic, non-assertion statement).
func (s Statement) IsAction() bool {
	return s.Kind == KindNavigation || s.Kind == KindInteraction || s.Kind == KindWait
}
