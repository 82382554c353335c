// Package analyzer infers the latent structure of an extracted statement
// sequence: page boundaries, recurring components, logical method groups,
// and assertion placement.
//
// Nothing in the input marks any of this explicitly, so every detector is
// a deterministic scoring function over lexical signals, never a hard
// grammar. Uncertainty surfaces as confidence scores and warnings; no
// detector fails.
package analyzer

import (
	"github.com/asub927/pagelift/pkg/script"
	"github.com/asub927/pagelift/pkg/selector"
)

// Warning records an ambiguous structural decision with its source line.
type Warning struct {
	Line    int
	Message string
}

// WaitBehavior describes explicit waiting observed before an action.
type WaitBehavior struct {
	PrecededByWait bool `json:"preceded_by_wait,omitempty"`
	// TimeoutAntiPattern flags a fixed-duration waitForTimeout, which the
	// quality recommendations call out.
	TimeoutAntiPattern bool `json:"timeout_anti_pattern,omitempty"`
}

// Parameter is a literal input extracted from an action.
type Parameter struct {
	Name              string `json:"name"`
	ExampleValue      string `json:"example_value,omitempty"`
	ShouldBeParameter bool   `json:"should_be_parameter"`
}

// Action is a non-assertion statement bound to a page, enriched with its
// classified selector, parameters, and wait behavior. A page owns each of
// its actions; a component may additionally reference one.
type Action struct {
	Stmt     script.Statement
	Selector *selector.Selector
	Params   []Parameter
	Wait     WaitBehavior

	// IsEntry marks the boundary statement that opened the owning page.
	IsEntry bool

	// Delegated is set when a component claims this action's pattern.
	// The action stays on its page; this is bookkeeping, not relocation.
	Delegated      bool
	ComponentIndex int
}

// Assertion is an assertion statement bound to a page.
type Assertion struct {
	Stmt     script.Statement
	Selector *selector.Selector
	Type     string
	Expected string
	// Placement is in_page_object, separate_method, or in_test.
	Placement string
	// PrevInteraction is set when the immediately preceding semantic
	// statement was an interaction.
	PrevInteraction bool
}

// Page is a contiguous run of statements bounded by navigation events.
// Created once by DetectPages and never split or merged afterward.
type Page struct {
	InferredName string
	Confidence   int
	URLPattern   string
	EntryEvent   string
	ExitEvent    string

	Actions    []*Action
	Assertions []*Assertion
	Methods    []Method
}

// Method is a suggested grouping of consecutive actions into one logical
// operation. Index slices refer into the owner's Actions/Assertions.
type Method struct {
	Name         string
	Confidence   int
	Alternatives []string
	ActionIdx    []int
	AssertionIdx []int
	Parameters   []Parameter
	Complexity   int
	GenericName  bool
}

// Occurrence records one instance of a component's pattern on a page.
type Occurrence struct {
	PageIdx   int
	ActionIdx []int
}

// Component is a named reusable fragment recurring across pages. It never
// owns an action; occurrences back-reference page-owned actions.
type Component struct {
	InferredName      string
	Type              string
	Confidence        int
	SelectorTemplates []string
	Occurrences       []Occurrence
	Methods           []Method
}

// PageCount returns the number of distinct pages the component appears on.
func (c *Component) PageCount() int {
	seen := map[int]bool{}
	for _, o := range c.Occurrences {
		seen[o.PageIdx] = true
	}
	return len(seen)
}
