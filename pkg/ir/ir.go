// Package ir defines the intermediate representation emitted by the
// analyzer. The IR sits between structure inference and code generation:
// a downstream generator renders page objects from this document and
// trusts its referential integrity completely, so every id listed by a
// method or component must resolve within the same document.
//
// Ids follow the stable pattern {kind}_{n}: 1-based, contiguous per kind,
// assigned in emission order and never renumbered.
package ir

import (
	"github.com/asub927/pagelift/pkg/analyzer"
	"github.com/asub927/pagelift/pkg/selector"
)

// Document is the complete analysis output.
type Document struct {
	Metadata         Metadata         `json:"metadata"`
	Pages            []Page           `json:"pages"`
	Components       []Component      `json:"components"`
	ActionSequences  []SequenceEntry  `json:"action_sequences"`
	SelectorAnalysis SelectorAnalysis `json:"selector_analysis"`
	Recommendations  Recommendations  `json:"recommendations"`
}

// Metadata carries summary counts and the accumulated warnings.
type Metadata struct {
	// AnalyzedAt is set by the caller (the CLI stamps it); the library
	// leaves it empty so identical input yields identical bytes.
	AnalyzedAt          string   `json:"analyzed_at,omitempty"`
	SourceLineCount     int      `json:"source_line_count"`
	StatementCount      int      `json:"statement_count"`
	ActionCount         int      `json:"action_count"`
	AssertionCount      int      `json:"assertion_count"`
	UniquePagesDetected int      `json:"unique_pages_detected"`
	ComponentsDetected  int      `json:"components_detected"`
	Warnings            []string `json:"warnings"`
}

// Page is one inferred logical screen.
type Page struct {
	ID               string           `json:"id"`
	InferredName     string           `json:"inferred_name"`
	Confidence       int              `json:"confidence"`
	URLPattern       string           `json:"url_pattern,omitempty"`
	EntryEvent       string           `json:"entry_event"`
	ExitEvent        string           `json:"exit_event"`
	Actions          []Action         `json:"actions"`
	Assertions       []Assertion      `json:"assertions"`
	SuggestedMethods []Method         `json:"suggested_methods"`
	ComponentUsages  []ComponentUsage `json:"component_usages,omitempty"`
}

// Action is a page-owned action record.
type Action struct {
	ID             string                `json:"id"`
	LineNumber     int                   `json:"line_number"`
	ActionVerb     string                `json:"action_verb"`
	RawText        string                `json:"raw_text"`
	TargetURL      string                `json:"target_url,omitempty"`
	Selector       *selector.Selector    `json:"selector,omitempty"`
	Parameters     []analyzer.Parameter  `json:"parameters,omitempty"`
	WaitBehavior   analyzer.WaitBehavior `json:"wait_behavior"`
	ComponentUsage *ComponentRef         `json:"component_usage,omitempty"`
}

// ComponentRef is the non-owning back-reference from a delegated action
// to the component that claimed its pattern.
type ComponentRef struct {
	ComponentID string `json:"component_id"`
}

// Assertion is a page-owned assertion record.
type Assertion struct {
	ID            string             `json:"id"`
	LineNumber    int                `json:"line_number"`
	RawText       string             `json:"raw_text"`
	AssertionType string             `json:"assertion_type"`
	Selector      *selector.Selector `json:"selector,omitempty"`
	ExpectedValue string             `json:"expected_value,omitempty"`
	Placement     string             `json:"placement_recommendation"`
}

// Method is a suggested logical operation over consecutive actions.
type Method struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Confidence   int                  `json:"confidence"`
	Alternatives []string             `json:"alternatives,omitempty"`
	ActionIDs    []string             `json:"action_ids"`
	AssertionIDs []string             `json:"assertion_ids,omitempty"`
	Parameters   []analyzer.Parameter `json:"parameters,omitempty"`
	Complexity   int                  `json:"complexity"`
}

// Component is a reusable fragment recurring across pages.
type Component struct {
	ID                string              `json:"id"`
	InferredName      string              `json:"inferred_name"`
	Type              string              `json:"type"`
	Confidence        int                 `json:"confidence"`
	AppearanceCount   int                 `json:"appearance_count"`
	AppearsOnPageIDs  []string            `json:"appears_on_page_ids"`
	SelectorTemplates []string            `json:"selector_templates"`
	Instances         []ComponentInstance `json:"instances"`
	SuggestedMethods  []Method            `json:"suggested_methods"`
}

// ComponentInstance records which page-owned actions realize the
// component's pattern on one page.
type ComponentInstance struct {
	PageID    string   `json:"page_id"`
	ActionIDs []string `json:"action_ids"`
}

// ComponentUsage summarizes a page's delegations to one component.
type ComponentUsage struct {
	ComponentID string   `json:"component_id"`
	ActionIDs   []string `json:"action_ids"`
}

// SequenceEntry is one step of the flattened source-order trace.
type SequenceEntry struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	LineNumber int    `json:"line_number"`
}

// SelectorAnalysis aggregates strategy usage across the document.
type SelectorAnalysis struct {
	TotalSelectors  int                 `json:"total_selectors"`
	UniqueSelectors int                 `json:"unique_selectors"`
	ByStrategy      map[string]int      `json:"by_strategy"`
	Duplicates      []DuplicateSelector `json:"duplicates"`
}

// DuplicateSelector is one normalized selector bound to two or more
// distinct records.
type DuplicateSelector struct {
	Selector    string          `json:"selector"`
	Count       int             `json:"count"`
	Occurrences []OccurrenceRef `json:"occurrences"`
}

// OccurrenceRef points at one record using a duplicated selector.
type OccurrenceRef struct {
	ID         string `json:"id"`
	LineNumber int    `json:"line_number"`
}

// Recommendations groups advisory output by audience.
type Recommendations struct {
	Architectural []string `json:"architectural"`
	Refactoring   []string `json:"refactoring"`
	Quality       []string `json:"quality"`
}
