// Package config defines the closed set of analysis options.
//
// Every recognized option is enumerated here with its default; unknown
// keys in a config file are ignored, never treated as errors. Load reads
// YAML over the defaults, so a partial file only overrides what it names.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/asub927/pagelift/pkg/selector"
)

// URLThreshold selects how navigation targets are compared when deciding
// whether a URL change opens a new page.
type URLThreshold string

const (
	ThresholdFull   URLThreshold = "full"
	ThresholdPath   URLThreshold = "path"
	ThresholdDomain URLThreshold = "domain"
)

// ModalDetection selects whether a modal-opening signal becomes a
// component on the current page or a page of its own.
type ModalDetection string

const (
	ModalAsComponent ModalDetection = "component"
	ModalAsPage      ModalDetection = "page"
)

// Config is the full analysis configuration.
type Config struct {
	PageDetection      PageDetection      `json:"page_detection" yaml:"page_detection"`
	ComponentDetection ComponentDetection `json:"component_detection" yaml:"component_detection"`
	MethodGrouping     MethodGrouping     `json:"method_grouping" yaml:"method_grouping"`
	SelectorAnalysis   SelectorAnalysis   `json:"selector_analysis" yaml:"selector_analysis"`
}

// PageDetection controls page boundary inference.
type PageDetection struct {
	URLChangeCreatesNewPage bool           `json:"url_change_creates_new_page" yaml:"url_change_creates_new_page"`
	URLChangeThreshold      URLThreshold   `json:"url_change_threshold" yaml:"url_change_threshold" validate:"oneof=full path domain"`
	ModalDetection          ModalDetection `json:"modal_detection" yaml:"modal_detection" validate:"oneof=component page"`
	TabSwitchCreatesNewPage bool           `json:"tab_switch_creates_new_page" yaml:"tab_switch_creates_new_page"`
}

// ComponentDetection controls recurring-fragment extraction.
type ComponentDetection struct {
	MinAppearances   int  `json:"min_appearances_for_component" yaml:"min_appearances_for_component" validate:"min=1"`
	DetectHeaders    bool `json:"detect_headers" yaml:"detect_headers"`
	DetectFooters    bool `json:"detect_footers" yaml:"detect_footers"`
	DetectModals     bool `json:"detect_modals" yaml:"detect_modals"`
	DetectNavigation bool `json:"detect_navigation" yaml:"detect_navigation"`
}

// MethodGrouping controls how actions combine into method suggestions.
type MethodGrouping struct {
	MaxActionsPerMethod int  `json:"max_actions_per_method" yaml:"max_actions_per_method" validate:"min=1"`
	GroupRelatedFills   bool `json:"group_related_fills" yaml:"group_related_fills"`
	SeparateNavigation  bool `json:"separate_navigation" yaml:"separate_navigation"`
	SeparateAssertions  bool `json:"separate_assertions" yaml:"separate_assertions"`
}

// SelectorAnalysis controls fragility scoring output.
type SelectorAnalysis struct {
	SuggestImprovements bool                `json:"suggest_improvements" yaml:"suggest_improvements"`
	PreferredStrategies []selector.Strategy `json:"preferred_strategies" yaml:"preferred_strategies" validate:"dive,oneof=testid role text css xpath placeholder"`
	FlagFragile         bool                `json:"flag_fragile_selectors" yaml:"flag_fragile_selectors"`
}

// Default returns the stated default configuration.
func Default() *Config {
	return &Config{
		PageDetection: PageDetection{
			URLChangeCreatesNewPage: true,
			URLChangeThreshold:      ThresholdPath,
			ModalDetection:          ModalAsComponent,
			TabSwitchCreatesNewPage: false,
		},
		ComponentDetection: ComponentDetection{
			MinAppearances:   2,
			DetectHeaders:    true,
			DetectFooters:    true,
			DetectModals:     true,
			DetectNavigation: true,
		},
		MethodGrouping: MethodGrouping{
			MaxActionsPerMethod: 8,
			GroupRelatedFills:   true,
			SeparateNavigation:  false,
			SeparateAssertions:  true,
		},
		SelectorAnalysis: SelectorAnalysis{
			SuggestImprovements: true,
			PreferredStrategies: []selector.Strategy{
				selector.StrategyTestID,
				selector.StrategyRole,
				selector.StrategyText,
				selector.StrategyCSS,
			},
			FlagFragile: true,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks option values against their allowed ranges.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
