// Pagelift - browser test script analyzer
// Reads Playwright-style test scripts and emits a page-object intermediate
// representation as JSON.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/asub927/pagelift/pkg/config"
	"github.com/asub927/pagelift/pkg/ir"
	"github.com/asub927/pagelift/pkg/pipeline"
	"github.com/asub927/pagelift/pkg/script"
	"github.com/asub927/pagelift/pkg/selector"
)

const versionStr = "0.3.0"

var (
	configPath     string
	pretty         bool
	minAppearances int
	maxActions     int
	verbose        bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pagelift",
		Short: "Analyze browser test scripts into a page-object model",
		Long: `pagelift parses linear browser automation test scripts, detects page
boundaries and reusable components, and emits a cross-referenced JSON
document describing the page-object structure the script implies.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log analysis stages to stderr")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a script and print the JSON document",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	analyzeCmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	analyzeCmd.Flags().IntVar(&minAppearances, "min-appearances", 0, "override component min_appearances")
	analyzeCmd.Flags().IntVar(&maxActions, "max-actions", 0, "override method max_actions_per_method")

	statsCmd := &cobra.Command{
		Use:   "stats [file]",
		Short: "Print a human-readable analysis summary",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStats,
	}
	statsCmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pagelift version %s\n", versionStr)
		},
	}

	rootCmd.AddCommand(analyzeCmd, statsCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	doc, err := analyzeInput(args)
	if err != nil {
		return err
	}

	out, err := doc.JSON(pretty)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	doc, err := analyzeInput(args)
	if err != nil {
		return err
	}

	m := doc.Metadata
	fmt.Printf("source lines:  %d\n", m.SourceLineCount)
	fmt.Printf("statements:    %d\n", m.StatementCount)
	fmt.Printf("actions:       %d\n", m.ActionCount)
	fmt.Printf("assertions:    %d\n", m.AssertionCount)
	fmt.Printf("pages:         %d\n", m.UniquePagesDetected)
	fmt.Printf("components:    %d\n", m.ComponentsDetected)

	fmt.Println("\npages:")
	for _, p := range doc.Pages {
		fmt.Printf("  %s  %s (confidence %d, %d actions, %d methods)\n",
			p.ID, p.InferredName, p.Confidence, len(p.Actions), len(p.SuggestedMethods))
	}
	if len(doc.Components) > 0 {
		fmt.Println("\ncomponents:")
		for _, c := range doc.Components {
			fmt.Printf("  %s  %s (%s, confidence %d, on %d pages)\n",
				c.ID, c.InferredName, c.Type, c.Confidence, c.AppearanceCount)
		}
	}
	if len(doc.SelectorAnalysis.ByStrategy) > 0 {
		fmt.Println("\nselector strategies:")
		strategies := make([]string, 0, len(doc.SelectorAnalysis.ByStrategy))
		for s := range doc.SelectorAnalysis.ByStrategy {
			strategies = append(strategies, s)
		}
		sort.Strings(strategies)
		for _, s := range strategies {
			fmt.Printf("  %-12s %d\n", s, doc.SelectorAnalysis.ByStrategy[s])
		}
	}
	if len(doc.SelectorAnalysis.Duplicates) > 0 {
		fmt.Println("\nduplicate selectors:")
		for _, d := range doc.SelectorAnalysis.Duplicates {
			fmt.Printf("  %q used %d times\n", d.Selector, d.Count)
		}
	}
	if worst := worstSelectors(doc); len(worst) > 0 {
		fmt.Println("\nfragile selectors:")
		for _, w := range worst {
			fmt.Println("  " + w)
		}
	}
	for _, w := range m.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return nil
}

// worstSelectors lists every distinct selector above the stability
// threshold with its score, worst first.
func worstSelectors(doc *ir.Document) []string {
	type scored struct {
		raw   string
		score int
	}
	seen := map[string]bool{}
	var all []scored
	collect := func(sel *selector.Selector) {
		if sel == nil || sel.FragilityScore <= selector.StabilityThreshold || seen[sel.Raw] {
			return
		}
		seen[sel.Raw] = true
		all = append(all, scored{sel.Raw, sel.FragilityScore})
	}
	for _, p := range doc.Pages {
		for _, a := range p.Actions {
			collect(a.Selector)
		}
		for _, as := range p.Assertions {
			collect(as.Selector)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	out := make([]string, 0, len(all))
	for _, s := range all {
		out = append(out, fmt.Sprintf("%q scores %d", s.raw, s.score))
	}
	return out
}

func analyzeInput(args []string) (*ir.Document, error) {
	text, err := readInput(args)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.DiscardHandler)
	if verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	doc, err := pipeline.Analyze(text, cfg, logger)
	if errors.Is(err, script.ErrNoStatements) {
		return nil, fmt.Errorf("input has no recognizable script statements")
	}
	if err != nil {
		return nil, err
	}
	doc.Metadata.AnalyzedAt = time.Now().UTC().Format(time.RFC3339)
	return doc, nil
}

func readInput(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no input provided (pass a file or pipe a script)")
	}
	return string(data), nil
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if minAppearances > 0 {
		cfg.ComponentDetection.MinAppearances = minAppearances
	}
	if maxActions > 0 {
		cfg.MethodGrouping.MaxActionsPerMethod = maxActions
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
