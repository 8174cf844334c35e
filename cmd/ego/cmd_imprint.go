package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"egokit/internal/imprint"
)

var (
	imprintLogs          string
	imprintMinConfidence string
	imprintMax           int
	imprintYAML          bool
)

// imprintCmd mines session transcripts for correction patterns and prints
// suggested policy rules. Suggestions are never written to the charter;
// they are for manual review.
var imprintCmd = &cobra.Command{
	Use:   "imprint",
	Short: "Mine session transcripts for patterns and suggest policy rules",
	Long: `Scans transcript logs (line-delimited JSON session logs and JSON chat
exports) for explicit corrections, stated style preferences, and repeated
policy references, then maps the recurring ones to candidate charter rules.

Suggestions are printed for manual copy into charter.yaml and are never
applied automatically.`,
	RunE: runImprint,
}

func init() {
	imprintCmd.Flags().StringVar(&imprintLogs, "logs", ".", "directory containing transcript logs")
	imprintCmd.Flags().StringVar(&imprintMinConfidence, "min-confidence", "low", "minimum pattern confidence (low, medium, high)")
	imprintCmd.Flags().IntVar(&imprintMax, "max", 10, "maximum suggestions to emit")
	imprintCmd.Flags().BoolVar(&imprintYAML, "yaml", false, "print suggestions as charter-ready YAML snippets")
}

func runImprint(cmd *cobra.Command, args []string) error {
	minConfidence, err := imprint.ParseConfidence(imprintMinConfidence)
	if err != nil {
		return err
	}

	sessions := imprint.LoadSessions(imprintLogs, imprint.LineLogParser{}, imprint.ExportParser{})
	if len(sessions) == 0 {
		fmt.Println("No sessions found under", imprintLogs)
		return nil
	}
	logger.Debug("loaded sessions", zap.Int("count", len(sessions)))

	suggesterCfg := imprint.DefaultSuggesterConfig()
	suggesterCfg.MinConfidence = minConfidence
	suggesterCfg.MaxSuggestions = imprintMax

	report := imprint.Analyze(sessions, imprint.DefaultDetectorConfig(), suggesterCfg)

	if imprintYAML {
		fmt.Println(imprint.YAMLSnippets(report.Suggestions))
		return nil
	}

	printReport(report)
	return nil
}

func printReport(report *imprint.Report) {
	fmt.Println(headingStyle.Render(fmt.Sprintf("Analyzed %d sessions", report.SessionsAnalyzed)))
	fmt.Println()

	if !report.HasPatterns() {
		fmt.Println("No recurring patterns detected.")
		return
	}

	if len(report.Corrections) > 0 {
		fmt.Println(headingStyle.Render("Correction patterns"))
		for _, p := range report.Corrections {
			fmt.Printf("  %-12s %dx (%s): %s\n", p.Category, p.Occurrences, p.Confidence, p.Description)
		}
		fmt.Println()
	}

	if len(report.StylePreferences) > 0 {
		fmt.Println(headingStyle.Render("Style preferences"))
		for _, p := range report.StylePreferences {
			fmt.Printf("  %-12s %dx (%s): %s\n", p.Preference, p.Occurrences, p.Confidence, p.Description)
		}
		fmt.Println()
	}

	if len(report.ImplicitPatterns) > 0 {
		fmt.Println(headingStyle.Render("Implicit patterns"))
		for _, p := range report.ImplicitPatterns {
			fmt.Printf("  %-12s %dx (%s): %s\n", p.Type, p.Occurrences, p.Confidence, p.Description)
		}
		fmt.Println()
	}

	if len(report.Suggestions) > 0 {
		fmt.Println(headingStyle.Render(fmt.Sprintf("Suggested rules (%d)", len(report.Suggestions))))
		for _, s := range report.Suggestions {
			fmt.Printf("  %s [%s] %s\n", s.SuggestedID, s.Severity, s.Description)
			fmt.Println(dimStyle.Render("    " + s.Rationale))
		}
		fmt.Println()
		fmt.Println(dimStyle.Render("Run with --yaml for charter-ready snippets. Suggestions are never auto-applied."))
	}
}
