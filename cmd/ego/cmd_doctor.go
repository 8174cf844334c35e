package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"egokit/internal/policy"
)

var doctorScopes []string

var (
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

// doctorCmd prints the effective merged configuration without writing
// anything.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Show the effective merged configuration for a scope precedence",
	RunE:  runDoctor,
}

func init() {
	doctorCmd.Flags().StringSliceVar(&doctorScopes, "scope", []string{"global"}, "scope precedence, lowest first")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}

	effective, err := reg.Resolve(doctorScopes)
	if err != nil {
		return err
	}

	fmt.Println(headingStyle.Render(fmt.Sprintf("Charter v%s", effective.Version)))
	fmt.Println(dimStyle.Render("scopes: " + strings.Join(doctorScopes, " < ")))
	fmt.Println()

	fmt.Println(headingStyle.Render(fmt.Sprintf("Effective rules (%d)", len(effective.Rules))))
	for _, rule := range effective.Rules {
		fmt.Printf("  %s %s: %s\n", severityBadge(rule.Severity), rule.ID, rule.Rule)
	}
	fmt.Println()

	ego := effective.Ego
	fmt.Println(headingStyle.Render("Behavior"))
	fmt.Printf("  role:      %s\n", ego.Role)
	fmt.Printf("  voice:     %s\n", ego.Tone.Voice)
	fmt.Printf("  verbosity: %s\n", ego.Tone.Verbosity)
	if len(ego.Modes) > 0 {
		names := make([]string, 0, len(ego.Modes))
		for name := range ego.Modes {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("  modes:     %s\n", strings.Join(names, ", "))
	}
	return nil
}

func severityBadge(sev policy.Severity) string {
	switch sev {
	case policy.SeverityCritical:
		return criticalStyle.Render("[critical]")
	case policy.SeverityWarning:
		return warningStyle.Render("[warning] ")
	default:
		return infoStyle.Render("[info]    ")
	}
}
