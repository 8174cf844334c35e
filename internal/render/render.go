// Package render turns an effective configuration into the text artifacts
// consumed by AI coding assistants: the primary policy document, JSON
// settings, slash-command prompts, a system-prompt fragment, and the ego
// quick-reference card. Rendering is deterministic and performs no I/O.
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"egokit/internal/policy"
)

// Renderer produces artifact text from one effective configuration.
type Renderer struct {
	cfg *policy.EffectiveConfig
	ts  time.Time
}

// New creates a renderer. The timestamp is embedded in generated headers;
// callers pass a fixed value for reproducible output.
func New(cfg *policy.EffectiveConfig, ts time.Time) *Renderer {
	return &Renderer{cfg: cfg, ts: ts}
}

// severityHeadings maps rule severity to the section heading used in the
// primary policy document.
var severityHeadings = []struct {
	severity policy.Severity
	heading  string
}{
	{policy.SeverityCritical, "Critical Standards - Must Follow"},
	{policy.SeverityWarning, "Quality Guidelines - Should Follow"},
	{policy.SeverityInfo, "Recommended Practices"},
}

// PolicyDocument renders the managed-section body for the primary policy
// document: severity-grouped rule listings, the security subsection, the
// behavioral summary, and the session-continuity block when configured.
func (r *Renderer) PolicyDocument() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Organizational Policy - v%s\n", r.cfg.Version)
	fmt.Fprintf(&b, "*Generated: %s*\n\n", r.ts.UTC().Format(time.RFC3339))

	for _, group := range severityHeadings {
		rules := r.cfg.RulesBySeverity(group.severity)
		if len(rules) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", group.heading)
		for _, rule := range rules {
			writeRuleBullet(&b, rule)
		}
		b.WriteString("\n")
	}

	if security := r.cfg.RulesByTag("security"); len(security) > 0 {
		b.WriteString("## Security Standards\n\n")
		for _, rule := range security {
			fmt.Fprintf(&b, "- [%s] **%s**: %s\n", strings.ToUpper(string(rule.Severity)), rule.ID, rule.Rule)
		}
		b.WriteString("\n")
	}

	r.writeBehaviorSummary(&b)
	r.writeSessionContinuity(&b)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeRuleBullet(b *strings.Builder, rule policy.PolicyRule) {
	fmt.Fprintf(b, "- **%s**: %s\n", rule.ID, rule.Rule)
	if rule.ExampleViolation != "" && rule.ExampleFix != "" {
		fmt.Fprintf(b, "  - Avoid: `%s`\n", rule.ExampleViolation)
		fmt.Fprintf(b, "  - Prefer: `%s`\n", rule.ExampleFix)
	}
}

func (r *Renderer) writeBehaviorSummary(b *strings.Builder) {
	ego := r.cfg.Ego

	b.WriteString("## Agent Behavior Calibration\n\n")
	fmt.Fprintf(b, "**Role:** %s\n", ego.Role)
	fmt.Fprintf(b, "**Voice:** %s\n", ego.Tone.Voice)
	fmt.Fprintf(b, "**Verbosity:** %s\n\n", ego.Tone.Verbosity)

	if len(ego.Tone.Formatting) > 0 {
		b.WriteString("**Output Formatting:**\n")
		writeBullets(b, ego.Tone.Formatting)
		b.WriteString("\n")
	}

	if len(ego.Defaults) > 0 {
		b.WriteString("### Consistent Behaviors\n")
		for _, key := range sortedKeys(ego.Defaults) {
			fmt.Fprintf(b, "- %s: %s\n", key, ego.Defaults[key])
		}
		b.WriteString("\n")
	}

	if len(ego.ReviewerChecklist) > 0 {
		b.WriteString("### Quality Checklist - Verify Every Time\n")
		writeBullets(b, ego.ReviewerChecklist)
		b.WriteString("\n")
	}

	if len(ego.AskWhenUnsure) > 0 {
		b.WriteString("### Ask Before Proceeding With\n")
		writeBullets(b, ego.AskWhenUnsure)
		b.WriteString("\n")
	}

	if len(ego.Modes) > 0 {
		b.WriteString("### Available Modes\n")
		for _, name := range sortedModeNames(ego.Modes) {
			mode := ego.Modes[name]
			fmt.Fprintf(b, "- **%s**: %s verbosity\n", name, mode.Verbosity)
			if mode.Focus != "" {
				fmt.Fprintf(b, "  - Focus: %s\n", mode.Focus)
			}
		}
		b.WriteString("\n")
	}
}

func (r *Renderer) writeSessionContinuity(b *strings.Builder) {
	sc := r.cfg.SessionContinuity
	if sc == nil {
		return
	}

	b.WriteString("## Session Continuity\n\n")
	if len(sc.StartupFiles) > 0 {
		b.WriteString("At session start, read:\n")
		writeBullets(b, sc.StartupFiles)
	}
	if len(sc.StartupCommands) > 0 {
		b.WriteString("At session start, run:\n")
		writeBullets(b, sc.StartupCommands)
	}
	if len(sc.ShutdownFiles) > 0 {
		b.WriteString("Before session end, update:\n")
		writeBullets(b, sc.ShutdownFiles)
	}
	if len(sc.ShutdownCommands) > 0 {
		b.WriteString("Before session end, run:\n")
		writeBullets(b, sc.ShutdownCommands)
	}
	b.WriteString("\n")
}

// EgoCard renders the EGO.md quick-reference card.
func (r *Renderer) EgoCard() string {
	ego := r.cfg.Ego
	var b strings.Builder

	b.WriteString("# Ego Configuration\n")
	fmt.Fprintf(&b, "*Generated: %s*\n\n", r.ts.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "**Role:** %s\n", ego.Role)
	fmt.Fprintf(&b, "**Voice:** %s\n", ego.Tone.Voice)
	fmt.Fprintf(&b, "**Verbosity:** %s\n\n", ego.Tone.Verbosity)

	if len(ego.Tone.Formatting) > 0 {
		b.WriteString("**Formatting:**\n")
		writeBullets(&b, ego.Tone.Formatting)
		b.WriteString("\n")
	}

	if len(ego.Modes) > 0 {
		b.WriteString("**Available Modes:**\n")
		for _, name := range sortedModeNames(ego.Modes) {
			mode := ego.Modes[name]
			fmt.Fprintf(&b, "- `%s`: %s\n", name, mode.Verbosity)
			if mode.Focus != "" {
				fmt.Fprintf(&b, "  - Focus: %s\n", mode.Focus)
			}
		}
		b.WriteString("\n")
	}

	if len(ego.AskWhenUnsure) > 0 {
		b.WriteString("**Ask when unsure about:**\n")
		writeBullets(&b, ego.AskWhenUnsure)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// SystemPrompt renders the system-prompt fragment: critical rules framed as
// standing constraints, the behavioral mandate, and the reviewer checklist.
func (r *Renderer) SystemPrompt() string {
	var b strings.Builder

	b.WriteString("=== ORGANIZATIONAL POLICY CONSTRAINTS ===\n\n")
	b.WriteString("These standards apply to every response in this session:\n\n")

	if critical := r.cfg.RulesBySeverity(policy.SeverityCritical); len(critical) > 0 {
		b.WriteString("CRITICAL STANDARDS (never violate):\n")
		for i, rule := range critical {
			fmt.Fprintf(&b, "  %d. %s [%s]\n", i+1, rule.Rule, rule.ID)
		}
		b.WriteString("\n")
	}

	ego := r.cfg.Ego
	b.WriteString("BEHAVIORAL MANDATE:\n")
	fmt.Fprintf(&b, "  - Act as: %s\n", ego.Role)
	fmt.Fprintf(&b, "  - Voice: %s\n", ego.Tone.Voice)
	fmt.Fprintf(&b, "  - Verbosity: %s\n", ego.Tone.Verbosity)
	b.WriteString("\n")

	if len(ego.ReviewerChecklist) > 0 {
		b.WriteString("VALIDATION CHECKLIST (before any code):\n")
		for _, item := range ego.ReviewerChecklist {
			fmt.Fprintf(&b, "  - %s\n", item)
		}
		b.WriteString("\n")
	}

	if security := r.cfg.RulesByTag("security"); len(security) > 0 {
		b.WriteString("SECURITY IMPERATIVES:\n")
		for _, rule := range security {
			fmt.Fprintf(&b, "  - %s [%s]\n", rule.Rule, rule.ID)
		}
		b.WriteString("\n")
	}

	b.WriteString("=== END POLICY CONSTRAINTS ===\n")
	return b.String()
}

func writeBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedModeNames(m map[string]policy.ModeConfig) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
