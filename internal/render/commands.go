package render

import (
	"fmt"
	"strings"

	"egokit/internal/policy"
)

// Commands renders the slash-command prompt files keyed by command name.
// Each file carries YAML-style frontmatter with a mandatory description.
// Command bodies are natural-language instructions referencing the primary
// policy document; they never embed executable shell syntax.
func (r *Renderer) Commands() map[string]string {
	commands := map[string]string{
		"validate":         r.validateCommand(),
		"security-review":  r.securityReviewCommand(),
		"checkpoint":       r.checkpointCommand(),
		"refresh-policies": r.refreshPoliciesCommand(),
		"before-code":      r.beforeCodeCommand(),
	}

	for _, name := range sortedModeNames(r.cfg.Ego.Modes) {
		commands["mode-"+name] = r.modeCommand(name, r.cfg.Ego.Modes[name])
	}

	return commands
}

func frontmatter(description string) string {
	return "---\ndescription: " + description + "\n---\n\n"
}

func (r *Renderer) validateCommand() string {
	var b strings.Builder
	b.WriteString(frontmatter("Review recent changes against organizational policy standards"))
	b.WriteString("# Validate Against Organizational Standards\n\n")
	fmt.Fprintf(&b, "Review your recent changes against the %d active standards listed in AGENTS.md.\n\n", len(r.cfg.Rules))

	critical := r.cfg.RulesBySeverity(policy.SeverityCritical)
	if len(critical) > 0 {
		b.WriteString("## Critical Standards\n\n")
		limit := len(critical)
		if limit > 5 {
			limit = 5
		}
		for _, rule := range critical[:limit] {
			fmt.Fprintf(&b, "- **%s**: %s\n", rule.ID, rule.Rule)
		}
		if len(critical) > 5 {
			fmt.Fprintf(&b, "- ... and %d more critical standards in AGENTS.md\n", len(critical)-5)
		}
		b.WriteString("\n")
	}

	b.WriteString("For each file you changed, state which standards apply and whether the change complies. Flag any violation with its policy ID.\n")
	return b.String()
}

func (r *Renderer) securityReviewCommand() string {
	security := r.cfg.RulesByTag("security")

	var b strings.Builder
	b.WriteString(frontmatter("Security review with heightened vulnerability analysis"))
	b.WriteString("# Security Review Mode\n\n")
	b.WriteString("Switch to security-focused analysis. Examine recent changes for vulnerable patterns, injection risks, credential exposure, and missing input validation.\n\n")

	if len(security) > 0 {
		fmt.Fprintf(&b, "## Active Security Policies (%d)\n\n", len(security))
		limit := len(security)
		if limit > 3 {
			limit = 3
		}
		for _, rule := range security[:limit] {
			fmt.Fprintf(&b, "- **%s**: %s\n", rule.ID, rule.Rule)
		}
		b.WriteString("\nThe full list is in the Security Standards section of AGENTS.md.\n")
	}
	return b.String()
}

func (r *Renderer) checkpointCommand() string {
	critical := r.cfg.RulesBySeverity(policy.SeverityCritical)

	var b strings.Builder
	b.WriteString(frontmatter("Verify policy recall and recent compliance"))
	b.WriteString("# Policy Memory Checkpoint\n\n")
	b.WriteString("Without re-reading any files, list the three most important policies you are applying right now.\n\n")
	fmt.Fprintf(&b, "You should be able to recall %d critical standards. ", len(critical))
	b.WriteString("Then review your last three responses for compliance with the security and quality sections of AGENTS.md.\n\n")
	b.WriteString("If you cannot recall the policies clearly, re-read AGENTS.md before continuing.\n")
	return b.String()
}

func (r *Renderer) refreshPoliciesCommand() string {
	var b strings.Builder
	b.WriteString(frontmatter("Re-read the latest organizational policies to prevent drift"))
	b.WriteString("# Refresh Policy Understanding\n\n")
	b.WriteString("Re-read AGENTS.md and the generated settings in full, then confirm your current role, voice, and verbosity calibration match the Agent Behavior Calibration section.\n\n")
	b.WriteString("Use this after the policy registry changes or when switching between projects with different standards.\n")
	return b.String()
}

func (r *Renderer) beforeCodeCommand() string {
	var b strings.Builder
	b.WriteString(frontmatter("Pre-flight policy checklist before generating code"))
	b.WriteString("# Before Writing Code\n\n")
	b.WriteString("Before generating code, identify which AGENTS.md standards apply to the task: security policies if the change touches data or auth, quality standards, documentation and testing requirements.\n\n")

	if len(r.cfg.Ego.ReviewerChecklist) > 0 {
		b.WriteString("Confirm you can satisfy every item on the quality checklist:\n\n")
		writeBullets(&b, r.cfg.Ego.ReviewerChecklist)
		b.WriteString("\n")
	}

	b.WriteString("If any standard is unclear, ask before proceeding rather than guessing.\n")
	return b.String()
}

func (r *Renderer) modeCommand(name string, mode policy.ModeConfig) string {
	var b strings.Builder
	b.WriteString(frontmatter(fmt.Sprintf("Calibrate behavior for %s operations", name)))
	fmt.Fprintf(&b, "# Switch to %s Mode\n\n", titleCase(name))
	fmt.Fprintf(&b, "Adjust your responses to %s verbosity", mode.Verbosity)
	if mode.Focus != "" {
		fmt.Fprintf(&b, " with a focus on %s", mode.Focus)
	}
	b.WriteString(". All other calibration in AGENTS.md stays in effect.\n")
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
