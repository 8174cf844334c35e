package render

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"egokit/internal/policy"
)

var testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *policy.EffectiveConfig {
	return &policy.EffectiveConfig{
		Version: "1.0.0",
		Rules: []policy.PolicyRule{
			{
				ID:               "SEC-001",
				Rule:             "Never log credentials or secrets",
				Severity:         policy.SeverityCritical,
				Tags:             []string{"security"},
				ExampleViolation: `log.Printf("token=%s", token)`,
				ExampleFix:       `log.Printf("token=%s", redact(token))`,
			},
			{ID: "QUAL-001", Rule: "Keep functions under 50 lines", Severity: policy.SeverityWarning, AutoFix: true},
			{ID: "DOCS-001", Rule: "Public APIs include usage examples", Severity: policy.SeverityInfo, Tags: []string{"docs"}},
		},
		Ego: policy.EgoConfig{
			Role: "Senior Software Engineer",
			Tone: policy.ToneConfig{
				Voice:      "professional",
				Verbosity:  "balanced",
				Formatting: []string{"Use code blocks for all code"},
			},
			Defaults:          map[string]string{"auto_validate": "true", "error_handling": "explicit"},
			ReviewerChecklist: []string{"No secrets in code", "Tests cover the change"},
			AskWhenUnsure:     []string{"Database schema changes"},
			Modes: map[string]policy.ModeConfig{
				"implementer": {Verbosity: "concise", Focus: "working code"},
				"reviewer":    {Verbosity: "detailed", Focus: "finding problems"},
			},
		},
		SessionContinuity: &policy.SessionContinuity{
			StartupFiles: []string{"AGENTS.md"},
		},
	}
}

// TestPolicyDocument verifies severity grouping, the security subsection
// with severity markers, and the behavioral summary.
func TestPolicyDocument(t *testing.T) {
	doc := New(testConfig(), testTime).PolicyDocument()

	criticalIdx := strings.Index(doc, "Critical Standards")
	warningIdx := strings.Index(doc, "Quality Guidelines")
	infoIdx := strings.Index(doc, "Recommended Practices")
	if criticalIdx < 0 || warningIdx < 0 || infoIdx < 0 {
		t.Fatalf("Missing severity sections:\n%s", doc)
	}
	if !(criticalIdx < warningIdx && warningIdx < infoIdx) {
		t.Error("Severity sections out of order")
	}

	critSection := doc[criticalIdx:warningIdx]
	if !strings.Contains(critSection, "SEC-001") {
		t.Error("Critical rule not in the critical section")
	}
	if !strings.Contains(doc[warningIdx:infoIdx], "QUAL-001") {
		t.Error("Warning rule not in the warning section")
	}

	if !strings.Contains(doc, "## Security Standards") {
		t.Error("Security subsection missing")
	}
	if !strings.Contains(doc, "[CRITICAL] **SEC-001**") {
		t.Error("Security rule missing its severity marker")
	}

	if !strings.Contains(doc, "Avoid: `log.Printf(\"token=%s\", token)`") {
		t.Error("Example violation missing")
	}
	if !strings.Contains(doc, "**Role:** Senior Software Engineer") {
		t.Error("Behavior summary missing the role")
	}
	if !strings.Contains(doc, "## Session Continuity") {
		t.Error("Session continuity block missing")
	}
	if !strings.Contains(doc, "v1.0.0") {
		t.Error("Charter version missing from the header")
	}
}

func TestPolicyDocument_OmitsEmptySections(t *testing.T) {
	cfg := testConfig()
	cfg.Rules = nil
	cfg.SessionContinuity = nil

	doc := New(cfg, testTime).PolicyDocument()

	if strings.Contains(doc, "Critical Standards") {
		t.Error("Empty critical section rendered")
	}
	if strings.Contains(doc, "Security Standards") {
		t.Error("Empty security section rendered")
	}
	if strings.Contains(doc, "Session Continuity") {
		t.Error("Session continuity rendered without configuration")
	}
}

// TestPolicyDocument_Deterministic verifies identical inputs render
// identical output despite map-backed fields.
func TestPolicyDocument_Deterministic(t *testing.T) {
	first := New(testConfig(), testTime).PolicyDocument()
	for i := 0; i < 10; i++ {
		if got := New(testConfig(), testTime).PolicyDocument(); got != first {
			t.Fatal("PolicyDocument() output varies across runs")
		}
	}
}

// TestSettingsJSON verifies the generated settings parse as JSON and carry
// the policy-derived permission and behavior toggles.
func TestSettingsJSON(t *testing.T) {
	out, err := New(testConfig(), testTime).SettingsJSON()
	if err != nil {
		t.Fatalf("SettingsJSON() failed: %v", err)
	}

	var parsed struct {
		Permissions struct {
			Deny []string `json:"deny"`
			Ask  []string `json:"ask"`
		} `json:"permissions"`
		Behavior struct {
			SecurityFirst bool `json:"security_first"`
		} `json:"behavior"`
		Automation struct {
			AutoValidateOnSave bool `json:"auto_validate_on_save"`
			SuggestFixes       bool `json:"suggest_fixes"`
		} `json:"automation"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("Settings output is not valid JSON: %v\n%s", err, out)
	}

	if !parsed.Behavior.SecurityFirst {
		t.Error("security_first = false with a security-tagged rule present")
	}
	if !parsed.Automation.AutoValidateOnSave {
		t.Error("auto_validate_on_save = false with auto_validate default set")
	}
	if !parsed.Automation.SuggestFixes {
		t.Error("suggest_fixes = false with an auto_fix rule present")
	}
	if !contains(parsed.Permissions.Deny, "network:external") {
		t.Errorf("deny list missing network:external for the credentials rule: %v", parsed.Permissions.Deny)
	}
	if !contains(parsed.Permissions.Ask, "git:push:main") {
		t.Errorf("ask list missing the baseline git:push:main entry: %v", parsed.Permissions.Ask)
	}
}

// TestCommands verifies every command carries frontmatter with a
// description and a body that is prose only, with no embedded shell.
func TestCommands(t *testing.T) {
	commands := New(testConfig(), testTime).Commands()

	for _, name := range []string{"validate", "security-review", "checkpoint", "refresh-policies", "before-code", "mode-implementer", "mode-reviewer"} {
		if _, ok := commands[name]; !ok {
			t.Errorf("Command %q not generated", name)
		}
	}

	for name, body := range commands {
		if !strings.HasPrefix(body, "---\ndescription: ") {
			t.Errorf("Command %q missing frontmatter:\n%s", name, body)
		}
		if strings.Contains(body, "```") || strings.Contains(body, "$(") {
			t.Errorf("Command %q embeds shell or code blocks:\n%s", name, body)
		}
	}

	if !strings.Contains(commands["validate"], "AGENTS.md") {
		t.Error("validate command does not reference the policy document")
	}
	if !strings.Contains(commands["mode-implementer"], "concise") {
		t.Error("mode command missing the mode verbosity")
	}
}

// TestSystemPrompt verifies the constraint framing and rule ordering.
func TestSystemPrompt(t *testing.T) {
	prompt := New(testConfig(), testTime).SystemPrompt()

	if !strings.Contains(prompt, "CRITICAL STANDARDS") {
		t.Error("System prompt missing the critical standards block")
	}
	if !strings.Contains(prompt, "1. Never log credentials or secrets [SEC-001]") {
		t.Errorf("Critical rule not numbered as expected:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Act as: Senior Software Engineer") {
		t.Error("System prompt missing the behavioral mandate")
	}
	if strings.Contains(prompt, "QUAL-001") {
		t.Error("Non-critical, non-security rule leaked into the system prompt")
	}
}

func TestEgoCard(t *testing.T) {
	card := New(testConfig(), testTime).EgoCard()

	if !strings.Contains(card, "# Ego Configuration") {
		t.Error("Ego card missing its heading")
	}
	if !strings.Contains(card, "`implementer`") || !strings.Contains(card, "`reviewer`") {
		t.Error("Ego card missing mode entries")
	}
	// Map-backed modes must render in sorted order.
	if strings.Index(card, "`implementer`") > strings.Index(card, "`reviewer`") {
		t.Error("Modes not sorted in the ego card")
	}
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
