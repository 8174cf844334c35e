package policy

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func validRule() PolicyRule {
	return PolicyRule{
		ID:       "SEC-001",
		Rule:     "Never log credentials",
		Severity: SeverityCritical,
	}
}

// TestPolicyRule_Validate covers the ID, severity, and detector constraints.
func TestPolicyRule_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		r := validRule()
		r.Detector = "secret.regex.v1"
		if err := r.Validate(); err != nil {
			t.Fatalf("Validate() failed on a valid rule: %v", err)
		}
	})

	t.Run("BadIDFormats", func(t *testing.T) {
		for _, id := range []string{"sec-001", "S-001", "SECURITY1-001", "SEC-1", "SEC001", ""} {
			r := validRule()
			r.ID = id
			if err := r.Validate(); err == nil {
				t.Errorf("Validate() accepted bad ID %q", id)
			}
		}
	})

	t.Run("BadSeverity", func(t *testing.T) {
		r := validRule()
		r.Severity = "fatal"
		if err := r.Validate(); err == nil {
			t.Error("Validate() accepted severity \"fatal\"")
		}
	})

	t.Run("BadDetectorName", func(t *testing.T) {
		r := validRule()
		r.Detector = "UpperCase.v1"
		if err := r.Validate(); err == nil {
			t.Error("Validate() accepted detector with uppercase letters")
		}
	})

	t.Run("EmptyDetectorAllowed", func(t *testing.T) {
		r := validRule()
		r.Detector = ""
		if err := r.Validate(); err != nil {
			t.Errorf("Validate() rejected empty detector: %v", err)
		}
	})

	t.Run("ValidationErrorType", func(t *testing.T) {
		r := validRule()
		r.ID = "bad"
		err := r.Validate()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Validate() error type = %T, want *ValidationError", err)
		}
		if verr.Field == "" {
			t.Error("ValidationError.Field is empty, want failing field path")
		}
	})
}

// TestPolicyCharter_Validate checks the version constraint and scope lookup.
func TestPolicyCharter_Validate(t *testing.T) {
	charter := PolicyCharter{Version: "1.0.0"}
	if err := charter.Validate(); err != nil {
		t.Fatalf("Validate() failed on valid charter: %v", err)
	}

	charter.Version = "not-a-version"
	if err := charter.Validate(); err == nil {
		t.Error("Validate() accepted non-semver version")
	}

	charter.Version = ""
	if err := charter.Validate(); err == nil {
		t.Error("Validate() accepted empty version")
	}
}

func TestPolicyCharter_HasScope(t *testing.T) {
	charter := PolicyCharter{Version: "1.0.0"}
	if charter.HasScope("global") {
		t.Error("HasScope() = true on empty charter")
	}
	charter.Scopes = map[string]ScopeRules{"global": {}}
	if !charter.HasScope("global") {
		t.Error("HasScope() = false for a declared scope")
	}
}

// TestEgoConfig_Validate checks the required role and tone fields.
func TestEgoConfig_Validate(t *testing.T) {
	ego := EgoConfig{
		Role: "Senior Engineer",
		Tone: ToneConfig{Voice: "professional", Verbosity: "balanced"},
	}
	if err := ego.Validate(); err != nil {
		t.Fatalf("Validate() failed on valid ego config: %v", err)
	}

	ego.Role = ""
	if err := ego.Validate(); err == nil {
		t.Error("Validate() accepted ego config without role")
	}

	ego.Role = "Senior Engineer"
	ego.Tone.Voice = ""
	if err := ego.Validate(); err == nil {
		t.Error("Validate() accepted tone without voice")
	}
}

// TestScopeRules_Categories verifies the fixed category sequence and that
// entries keep their slice order within a category.
func TestScopeRules_Categories(t *testing.T) {
	s := ScopeRules{
		Security:    []yaml.Node{{}, {}},
		CodeQuality: []yaml.Node{{}},
		Docs:        []yaml.Node{{}},
	}

	categories := s.Categories()
	wantNames := []string{"security", "code_quality", "docs", "licensing", "additional_rules"}
	if len(categories) != len(wantNames) {
		t.Fatalf("Categories() returned %d categories, want %d", len(categories), len(wantNames))
	}
	for i, want := range wantNames {
		if categories[i].Name != want {
			t.Errorf("Categories()[%d].Name = %q, want %q", i, categories[i].Name, want)
		}
	}
	if len(categories[0].Nodes) != 2 || len(categories[1].Nodes) != 1 {
		t.Errorf("Category node counts = %d, %d, want 2, 1",
			len(categories[0].Nodes), len(categories[1].Nodes))
	}
}

func TestEffectiveConfig_Filters(t *testing.T) {
	cfg := EffectiveConfig{
		Rules: []PolicyRule{
			{ID: "SEC-001", Severity: SeverityCritical, Tags: []string{"security"}},
			{ID: "QUAL-001", Severity: SeverityWarning},
			{ID: "SEC-002", Severity: SeverityWarning, Tags: []string{"security", "network"}},
		},
	}

	critical := cfg.RulesBySeverity(SeverityCritical)
	if len(critical) != 1 || critical[0].ID != "SEC-001" {
		t.Errorf("RulesBySeverity(critical) = %v, want [SEC-001]", critical)
	}

	security := cfg.RulesByTag("security")
	if len(security) != 2 {
		t.Fatalf("RulesByTag(security) returned %d rules, want 2", len(security))
	}
	if security[0].ID != "SEC-001" || security[1].ID != "SEC-002" {
		t.Errorf("RulesByTag(security) order = [%s %s], want merge order", security[0].ID, security[1].ID)
	}

	if got := cfg.RulesByTag("nonexistent"); len(got) != 0 {
		t.Errorf("RulesByTag(nonexistent) = %v, want empty", got)
	}
}
