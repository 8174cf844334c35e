package render

import (
	"encoding/json"
	"sort"
	"strings"

	"egokit/internal/policy"
)

// settings is the shape of the generated assistant settings file.
type settings struct {
	Permissions permissionSettings `json:"permissions"`
	Behavior    behaviorSettings   `json:"behavior"`
	Automation  automationSettings `json:"automation"`
}

type permissionSettings struct {
	Allow []string `json:"allow"`
	Deny  []string `json:"deny"`
	Ask   []string `json:"ask"`
}

type behaviorSettings struct {
	SecurityFirst                  bool            `json:"security_first"`
	RequireConfirmationForCritical bool            `json:"require_confirmation_for_critical"`
	DocumentationStandards         map[string]bool `json:"documentation_standards"`
}

type automationSettings struct {
	AutoValidateOnSave  bool `json:"auto_validate_on_save"`
	SuggestFixes        bool `json:"suggest_fixes"`
	RememberPreferences bool `json:"remember_preferences"`
}

// SettingsJSON renders the assistant settings file with policy-derived
// permission and behavior toggles.
func (r *Renderer) SettingsJSON() (string, error) {
	security := r.cfg.RulesByTag("security")
	critical := r.cfg.RulesBySeverity(policy.SeverityCritical)

	s := settings{
		Permissions: permissionSettings{
			Allow: []string{"read", "write", "git"},
			Deny:  deniedOperations(security),
			Ask:   confirmationRequired(critical),
		},
		Behavior: behaviorSettings{
			SecurityFirst:                  len(security) > 0,
			RequireConfirmationForCritical: len(critical) > 0,
			DocumentationStandards:         docStandards(r.cfg.Rules),
		},
		Automation: automationSettings{
			AutoValidateOnSave:  r.cfg.Ego.Defaults["auto_validate"] == "true",
			SuggestFixes:        anyAutoFix(r.cfg.Rules),
			RememberPreferences: true,
		},
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

func deniedOperations(security []policy.PolicyRule) []string {
	set := map[string]bool{}
	for _, rule := range security {
		text := strings.ToLower(rule.Rule)
		if strings.Contains(text, "credential") || strings.Contains(text, "secret") {
			set["network:external"] = true
			set["env:write"] = true
		}
		if strings.Contains(text, "https") {
			set["network:http"] = true
		}
	}
	return sortedSet(set)
}

func confirmationRequired(critical []policy.PolicyRule) []string {
	set := map[string]bool{
		"git:push:main":     true,
		"file:delete:batch": true,
	}
	for _, rule := range critical {
		text := strings.ToLower(rule.Rule)
		if strings.Contains(text, "database") {
			set["database_operations"] = true
		}
		if strings.Contains(text, "deploy") {
			set["deployment_changes"] = true
		}
		if strings.Contains(text, "security") {
			set["security_modifications"] = true
		}
	}
	return sortedSet(set)
}

func docStandards(rules []policy.PolicyRule) map[string]bool {
	standards := map[string]bool{
		"require_examples": false,
		"no_superlatives":  false,
		"no_emojis":        false,
	}
	for _, rule := range rules {
		if !rule.HasTag("documentation") && !rule.HasTag("docs") {
			continue
		}
		text := strings.ToLower(rule.Rule)
		if strings.Contains(text, "example") {
			standards["require_examples"] = true
		}
		if strings.Contains(text, "superlative") {
			standards["no_superlatives"] = true
		}
		if strings.Contains(text, "emoji") {
			standards["no_emojis"] = true
		}
	}
	return standards
}

func anyAutoFix(rules []policy.PolicyRule) bool {
	for _, rule := range rules {
		if rule.AutoFix {
			return true
		}
	}
	return false
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
