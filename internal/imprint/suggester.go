package imprint

import (
	"fmt"
	"sort"
	"strings"
)

// Correction categories map to charter policy categories.
var correctionToPolicyCategory = map[string]string{
	"type_hints": "code_quality",
	"imports":    "code_quality",
	"docstrings": "documentation",
	"naming":     "code_quality",
	"testing":    "code_quality",
	"formatting": "code_quality",
	"general":    "workflow",
}

// Style preferences all shape how responses are written.
var styleToPolicyCategory = map[string]string{
	"concise":    "documentation",
	"verbose":    "documentation",
	"code_first": "documentation",
}

var confidenceToSeverity = map[Confidence]SuggestionSeverity{
	ConfidenceHigh:   SuggestionRequired,
	ConfidenceMedium: SuggestionRecommended,
	ConfidenceLow:    SuggestionInfo,
}

// SuggesterConfig controls suggestion generation.
type SuggesterConfig struct {
	MinConfidence   Confidence
	IncludeExamples bool
	MaxSuggestions  int
}

// DefaultSuggesterConfig returns the standard settings.
func DefaultSuggesterConfig() SuggesterConfig {
	return SuggesterConfig{
		MinConfidence:   ConfidenceLow,
		IncludeExamples: true,
		MaxSuggestions:  10,
	}
}

// Suggester maps detected patterns to candidate policy rules. ID counters
// are per-instance state, so each run numbers its suggestions from 1.
type Suggester struct {
	config   SuggesterConfig
	counters map[string]int
}

// NewSuggester creates a suggester with fresh ID counters.
func NewSuggester(config SuggesterConfig) *Suggester {
	if config.MaxSuggestions <= 0 {
		config.MaxSuggestions = DefaultSuggesterConfig().MaxSuggestions
	}
	return &Suggester{config: config, counters: make(map[string]int)}
}

// GenerateSuggestions produces charter-compatible rule suggestions from
// all detected patterns, sorted by severity and capped at the configured
// maximum. Implicit patterns of type "policy_reference" are excluded;
// they point at existing policy rather than novel behavior.
func (s *Suggester) GenerateSuggestions(
	corrections []CorrectionPattern,
	stylePrefs []StylePreference,
	implicit []ImplicitPattern,
) []PolicySuggestion {
	var suggestions []PolicySuggestion

	for _, pattern := range corrections {
		if pattern.Confidence.AtLeast(s.config.MinConfidence) {
			suggestions = append(suggestions, s.fromCorrection(pattern))
		}
	}
	for _, pref := range stylePrefs {
		if pref.Confidence.AtLeast(s.config.MinConfidence) {
			suggestions = append(suggestions, s.fromStyle(pref))
		}
	}
	for _, pattern := range implicit {
		if !pattern.Confidence.AtLeast(s.config.MinConfidence) {
			continue
		}
		if suggestion, ok := s.fromImplicit(pattern); ok {
			suggestions = append(suggestions, suggestion)
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return severityRank(suggestions[i].Severity) < severityRank(suggestions[j].Severity)
	})

	if len(suggestions) > s.config.MaxSuggestions {
		suggestions = suggestions[:s.config.MaxSuggestions]
	}
	return suggestions
}

// nextID assigns the next sequential ID for a policy category, using the
// category's first four letters uppercased as the prefix.
func (s *Suggester) nextID(category string) string {
	prefix := strings.ToUpper(category)
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	s.counters[prefix]++
	return fmt.Sprintf("%s-%03d", prefix, s.counters[prefix])
}

func (s *Suggester) fromCorrection(pattern CorrectionPattern) PolicySuggestion {
	category, ok := correctionToPolicyCategory[pattern.Category]
	if !ok {
		category = "workflow"
	}
	return PolicySuggestion{
		SuggestedID: s.nextID(category),
		Severity:    confidenceToSeverity[pattern.Confidence],
		Description: correctionDescription(pattern),
		Rationale:   buildRationale(pattern.Occurrences, pattern.Evidence),
		Example:     s.example(pattern.Evidence),
		Source:      pattern,
	}
}

func (s *Suggester) fromStyle(pref StylePreference) PolicySuggestion {
	category, ok := styleToPolicyCategory[pref.Preference]
	if !ok {
		category = "documentation"
	}
	return PolicySuggestion{
		SuggestedID: s.nextID(category),
		Severity:    confidenceToSeverity[pref.Confidence],
		Description: styleSuggestionDescription(pref),
		Rationale:   buildRationale(pref.Occurrences, pref.Evidence),
		Example:     s.example(pref.Evidence),
		Source:      pref,
	}
}

func (s *Suggester) fromImplicit(pattern ImplicitPattern) (PolicySuggestion, bool) {
	if pattern.Type == "policy_reference" {
		return PolicySuggestion{}, false
	}
	return PolicySuggestion{
		SuggestedID: s.nextID("workflow"),
		Severity:    confidenceToSeverity[pattern.Confidence],
		Description: pattern.Description,
		Rationale:   buildRationale(pattern.Occurrences, pattern.Evidence),
		Example:     s.example(pattern.Evidence),
		Source:      pattern,
	}, true
}

func (s *Suggester) example(evidence []string) string {
	if !s.config.IncludeExamples || len(evidence) == 0 {
		return ""
	}
	return evidence[0]
}

func correctionDescription(pattern CorrectionPattern) string {
	switch pattern.Category {
	case "type_hints":
		return "Use type annotations consistently"
	case "imports":
		return "Follow import organization conventions"
	case "docstrings":
		return "Write documentation comments following project style"
	case "naming":
		return "Follow naming conventions for variables and functions"
	case "testing":
		return "Write tests following project testing patterns"
	case "formatting":
		return "Follow code formatting guidelines"
	case "general":
		return "Follow project coding conventions"
	default:
		return pattern.Description
	}
}

func styleSuggestionDescription(pref StylePreference) string {
	switch pref.Preference {
	case "concise":
		return "Keep responses concise and focused on code"
	case "verbose":
		return "Provide detailed explanations with code"
	case "code_first":
		return "Show code before explanations"
	default:
		return pref.Description
	}
}

func buildRationale(occurrences int, evidence []string) string {
	base := fmt.Sprintf("Detected %d instance(s) of this pattern in session history.", occurrences)
	if len(evidence) > 0 {
		base += fmt.Sprintf(" Example: %q...", truncateRunes(evidence[0], 100))
	}
	return base
}

// YAMLSnippet formats one suggestion as a charter-compatible rule list
// item, ready for manual copy into charter.yaml.
func YAMLSnippet(suggestion PolicySuggestion) string {
	lines := []string{
		"  - id: " + suggestion.SuggestedID,
		"    severity: " + string(suggestion.Severity),
		"    description: " + suggestion.Description,
	}
	if suggestion.Example != "" {
		escaped := strings.ReplaceAll(truncateRunes(suggestion.Example, 100), `"`, `\"`)
		lines = append(lines, `    example: "`+escaped+`"`)
	}
	return strings.Join(lines, "\n")
}

// YAMLSnippets formats all suggestions as one YAML block.
func YAMLSnippets(suggestions []PolicySuggestion) string {
	if len(suggestions) == 0 {
		return "# No policy suggestions generated"
	}
	snippets := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		snippets = append(snippets, YAMLSnippet(s))
	}
	return "rules:\n" + strings.Join(snippets, "\n\n")
}
