// Package imprint mines AI-session transcript logs for correction
// patterns, stated style preferences, and implicit policy references, and
// turns the recurring ones into candidate policy rules. Pure regex and
// frequency analysis; no ML, no embeddings.
package imprint

import (
	"fmt"
	"strings"
	"time"
)

// MessageRole identifies the sender of a transcript message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Confidence classifies a pattern purely by occurrence frequency.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"    // 2 occurrences
	ConfidenceMedium Confidence = "medium" // 3-4 occurrences
	ConfidenceHigh   Confidence = "high"   // 5+ occurrences
)

// rank orders confidence levels for threshold comparison.
func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether c meets or exceeds the minimum level.
func (c Confidence) AtLeast(min Confidence) bool {
	return c.rank() >= min.rank()
}

// ParseConfidence converts a user-supplied level name to a Confidence,
// rejecting anything outside low, medium, and high.
func ParseConfidence(s string) (Confidence, error) {
	switch c := Confidence(strings.ToLower(s)); c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return c, nil
	default:
		return "", fmt.Errorf("unknown confidence level %q (expected low, medium, or high)", s)
	}
}

// Message is a single transcript message. Immutable once parsed.
type Message struct {
	Role      MessageRole
	Content   string
	Timestamp *time.Time
}

// Session is one conversation with an AI coding assistant.
type Session struct {
	ID          string
	Source      string
	ProjectPath string
	StartTime   *time.Time
	EndTime     *time.Time
	Messages    []Message
}

// UserMessages returns only the user-authored messages.
func (s *Session) UserMessages() []Message {
	var out []Message
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			out = append(out, m)
		}
	}
	return out
}

// CorrectionPattern is a recurring topic the user corrected the assistant on.
type CorrectionPattern struct {
	Category    string
	Description string
	Occurrences int
	Confidence  Confidence
	Evidence    []string
	Sessions    []string
}

// StylePreference is a recurring request to change response style.
type StylePreference struct {
	Preference  string
	Description string
	Occurrences int
	Confidence  Confidence
	Evidence    []string
	Sessions    []string
}

// ImplicitPattern is a behavior inferred without explicit correction
// language, such as repeated references to a policy ID.
type ImplicitPattern struct {
	Type        string
	Description string
	Frequency   float64 // occurrences divided by session count
	Occurrences int
	Confidence  Confidence
	Evidence    []string
	Sessions    []string
}

// SuggestionSeverity is the severity assigned to a suggested rule,
// derived from pattern confidence.
type SuggestionSeverity string

const (
	SuggestionCritical    SuggestionSeverity = "critical"
	SuggestionRequired    SuggestionSeverity = "required"
	SuggestionRecommended SuggestionSeverity = "recommended"
	SuggestionInfo        SuggestionSeverity = "info"
)

// severityRank orders suggestion severities for sorting.
func severityRank(s SuggestionSeverity) int {
	switch s {
	case SuggestionCritical:
		return 0
	case SuggestionRequired:
		return 1
	case SuggestionRecommended:
		return 2
	case SuggestionInfo:
		return 3
	default:
		return 4
	}
}

// PolicySuggestion is a candidate rule derived from a detected pattern.
// Suggestions are surfaced for manual charter edits, never auto-applied.
type PolicySuggestion struct {
	SuggestedID string
	Severity    SuggestionSeverity
	Description string
	Rationale   string
	Example     string
	Source      any
}

// Report is the full output of one imprint analysis run.
type Report struct {
	SessionsAnalyzed int
	DateRangeStart   *time.Time
	DateRangeEnd     *time.Time
	Corrections      []CorrectionPattern
	StylePreferences []StylePreference
	ImplicitPatterns []ImplicitPattern
	Suggestions      []PolicySuggestion
}

// HasPatterns reports whether any pattern class detected anything.
func (r *Report) HasPatterns() bool {
	return len(r.Corrections) > 0 || len(r.StylePreferences) > 0 || len(r.ImplicitPatterns) > 0
}
