package imprint

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Sentence-opening phrases signaling the user is correcting the assistant.
var correctionIndicators = []string{
	`(?i)^no[,.]?\s`,
	`(?i)^actually[,.]?\s`,
	`(?i)^that'?s?\s+not\s+(right|correct|what)`,
	`(?i)^i\s+said\s+to`,
	`(?i)^don'?t\s+(?:do|use)`,
	`(?i)^use\s+\w+\s+(?:not|instead)`,
	`(?i)^not\s+\w+[,]\s*(?:use|try)`,
	`(?i)^please\s+(?:don'?t|stop)`,
	`(?i)^i\s+(?:wanted|meant|asked)`,
	`(?i)^wrong[,.]`,
	`(?i)^nope[,.]`,
}

// Meta-comments about response style, one bank per named preference.
// A message counts toward at most one category; banks are evaluated in
// this declaration order, so the earlier bank wins on an ambiguous match.
var stylePatterns = []struct {
	name     string
	patterns []string
}{
	{"concise", []string{
		`(?i)^be\s+(?:more\s+)?concise`,
		`(?i)^too\s+(?:verbose|long|wordy)`,
		`(?i)shorter\s+(?:response|answer|explanation)`,
		`(?i)skip\s+(?:the\s+)?explanation`,
		`(?i)^just\s+(?:show|give)\s+(?:me\s+)?(?:the\s+)?code`,
		`(?i)keep\s+it\s+(?:short|brief)`,
	}},
	{"verbose", []string{
		`(?i)^(?:i\s+need\s+)?more\s+detail`,
		`(?i)^explain\s+(?:this\s+)?(?:more|further|better)`,
		`(?i)^too\s+brief`,
		`(?i)^can\s+you\s+elaborate`,
		`(?i)^please\s+explain`,
		`(?i)^i\s+don'?t\s+understand`,
	}},
	{"code_first", []string{
		`(?i)show\s+(?:me\s+)?(?:the\s+)?code\s+first`,
		`(?i)code\s+before\s+explanation`,
		`(?i)^start\s+with\s+(?:the\s+)?code`,
	}},
}

// System-injected content that must not be scanned as user input.
var systemNoisePatterns = []string{
	`^<supervisor>`,
	`^<user>`,
	`^<agent`,
	`^\s*#\s*(?:AGENTS|Policy|EgoKit)`,
	`^\s*<!--`,
}

// Keyword buckets for categorizing corrections; unmatched text falls
// through to "general".
var correctionCategories = []struct {
	name     string
	keywords []string
}{
	{"type_hints", []string{"type", "typing", "hint", "annotation", "list[", "dict["}},
	{"imports", []string{"import", "from ", "module"}},
	{"docstrings", []string{"docstring", "documentation", "google style", "numpy style"}},
	{"naming", []string{"name", "naming", "snake_case", "camelcase", "variable"}},
	{"testing", []string{"test", "testing", "pytest", "unittest"}},
	{"formatting", []string{"format", "indent", "spacing", "line length"}},
}

var policyIDPattern = regexp.MustCompile(`\b([A-Z]{2,6}-\d{3})\b`)

// maxEvidenceExamples caps stored evidence snippets per pattern.
const maxEvidenceExamples = 5

// evidenceLength caps each stored snippet.
const evidenceLength = 200

// DetectorConfig sets the occurrence thresholds for confidence levels.
type DetectorConfig struct {
	MinOccurrencesHigh   int // threshold for high confidence
	MinOccurrencesMedium int // threshold for medium confidence
	MinOccurrencesLow    int // minimum for any detection
}

// DefaultDetectorConfig returns the standard thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MinOccurrencesHigh:   5,
		MinOccurrencesMedium: 3,
		MinOccurrencesLow:    2,
	}
}

// Detector scans normalized sessions for correction patterns, style
// preferences, and implicit policy references. The three passes are
// independent and order-insensitive; all of them scan only user messages
// with system noise filtered out.
type Detector struct {
	config      DetectorConfig
	corrections []*regexp.Regexp
	styles      []styleBank
	noise       []*regexp.Regexp
}

// styleBank is one compiled style-preference bank.
type styleBank struct {
	name     string
	patterns []*regexp.Regexp
}

// NewDetector compiles the regex banks once for the detector's lifetime.
func NewDetector(config DetectorConfig) *Detector {
	d := &Detector{config: config}
	for _, p := range correctionIndicators {
		d.corrections = append(d.corrections, regexp.MustCompile(p))
	}
	for _, bank := range stylePatterns {
		compiled := styleBank{name: bank.name}
		for _, p := range bank.patterns {
			compiled.patterns = append(compiled.patterns, regexp.MustCompile(p))
		}
		d.styles = append(d.styles, compiled)
	}
	for _, p := range systemNoisePatterns {
		d.noise = append(d.noise, regexp.MustCompile(p))
	}
	return d
}

// userContent is one scannable user message with its session of origin.
type userContent struct {
	text      string
	sessionID string
}

func (d *Detector) isSystemNoise(text string) bool {
	for _, p := range d.noise {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func (d *Detector) userContents(sessions []Session) []userContent {
	var out []userContent
	for i := range sessions {
		for _, msg := range sessions[i].UserMessages() {
			if !d.isSystemNoise(msg.Content) {
				out = append(out, userContent{text: msg.Content, sessionID: sessions[i].ID})
			}
		}
	}
	return out
}

func (d *Detector) confidence(count int) Confidence {
	switch {
	case count >= d.config.MinOccurrencesHigh:
		return ConfidenceHigh
	case count >= d.config.MinOccurrencesMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// DetectCorrections finds recurring correction topics across sessions.
func (d *Detector) DetectCorrections(sessions []Session) []CorrectionPattern {
	grouped := map[string][]userContent{}
	var order []string

	for _, uc := range d.userContents(sessions) {
		if !d.isCorrection(uc.text) {
			continue
		}
		category := categorizeCorrection(uc.text)
		if _, seen := grouped[category]; !seen {
			order = append(order, category)
		}
		grouped[category] = append(grouped[category], userContent{
			text:      evidenceSnippet(uc.text),
			sessionID: uc.sessionID,
		})
	}

	var patterns []CorrectionPattern
	for _, category := range order {
		items := grouped[category]
		count := len(items)
		if count < d.config.MinOccurrencesLow {
			continue
		}
		patterns = append(patterns, CorrectionPattern{
			Category:    category,
			Description: "Corrections about " + strings.ReplaceAll(category, "_", " "),
			Occurrences: count,
			Confidence:  d.confidence(count),
			Evidence:    evidenceList(items),
			Sessions:    distinctSessions(items),
		})
	}

	sortByOccurrences(patterns, func(p CorrectionPattern) int { return p.Occurrences })
	return patterns
}

func (d *Detector) isCorrection(text string) bool {
	for _, p := range d.corrections {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func categorizeCorrection(text string) string {
	lower := strings.ToLower(text)
	for _, bucket := range correctionCategories {
		for _, keyword := range bucket.keywords {
			if strings.Contains(lower, keyword) {
				return bucket.name
			}
		}
	}
	return "general"
}

// DetectStylePreferences finds recurring style requests. A message counts
// toward at most one category; the first matching bank wins.
func (d *Detector) DetectStylePreferences(sessions []Session) []StylePreference {
	grouped := map[string][]userContent{}
	var order []string

	for _, uc := range d.userContents(sessions) {
	banks:
		for _, bank := range d.styles {
			for _, p := range bank.patterns {
				if p.MatchString(uc.text) {
					if _, seen := grouped[bank.name]; !seen {
						order = append(order, bank.name)
					}
					grouped[bank.name] = append(grouped[bank.name], userContent{
						text:      evidenceSnippet(uc.text),
						sessionID: uc.sessionID,
					})
					break banks
				}
			}
		}
	}

	var prefs []StylePreference
	for _, category := range order {
		items := grouped[category]
		count := len(items)
		if count < d.config.MinOccurrencesLow {
			continue
		}
		prefs = append(prefs, StylePreference{
			Preference:  category,
			Description: styleDescription(category),
			Occurrences: count,
			Confidence:  d.confidence(count),
			Evidence:    evidenceList(items),
			Sessions:    distinctSessions(items),
		})
	}

	sortByOccurrences(prefs, func(p StylePreference) int { return p.Occurrences })
	return prefs
}

func styleDescription(category string) string {
	switch category {
	case "concise":
		return "Keep responses brief and focused on essential information"
	case "verbose":
		return "Provide detailed explanations with context and rationale"
	case "code_first":
		return "Show code examples before explanations"
	default:
		return "Preference for " + strings.ReplaceAll(category, "_", " ") + " style"
	}
}

// DetectImplicitPatterns finds policy-ID-shaped tokens mentioned repeatedly
// in user messages.
func (d *Detector) DetectImplicitPatterns(sessions []Session) []ImplicitPattern {
	mentions := map[string][]userContent{}
	var order []string

	for _, uc := range d.userContents(sessions) {
		for _, match := range policyIDPattern.FindAllStringSubmatch(uc.text, -1) {
			policyID := match[1]
			if _, seen := mentions[policyID]; !seen {
				order = append(order, policyID)
			}
			mentions[policyID] = append(mentions[policyID], userContent{
				text:      evidenceSnippet(uc.text),
				sessionID: uc.sessionID,
			})
		}
	}

	var patterns []ImplicitPattern
	for _, policyID := range order {
		items := mentions[policyID]
		count := len(items)
		if count < d.config.MinOccurrencesLow {
			continue
		}
		frequency := 0.0
		if len(sessions) > 0 {
			frequency = float64(count) / float64(len(sessions))
		}
		patterns = append(patterns, ImplicitPattern{
			Type:        "policy_reference",
			Description: "User references policy " + policyID + " - consider reinforcing",
			Frequency:   frequency,
			Occurrences: count,
			Confidence:  d.confidence(count),
			Evidence:    evidenceList(items),
			Sessions:    distinctSessions(items),
		})
	}

	sortByOccurrences(patterns, func(p ImplicitPattern) int { return p.Occurrences })
	return patterns
}

// DetectAll runs the three detection passes over the same sessions.
func (d *Detector) DetectAll(sessions []Session) ([]CorrectionPattern, []StylePreference, []ImplicitPattern) {
	return d.DetectCorrections(sessions),
		d.DetectStylePreferences(sessions),
		d.DetectImplicitPatterns(sessions)
}

// truncateRunes shortens text to at most n characters, never splitting a
// multi-byte rune.
func truncateRunes(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n])
}

func evidenceSnippet(text string) string {
	return strings.TrimSpace(truncateRunes(text, evidenceLength))
}

func evidenceList(items []userContent) []string {
	limit := len(items)
	if limit > maxEvidenceExamples {
		limit = maxEvidenceExamples
	}
	out := make([]string, 0, limit)
	for _, item := range items[:limit] {
		out = append(out, item.text)
	}
	return out
}

func distinctSessions(items []userContent) []string {
	seen := map[string]bool{}
	var out []string
	for _, item := range items {
		if !seen[item.sessionID] {
			seen[item.sessionID] = true
			out = append(out, item.sessionID)
		}
	}
	sort.Strings(out)
	return out
}

// sortByOccurrences sorts descending by occurrence count, stable so that
// first-detection order breaks ties deterministically.
func sortByOccurrences[T any](items []T, count func(T) int) {
	sort.SliceStable(items, func(i, j int) bool {
		return count(items[i]) > count(items[j])
	})
}
