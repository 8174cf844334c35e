package imprint

// LoadSessions discovers and parses every transcript under root with the
// given parsers. Files that fail to parse contribute no sessions.
func LoadSessions(root string, parsers ...Parser) []Session {
	var sessions []Session
	for _, parser := range parsers {
		for _, path := range parser.Discover(root) {
			sessions = append(sessions, parser.Parse(path)...)
		}
	}
	return sessions
}

// Analyze runs the full detection and suggestion pipeline over sessions
// and assembles the report.
func Analyze(sessions []Session, detectorCfg DetectorConfig, suggesterCfg SuggesterConfig) *Report {
	detector := NewDetector(detectorCfg)
	corrections, styles, implicit := detector.DetectAll(sessions)

	suggester := NewSuggester(suggesterCfg)
	suggestions := suggester.GenerateSuggestions(corrections, styles, implicit)

	report := &Report{
		SessionsAnalyzed: len(sessions),
		Corrections:      corrections,
		StylePreferences: styles,
		ImplicitPatterns: implicit,
		Suggestions:      suggestions,
	}
	for i := range sessions {
		report.DateRangeStart, report.DateRangeEnd = extendRange(
			report.DateRangeStart, report.DateRangeEnd, sessions[i].StartTime)
		report.DateRangeStart, report.DateRangeEnd = extendRange(
			report.DateRangeStart, report.DateRangeEnd, sessions[i].EndTime)
	}
	return report
}
