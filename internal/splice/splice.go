// Package splice maintains a machine-owned region inside otherwise
// human-authored documents. Generated content is written between two
// sentinel marker lines; everything outside the markers is preserved
// byte for byte.
package splice

import "strings"

// Sentinel marker lines delimiting the managed region. The renderer and
// the splicer must agree on these exact strings for re-parse to work.
const (
	BeginMarker = "<!-- egokit:begin -->"
	EndMarker   = "<!-- egokit:end -->"
)

// Section is the half-open character span [Start, End) covering the begin
// marker line through the end marker line, inclusive of both markers.
type Section struct {
	Start int
	End   int
}

// FindManagedSection locates the managed region in text. It reports
// ok=false when either marker is missing or the begin marker does not
// occur strictly before the end marker.
func FindManagedSection(text string) (Section, bool) {
	begin := strings.Index(text, BeginMarker)
	if begin < 0 {
		return Section{}, false
	}
	end := strings.Index(text, EndMarker)
	if end < 0 || end <= begin {
		return Section{}, false
	}
	return Section{Start: begin, End: end + len(EndMarker)}, true
}

// WrapSection surrounds generated content with the sentinel markers.
func WrapSection(content string) string {
	return BeginMarker + "\n" + strings.TrimRight(content, "\n") + "\n" + EndMarker
}

// Splice writes section into a document. With no existing document it
// emits a fresh template embedding the section between human-editable
// placeholders. With a managed region present it replaces exactly the
// spanned bytes. Otherwise it appends the section, leaving the original
// content untouched. Re-applying the same section is a no-op after the
// first replacement.
func Splice(existing *string, section string) string {
	section = ensureMarkers(section)

	if existing == nil {
		return newDocument(section)
	}

	text := *existing
	if span, ok := FindManagedSection(text); ok {
		return text[:span.Start] + section + text[span.End:]
	}

	if text == "" {
		return section + "\n"
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text + "\n" + section + "\n"
}

// ensureMarkers wraps section with the sentinels unless it already
// carries them.
func ensureMarkers(section string) string {
	if strings.Contains(section, BeginMarker) && strings.Contains(section, EndMarker) {
		return strings.TrimRight(section, "\n")
	}
	return WrapSection(section)
}

// newDocument emits a full document template with the managed section
// embedded between human-owned placeholder regions.
func newDocument(section string) string {
	var b strings.Builder
	b.WriteString("# Project Guidelines\n")
	b.WriteString("\n")
	b.WriteString("<!-- Add project-specific notes above the managed section. -->\n")
	b.WriteString("\n")
	b.WriteString(section)
	b.WriteString("\n")
	b.WriteString("\n")
	b.WriteString("<!-- Add project-specific notes below the managed section. -->\n")
	return b.String()
}
