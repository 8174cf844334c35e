package splice

import (
	"strings"
	"testing"
)

// TestFindManagedSection_WithMarkers verifies the span covers both marker
// lines inclusively.
func TestFindManagedSection_WithMarkers(t *testing.T) {
	text := "before\n" + BeginMarker + "\nmanaged\n" + EndMarker + "\nafter\n"

	span, ok := FindManagedSection(text)
	if !ok {
		t.Fatal("FindManagedSection() ok = false, want true")
	}
	got := text[span.Start:span.End]
	if !strings.HasPrefix(got, BeginMarker) {
		t.Errorf("Span does not start with begin marker: %q", got)
	}
	if !strings.HasSuffix(got, EndMarker) {
		t.Errorf("Span does not end with end marker: %q", got)
	}
	if !strings.Contains(got, "managed") {
		t.Errorf("Span is missing managed content: %q", got)
	}
}

// TestFindManagedSection_MissingMarkers covers absent, partial, and
// reversed markers. All of them must report not-found.
func TestFindManagedSection_MissingMarkers(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"NoMarkers", "# Plain document\n\nNothing managed here.\n"},
		{"OnlyBegin", BeginMarker + "\ncontent without end\n"},
		{"OnlyEnd", "content without begin\n" + EndMarker + "\n"},
		{"ReversedOrder", EndMarker + "\ncontent\n" + BeginMarker + "\n"},
		{"Empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := FindManagedSection(tc.text); ok {
				t.Errorf("FindManagedSection(%q) ok = true, want false", tc.text)
			}
		})
	}
}

// TestSplice_NewDocument verifies that with no existing document the output
// is a full template with the section embedded between placeholders.
func TestSplice_NewDocument(t *testing.T) {
	out := Splice(nil, "policy content")

	if !strings.Contains(out, BeginMarker) || !strings.Contains(out, EndMarker) {
		t.Fatalf("New document missing markers:\n%s", out)
	}
	if !strings.Contains(out, "policy content") {
		t.Errorf("New document missing section content:\n%s", out)
	}
	if !strings.Contains(out, "# Project Guidelines") {
		t.Errorf("New document missing template heading:\n%s", out)
	}
}

// TestSplice_ReplacesExistingSection verifies that only the managed region
// changes and all surrounding human content survives byte for byte.
func TestSplice_ReplacesExistingSection(t *testing.T) {
	existing := "# My Project\n\nHuman notes up top.\n\n" +
		BeginMarker + "\nOLD CONTENT\n" + EndMarker + "\n\nHuman notes below.\n"

	out := Splice(&existing, "NEW CONTENT")

	if strings.Contains(out, "OLD CONTENT") {
		t.Errorf("Old managed content survived the splice:\n%s", out)
	}
	if !strings.Contains(out, "NEW CONTENT") {
		t.Errorf("New managed content missing:\n%s", out)
	}
	if !strings.Contains(out, "Human notes up top.") || !strings.Contains(out, "Human notes below.") {
		t.Errorf("Human content outside the section was disturbed:\n%s", out)
	}
	if strings.Count(out, BeginMarker) != 1 || strings.Count(out, EndMarker) != 1 {
		t.Errorf("Marker count changed after splice:\n%s", out)
	}
}

// TestSplice_AppendsWhenNoSection verifies the section lands at the end of
// a document that has no managed region yet.
func TestSplice_AppendsWhenNoSection(t *testing.T) {
	existing := "# My Project\n\nExisting human content.\n"

	out := Splice(&existing, "managed body")

	if !strings.HasPrefix(out, existing) {
		t.Errorf("Existing content not preserved at the front:\n%s", out)
	}
	if !strings.Contains(out, BeginMarker+"\nmanaged body\n"+EndMarker) {
		t.Errorf("Appended section malformed:\n%s", out)
	}
}

// TestSplice_Idempotent verifies that applying the same section twice is a
// no-op after the first application.
func TestSplice_Idempotent(t *testing.T) {
	existing := "# Doc\n\nnotes\n"

	first := Splice(&existing, "section body")
	second := Splice(&first, "section body")

	if first != second {
		t.Errorf("Second splice changed the document.\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

// TestSplice_PreWrappedSection verifies a section already carrying markers
// is not double-wrapped.
func TestSplice_PreWrappedSection(t *testing.T) {
	existing := "intro\n" + BeginMarker + "\nold\n" + EndMarker + "\n"
	wrapped := WrapSection("replacement")

	out := Splice(&existing, wrapped)

	if strings.Count(out, BeginMarker) != 1 || strings.Count(out, EndMarker) != 1 {
		t.Errorf("Pre-wrapped section was double-wrapped:\n%s", out)
	}
	if !strings.Contains(out, "replacement") {
		t.Errorf("Replacement content missing:\n%s", out)
	}
}

// TestSplice_EmptyExistingDocument verifies an empty (but present) document
// receives just the section.
func TestSplice_EmptyExistingDocument(t *testing.T) {
	existing := ""

	out := Splice(&existing, "body")

	if !strings.HasPrefix(out, BeginMarker) {
		t.Errorf("Empty document should start with the section:\n%s", out)
	}
	if strings.Contains(out, "# Project Guidelines") {
		t.Errorf("Empty document must not get the new-file template:\n%s", out)
	}
}
