package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"egokit/internal/splice"
)

// Artifact is one generated file destined for a target repository.
// Managed artifacts are spliced into any existing document; the rest are
// written whole.
type Artifact struct {
	Path    string
	Content string
	Managed bool
}

// Artifacts renders the complete artifact set for a target repository.
func (r *Renderer) Artifacts() ([]Artifact, error) {
	settingsJSON, err := r.SettingsJSON()
	if err != nil {
		return nil, fmt.Errorf("render settings: %w", err)
	}

	artifacts := []Artifact{
		{Path: "AGENTS.md", Content: r.PolicyDocument(), Managed: true},
		{Path: filepath.Join(".agent", "settings.json"), Content: settingsJSON},
		{Path: filepath.Join(".agent", "system-prompt.txt"), Content: r.SystemPrompt()},
		{Path: "EGO.md", Content: r.EgoCard()},
	}

	commands := r.Commands()
	for _, name := range sortedCommandNames(commands) {
		artifacts = append(artifacts, Artifact{
			Path:    filepath.Join(".agent", "commands", name+".md"),
			Content: commands[name],
		})
	}

	return artifacts, nil
}

// Writer places artifacts into a target repository. Each artifact is
// written independently: a failure partway through leaves earlier writes
// in place and reports what was written.
type Writer struct {
	root string
}

// NewWriter creates a writer rooted at the target repository.
func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// Write places every artifact under the target root. Managed artifacts are
// spliced into existing files so human-owned content survives. Returns the
// relative paths written, in order, alongside the first error encountered.
func (w *Writer) Write(artifacts []Artifact) ([]string, error) {
	var written []string

	for _, artifact := range artifacts {
		target := filepath.Join(w.root, artifact.Path)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("create %s: %w", filepath.Dir(artifact.Path), err)
		}

		content := artifact.Content
		if artifact.Managed {
			content = w.spliceInto(target, content)
		}

		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", artifact.Path, err)
		}
		written = append(written, artifact.Path)
	}

	return written, nil
}

// spliceInto merges content into the managed section of an existing file,
// or produces a fresh document when the file does not exist.
func (w *Writer) spliceInto(target, content string) string {
	data, err := os.ReadFile(target)
	if err != nil {
		return splice.Splice(nil, content)
	}
	existing := string(data)
	return splice.Splice(&existing, content)
}

func sortedCommandNames(commands map[string]string) []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
