package imprint

import (
	"bufio"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Timestamps above this are epoch milliseconds rather than seconds.
const millisecondThreshold = 1e12

// Parser turns raw transcript files into normalized sessions.
type Parser interface {
	// Parse reads sessions from one file. Malformed files yield zero
	// sessions rather than errors; transcript mining is best-effort.
	Parse(path string) []Session
	// Discover lists parseable files under root.
	Discover(root string) []string
}

// LineLogParser parses line-delimited JSON session logs: one JSON object
// per line, each describing a message. Malformed lines are skipped.
type LineLogParser struct{}

// Discover lists .jsonl files under root, recursively.
func (LineLogParser) Discover(root string) []string {
	var paths []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.HasSuffix(path, ".jsonl") {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}

// Parse reads one JSONL log into a single session.
func (LineLogParser) Parse(path string) []Session {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var messages []Message
	var start, end *time.Time

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		msg, ok := parseLineEntry(entry)
		if !ok {
			continue
		}
		messages = append(messages, msg)
		start, end = extendRange(start, end, msg.Timestamp)
	}

	if len(messages) == 0 {
		return nil
	}
	return []Session{{
		ID:          sessionID(path),
		Source:      "jsonl",
		ProjectPath: filepath.Dir(path),
		StartTime:   start,
		EndTime:     end,
		Messages:    messages,
	}}
}

func parseLineEntry(entry map[string]any) (Message, bool) {
	entryType, _ := entry["type"].(string)
	role, _ := entry["role"].(string)

	var msgRole MessageRole
	switch {
	case entryType == "human" || role == "user":
		msgRole = RoleUser
	case entryType == "assistant" || role == "assistant":
		msgRole = RoleAssistant
	default:
		return Message{}, false
	}

	text := entryText(entry["message"])
	if text == "" {
		text = entryText(entry["content"])
	}

	return Message{
		Role:      msgRole,
		Content:   text,
		Timestamp: parseTimestamp(entry["timestamp"]),
	}, true
}

// entryText extracts message text from either a bare string or a nested
// object with a content field.
func entryText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if s, ok := t["content"].(string); ok {
			return s
		}
	}
	return ""
}

// ExportParser parses JSON conversation exports carrying a chatHistory
// array, either at the document root or nested under a conversation key.
// Each entry holds a user request and an assistant response.
type ExportParser struct{}

// Discover lists JSON files under root that look like chat exports.
func (p ExportParser) Discover(root string) []string {
	info, err := os.Stat(root)
	if err != nil {
		return nil
	}
	if !info.IsDir() {
		if p.isExport(root) {
			return []string{root}
		}
		return nil
	}

	var paths []string
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		full := filepath.Join(root, entry.Name())
		if p.isExport(full) {
			paths = append(paths, full)
		}
	}
	return paths
}

func (ExportParser) isExport(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	return len(chatHistory(doc)) > 0
}

// Parse reads one export file into a single session.
func (ExportParser) Parse(path string) []Session {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}

	var messages []Message
	var start, end *time.Time

	for _, raw := range chatHistory(doc) {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		for _, msg := range parseExportEntry(entry) {
			messages = append(messages, msg)
			start, end = extendRange(start, end, msg.Timestamp)
		}
	}

	if len(messages) == 0 {
		return nil
	}
	return []Session{{
		ID:          sessionID(path),
		Source:      "export",
		ProjectPath: filepath.Dir(path),
		StartTime:   start,
		EndTime:     end,
		Messages:    messages,
	}}
}

// chatHistory extracts the chat-history array from either the document
// root or a nested conversation object.
func chatHistory(doc map[string]any) []any {
	if history, ok := doc["chatHistory"].([]any); ok {
		return history
	}
	if conv, ok := doc["conversation"].(map[string]any); ok {
		if history, ok := conv["chatHistory"].([]any); ok {
			return history
		}
	}
	return nil
}

func parseExportEntry(entry map[string]any) []Message {
	ts := parseTimestamp(entry["timestamp"])
	var messages []Message

	if request, _ := entry["request_message"].(string); request != "" {
		messages = append(messages, Message{Role: RoleUser, Content: request, Timestamp: ts})
	}

	response, _ := entry["response_text"].(string)
	if response == "" {
		if nodes, ok := entry["structured_output_nodes"].([]any); ok {
			response = textFromNodes(nodes)
		}
	}
	if response != "" {
		messages = append(messages, Message{Role: RoleAssistant, Content: response, Timestamp: ts})
	}

	return messages
}

func textFromNodes(nodes []any) string {
	var texts []string
	for _, raw := range nodes {
		node, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		text, _ := node["text"].(string)
		if text == "" {
			text, _ = node["content"].(string)
		}
		if text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n")
}

// parseTimestamp accepts ISO-8601 strings and numeric epoch values.
// Numbers above the millisecond threshold are divided down to seconds.
func parseTimestamp(v any) *time.Time {
	switch ts := v.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil
		}
		utc := parsed.UTC()
		return &utc
	case float64:
		if ts > millisecondThreshold {
			ts = ts / 1000
		}
		sec := int64(ts)
		nsec := int64((ts - float64(sec)) * 1e9)
		t := time.Unix(sec, nsec).UTC()
		return &t
	}
	return nil
}

func extendRange(start, end, ts *time.Time) (*time.Time, *time.Time) {
	if ts == nil {
		return start, end
	}
	if start == nil || ts.Before(*start) {
		start = ts
	}
	if end == nil || ts.After(*end) {
		end = ts
	}
	return start, end
}

// sessionID derives a stable session ID from the file name, falling back
// to a random ID when the stem is unusable.
func sessionID(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if stem == "" || stem == "." {
		return uuid.NewString()
	}
	return stem
}
