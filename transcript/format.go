package transcript

import (
	"fmt"
	"strings"
)

// argPreviewWidth bounds the argument preview on a tool summary line.
const argPreviewWidth = 40

// toolGlyphs maps tool names to their type glyph.
var toolGlyphs = map[string]string{
	"Bash":      "💻",
	"Read":      "📄",
	"ReadFile":  "📄",
	"Write":     "✏️",
	"WriteFile": "✏️",
	"Edit":      "📝",
	"EditFile":  "📝",
	"Glob":      "🔍",
	"LS":        "📂",
	"ls":        "📂",
}

// Format serializes log entries into display text: one summary line per
// tool entry, raw content for text entries, and a single separator the
// first time text follows one or more tools.
func Format(entries []Entry) string {
	var parts []string
	toolCount := 0
	separated := false

	for _, e := range entries {
		switch e.Kind {
		case EntryTool:
			toolCount++
			parts = append(parts, formatToolLine(toolCount, e))
			separated = false
		case EntryText:
			if toolCount > 0 && !separated {
				parts = append(parts, "\n---\n")
				separated = true
			}
			parts = append(parts, e.Content)
		}
	}

	return strings.Join(parts, "\n")
}

// formatToolLine builds the one-line summary for a tool entry:
// index, status glyph, type glyph, name, optional argument preview.
func formatToolLine(index int, e Entry) string {
	status := "⏳"
	if e.Done {
		status = "✓"
	}

	glyph, ok := toolGlyphs[e.Name]
	if !ok {
		glyph = "🔧"
	}

	details := ""
	if preview := argPreview(e.Name, e.Input); preview != "" {
		details = fmt.Sprintf(": `%s`", preview)
	}

	return fmt.Sprintf("%d. %s %s **%s**%s", index, status, glyph, e.Name, details)
}

// argPreview extracts the most useful argument for a tool summary line.
func argPreview(name string, input map[string]interface{}) string {
	if input == nil {
		return ""
	}

	switch name {
	case "Bash":
		cmd, _ := input["command"].(string)
		return truncate(strings.TrimSpace(cmd), argPreviewWidth)

	case "Read", "ReadFile", "Write", "WriteFile", "Edit", "EditFile":
		for _, key := range []string{"path", "file_path", "file"} {
			if path, _ := input[key].(string); path != "" {
				return path
			}
		}
		// Multi-file tools pass a list; show the first with a count.
		if paths, _ := input["paths"].([]interface{}); len(paths) > 0 {
			first, _ := paths[0].(string)
			if len(paths) > 1 {
				return fmt.Sprintf("%s (+%d)", first, len(paths)-1)
			}
			return first
		}

	case "Glob":
		for _, key := range []string{"pattern", "include"} {
			if pattern, _ := input[key].(string); pattern != "" {
				return pattern
			}
		}
	}

	return ""
}

// truncate shortens s to at most width runes, ellipsized.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
