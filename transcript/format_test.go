package transcript

import (
	"strings"
	"testing"
)

func TestFormatTextOnly(t *testing.T) {
	got := Format([]Entry{{Kind: EntryText, Content: "hello"}})
	if got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
}

func TestFormatToolLines(t *testing.T) {
	entries := []Entry{
		{Kind: EntryTool, Name: "Bash", Input: map[string]interface{}{"command": "ls -la"}, Done: true},
		{Kind: EntryTool, Name: "Read", Input: map[string]interface{}{"file_path": "/tmp/x.go"}},
	}

	got := Format(entries)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "1. ✓ 💻 **Bash**: `ls -la`" {
		t.Errorf("unexpected done line: %q", lines[0])
	}
	if lines[1] != "2. ⏳ 📄 **Read**: `/tmp/x.go`" {
		t.Errorf("unexpected running line: %q", lines[1])
	}
}

func TestFormatSeparatorBetweenToolsAndText(t *testing.T) {
	entries := []Entry{
		{Kind: EntryTool, Name: "Bash", Done: true},
		{Kind: EntryText, Content: "result text"},
	}

	got := Format(entries)
	want := "1. ✓ 💻 **Bash**\n\n---\n\nresult text"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatSeparatorOnlyOncePerRun(t *testing.T) {
	entries := []Entry{
		{Kind: EntryTool, Name: "Bash", Done: true},
		{Kind: EntryText, Content: "first"},
		{Kind: EntryTool, Name: "Read", Done: true},
		{Kind: EntryText, Content: "second"},
	}

	got := Format(entries)
	if n := strings.Count(got, "---"); n != 2 {
		t.Errorf("expected a separator per tool-to-text transition, got %d in %q", n, got)
	}
}

func TestFormatUnknownToolGlyph(t *testing.T) {
	got := Format([]Entry{{Kind: EntryTool, Name: "WebSearch"}})
	if !strings.Contains(got, "🔧") {
		t.Errorf("unknown tools use the wrench glyph: %q", got)
	}
}

func TestArgPreviewBashTruncates(t *testing.T) {
	long := strings.Repeat("x", 100)
	got := argPreview("Bash", map[string]interface{}{"command": long})
	if len([]rune(got)) != argPreviewWidth {
		t.Errorf("expected %d runes, got %d", argPreviewWidth, len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis, got %q", got)
	}
}

func TestArgPreviewFileKeys(t *testing.T) {
	cases := []struct {
		name  string
		input map[string]interface{}
		want  string
	}{
		{"Read", map[string]interface{}{"path": "/a"}, "/a"},
		{"Write", map[string]interface{}{"file_path": "/b"}, "/b"},
		{"Edit", map[string]interface{}{"file": "/c"}, "/c"},
		{"Read", map[string]interface{}{"paths": []interface{}{"/a", "/b", "/c"}}, "/a (+2)"},
		{"Glob", map[string]interface{}{"pattern": "**/*.go"}, "**/*.go"},
		{"Bash", nil, ""},
	}

	for _, tc := range cases {
		if got := argPreview(tc.name, tc.input); got != tc.want {
			t.Errorf("argPreview(%s, %v) = %q, want %q", tc.name, tc.input, got, tc.want)
		}
	}
}
