package ndjson

import (
	"io"
	"strings"
	"testing"
)

func TestReadLineSkipsBlanks(t *testing.T) {
	r := NewReader(strings.NewReader("{\"a\":1}\n\n   \n{\"b\":2}\n"))

	line, err := r.ReadLine()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(line) != `{"a":1}` {
		t.Errorf("unexpected first line: %q", line)
	}

	line, err = r.ReadLine()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(line) != `{"b":2}` {
		t.Errorf("unexpected second line: %q", line)
	}

	if _, err := r.ReadLine(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReadLineTrimsWhitespace(t *testing.T) {
	r := NewReader(strings.NewReader("  {\"a\":1}  \r\n"))
	line, err := r.ReadLine()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(line) != `{"a":1}` {
		t.Errorf("expected trimmed line, got %q", line)
	}
}

func TestReadLineCopiesOut(t *testing.T) {
	r := NewReader(strings.NewReader("first\nsecond\n"))

	first, _ := r.ReadLine()
	r.ReadLine()

	// The first line must not be clobbered by later scans.
	if string(first) != "first" {
		t.Errorf("line was overwritten: %q", first)
	}
}

func TestReadLineLongLine(t *testing.T) {
	payload := strings.Repeat("x", 256*1024)
	r := NewReader(strings.NewReader(payload + "\n"))

	line, err := r.ReadLine()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(line) != len(payload) {
		t.Errorf("expected %d bytes, got %d", len(payload), len(line))
	}
}
