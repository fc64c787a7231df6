// Package ndjson reads newline-delimited JSON streams line by line.
package ndjson

import (
	"bufio"
	"bytes"
	"io"
)

// maxLineSize bounds a single JSON line. Agent messages can carry whole file
// contents in tool inputs, so the cap is generous.
const maxLineSize = 10 * 1024 * 1024

// Reader yields one JSON line at a time, skipping blank lines.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r in a line reader.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// ReadLine returns the next non-empty line. It returns io.EOF when the
// underlying stream ends.
func (r *Reader) ReadLine() ([]byte, error) {
	for r.scanner.Scan() {
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		// Copy out: Scan reuses its buffer on the next call.
		out := make([]byte, len(line))
		copy(out, line)
		return out, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
