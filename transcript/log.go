// Package transcript reconstructs a coherent transcript from normalized
// agent events and projects it into size-bounded, editable message chunks.
package transcript

import (
	"log/slog"
)

// EntryKind identifies the kind of a log entry.
type EntryKind int

const (
	// EntryText is a run of assistant text.
	EntryText EntryKind = iota
	// EntryTool is a tool invocation.
	EntryTool
)

// Entry is one element of the event log. Entries are append-only: after
// creation only a tool entry's Done flag and a trailing text entry's Content
// may change.
type Entry struct {
	Input         map[string]interface{}
	Content       string
	Name          string
	CorrelationID string
	Kind          EntryKind
	Done          bool
}

// Log is the strictly-ordered event log for one turn. It is owned by the
// turn's driver and is not safe for concurrent use; the renderer's mutex
// serializes reads against appends.
type Log struct {
	log     *slog.Logger
	entries []Entry
}

// NewLog creates an empty log. A nil logger disables logging.
func NewLog(log *slog.Logger) *Log {
	if log == nil {
		log = nopLogger
	}
	return &Log{log: log}
}

// AppendText appends a text delta, merging it into the trailing entry when
// that entry is also text.
func (l *Log) AppendText(delta string) {
	if delta == "" {
		return
	}
	if n := len(l.entries); n > 0 && l.entries[n-1].Kind == EntryText {
		l.entries[n-1].Content += delta
		return
	}
	l.entries = append(l.entries, Entry{Kind: EntryText, Content: delta})
}

// AppendToolCall appends a running tool entry. Its position reflects when
// the tool started, not when it finishes.
func (l *Log) AppendToolCall(correlationID, name string, input map[string]interface{}) {
	l.entries = append(l.entries, Entry{
		Kind:          EntryTool,
		CorrelationID: correlationID,
		Name:          name,
		Input:         input,
	})
}

// Resolve flips the most recent tool entry with the given correlation id to
// done. A miss is logged and dropped; tool results for unknown invocations
// are not fatal.
func (l *Log) Resolve(correlationID string) bool {
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := &l.entries[i]
		if e.Kind == EntryTool && e.CorrelationID == correlationID {
			e.Done = true
			return true
		}
	}
	l.log.Warn("tool result with unknown correlation id", "id", correlationID)
	return false
}

// ResolveAll flips every still-running tool entry to done. The turn-result
// signal implies completion of tools whose individual finish signals were
// lost. Returns the number of entries flipped.
func (l *Log) ResolveAll() int {
	flipped := 0
	for i := range l.entries {
		e := &l.entries[i]
		if e.Kind == EntryTool && !e.Done {
			e.Done = true
			flipped++
		}
	}
	return flipped
}

// Entries returns the log's entries in first-append order. The slice is
// owned by the log; callers must not mutate it.
func (l *Log) Entries() []Entry {
	return l.entries
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}
