package agent

// EventType discriminates between normalized stream event kinds.
type EventType int

const (
	// EventTypeText fires for unseen assistant text deltas.
	EventTypeText EventType = iota
	// EventTypeToolCall fires when the agent starts a tool invocation.
	EventTypeToolCall
	// EventTypeToolResult fires when a tool invocation reports back.
	EventTypeToolResult
	// EventTypeResult fires once when the turn completes.
	EventTypeResult
	// EventTypeError fires once when the turn fails.
	EventTypeError
)

// Event is the interface for all normalized stream events.
type Event interface {
	Type() EventType
}

// TextEvent carries an unseen slice of assistant text. Delta never overlaps
// previously emitted text for the same session.
type TextEvent struct {
	Delta string
}

// Type returns the event type.
func (e TextEvent) Type() EventType { return EventTypeText }

// ToolCallEvent fires when the agent invokes a tool.
type ToolCallEvent struct {
	Input map[string]interface{}
	ID    string
	Name  string
}

// Type returns the event type.
func (e ToolCallEvent) Type() EventType { return EventTypeToolCall }

// ToolResultEvent reports completion of a tool invocation. ToolUseID matches
// the ID of an earlier ToolCallEvent.
type ToolResultEvent struct {
	ToolUseID string
	IsError   bool
}

// Type returns the event type.
func (e ToolResultEvent) Type() EventType { return EventTypeToolResult }

// ResultEvent terminates a successful turn.
type ResultEvent struct {
	SessionID  string
	Result     string
	DurationMs int64
	CostUSD    float64
}

// Type returns the event type.
func (e ResultEvent) Type() EventType { return EventTypeResult }

// ErrorEvent terminates a failed turn. Exactly one of ResultEvent or
// ErrorEvent ends every stream.
type ErrorEvent struct {
	Err     error
	Context string
}

// Type returns the event type.
func (e ErrorEvent) Type() EventType { return EventTypeError }
