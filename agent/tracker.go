package agent

import (
	"log/slog"
	"sync"
)

// sessionState tracks how much of a session's cumulative output has already
// been surfaced. blocksSeen only ever grows; cumulativeText holds the full
// text of the block currently streaming at index blocksSeen.
type sessionState struct {
	cumulativeText string
	blocksSeen     int
}

// BlockTracker deduplicates replayed content across turns of resumable
// sessions. A resumed stream replays every block from the beginning; the
// tracker yields only the unseen remainder.
//
// Turns of the same session must be serialized by the caller. The tracker
// only guards its session map; per-session state is owned by the single
// in-flight turn.
type BlockTracker struct {
	states map[string]*sessionState
	log    *slog.Logger
	mu     sync.Mutex
}

// NewBlockTracker creates a tracker. A nil logger disables logging.
func NewBlockTracker(log *slog.Logger) *BlockTracker {
	if log == nil {
		log = nopLogger
	}
	return &BlockTracker{
		states: make(map[string]*sessionState),
		log:    log,
	}
}

// StartTurn returns a cursor over one turn's block stream for the given
// session key. State persists across turns of the same key.
func (t *BlockTracker) StartTurn(sessionKey string) *TurnCursor {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.states[sessionKey]
	if !ok {
		state = &sessionState{}
		t.states[sessionKey] = state
	}

	return &TurnCursor{state: state, log: t.log.With("session", sessionKey)}
}

// Reset discards tracked state for a session. Used when the caller starts a
// fresh agent session for the same conversation.
func (t *BlockTracker) Reset(sessionKey string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, sessionKey)
}

// TurnCursor walks the block stream of a single turn, skipping blocks that
// were already surfaced in earlier turns of the same session.
type TurnCursor struct {
	state *sessionState
	log   *slog.Logger
	index int
}

// ProcessBlock consumes the next raw content block and reports the event to
// surface, if any. Text blocks yield the delta beyond the text already
// emitted; tool_use blocks yield a ToolCallEvent and reset the text state.
// Blocks below the session's high-water mark are replays and yield nothing.
func (c *TurnCursor) ProcessBlock(b Block) (Event, bool) {
	switch b.Type {
	case BlockTypeText:
		if c.skipReplayed() {
			return nil, false
		}
		c.index++

		cum := c.state.cumulativeText
		if len(b.Text) < len(cum) {
			// The stream disagrees with our checkpoint. Resynchronize to
			// what the agent reports rather than emitting garbage.
			c.log.Warn("replay desync, resynchronizing text state",
				"have", len(cum), "got", len(b.Text))
			c.state.cumulativeText = b.Text
			return nil, false
		}

		delta := b.Text[len(cum):]
		if delta == "" {
			return nil, false
		}
		c.state.cumulativeText = b.Text
		return TextEvent{Delta: delta}, true

	case BlockTypeToolUse:
		if c.skipReplayed() {
			return nil, false
		}
		c.index++
		c.state.blocksSeen = c.index
		c.state.cumulativeText = ""
		return ToolCallEvent{ID: b.ID, Name: b.Name, Input: b.Input}, true

	default:
		// Thinking and other block kinds are not surfaced and do not
		// advance the cursor.
		return nil, false
	}
}

// skipReplayed advances past a block already surfaced in a prior turn.
func (c *TurnCursor) skipReplayed() bool {
	if c.index < c.state.blocksSeen {
		c.index++
		return true
	}
	return false
}

// FinishTurn force-sets the session high-water mark to the cursor position.
// Called on every terminal stream event, so the next resume starts from this
// checkpoint even if the stream ended mid-block.
func (c *TurnCursor) FinishTurn() {
	c.state.blocksSeen = c.index
}
