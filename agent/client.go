package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
)

// nopHandler is a slog.Handler that discards all output.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }

// nopLogger is a shared no-op logger instance.
var nopLogger = slog.New(nopHandler{})

// StreamRequest describes one turn of one conversation.
type StreamRequest struct {
	// Prompt is the user's message.
	Prompt string

	// SessionKey identifies the conversation for replay deduplication.
	// It is caller-defined and stable across turns (e.g. chat + topic).
	SessionKey string

	// WorkDir is the agent's working directory.
	WorkDir string

	// Resume is the agent session id returned by a prior turn, or empty.
	Resume string
}

// Stream is one live turn's normalized event sequence. The channel delivers
// events in arrival order and is closed after exactly one terminal event
// (ResultEvent or ErrorEvent).
type Stream struct {
	events    chan Event
	mu        sync.RWMutex
	sessionID string
}

// Events returns the event channel for this turn.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// SessionID returns the agent session id, available once the stream has
// initialized. Callers record it for the next turn regardless of outcome.
func (s *Stream) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

func (s *Stream) setSessionID(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	s.sessionID = id
	s.mu.Unlock()
}

// Client turns raw agent runs into deduplicated, normalized event streams.
type Client struct {
	runner  Runner
	tracker *BlockTracker
	log     *slog.Logger
}

// NewClient creates a client over the given runner. A nil logger disables
// logging.
func NewClient(runner Runner, log *slog.Logger) *Client {
	if log == nil {
		log = nopLogger
	}
	return &Client{
		runner:  runner,
		tracker: NewBlockTracker(log),
		log:     log,
	}
}

// ResetSession discards replay-tracking state for a conversation. Used when
// the caller starts a fresh agent session (e.g. /new).
func (c *Client) ResetSession(sessionKey string) {
	c.tracker.Reset(sessionKey)
}

// Stream starts one turn and returns its event stream. The returned stream
// terminates with exactly one ResultEvent or ErrorEvent; the caller must
// drain it.
func (c *Client) Stream(ctx context.Context, req StreamRequest) (*Stream, error) {
	handle, err := c.runner.Start(ctx, RunRequest{
		Prompt:  req.Prompt,
		WorkDir: req.WorkDir,
		Resume:  req.Resume,
	})
	if err != nil {
		return nil, err
	}

	stream := &Stream{events: make(chan Event, 64)}
	go c.consume(ctx, handle, req.SessionKey, stream)
	return stream, nil
}

// consume drives the wire message loop for one turn. Every exit path stops
// the handle, checkpoints the block cursor, and closes the event channel.
func (c *Client) consume(ctx context.Context, handle RunHandle, sessionKey string, stream *Stream) {
	cursor := c.tracker.StartTurn(sessionKey)

	defer close(stream.events)
	defer handle.Stop()
	// Resynchronize the block checkpoint on every exit, including errors,
	// so a resumed stream does not re-emit content the user already saw.
	defer cursor.FinishTurn()

	for {
		msg, err := handle.ReadMessage()
		if err != nil {
			var protoErr *ProtocolError
			if errors.As(err, &protoErr) {
				// One bad line does not end the turn.
				c.log.Warn("skipping malformed stream line", "error", err)
				continue
			}
			if errors.Is(err, io.EOF) {
				err = ErrStreamClosed
			}
			c.send(ctx, stream, ErrorEvent{Err: err, Context: "read_stream"})
			return
		}

		switch m := msg.(type) {
		case SystemMessage:
			if m.Subtype == "init" {
				stream.setSessionID(m.SessionID)
			}

		case AssistantMessage:
			stream.setSessionID(m.SessionID)
			for _, block := range m.Message.Content {
				if ev, ok := cursor.ProcessBlock(block); ok {
					if !c.send(ctx, stream, ev) {
						return
					}
				}
			}

		case UserMessage:
			for _, block := range m.Message.Content {
				if block.Type != BlockTypeToolResult {
					continue
				}
				ev := ToolResultEvent{ToolUseID: block.ToolUseID, IsError: block.IsError}
				if !c.send(ctx, stream, ev) {
					return
				}
			}

		case ResultMessage:
			stream.setSessionID(m.SessionID)
			if m.IsError {
				c.send(ctx, stream, ErrorEvent{
					Err:     &TurnError{Message: m.Result},
					Context: "turn_result",
				})
				return
			}
			c.send(ctx, stream, ResultEvent{
				SessionID:  m.SessionID,
				Result:     m.Result,
				DurationMs: m.DurationMs,
				CostUSD:    m.TotalCostUSD,
			})
			return
		}
	}
}

// send delivers an event unless the context is cancelled.
func (c *Client) send(ctx context.Context, stream *Stream, ev Event) bool {
	select {
	case stream.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
