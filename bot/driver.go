// Package bot drives agent turns: it owns the turn lifecycle, the keep-alive
// signal, and the routing of stream events into the transcript.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MaratGumarov/claude-code-telegram/agent"
	"github.com/MaratGumarov/claude-code-telegram/transcript"
)

// DefaultKeepAlivePeriod is how often the keep-alive signal is re-asserted
// while a turn is streaming.
const DefaultKeepAlivePeriod = 4 * time.Second

// ErrTurnInFlight is returned when a turn is started for a session key that
// already has one running. Turns of the same session never overlap.
var ErrTurnInFlight = errors.New("a turn is already in flight for this session")

// nopHandler is a slog.Handler that discards all output.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }

var nopLogger = slog.New(nopHandler{})

// KeepAlive re-asserts a presence signal (e.g. a typing indicator) while a
// turn is running.
type KeepAlive interface {
	Signal(ctx context.Context) error
}

// KeepAliveFunc adapts a function to the KeepAlive interface.
type KeepAliveFunc func(ctx context.Context) error

// Signal calls f.
func (f KeepAliveFunc) Signal(ctx context.Context) error { return f(ctx) }

// TurnRequest describes one turn to run.
type TurnRequest struct {
	// Prompt is the user's message.
	Prompt string

	// SessionKey identifies the conversation; turns with the same key are
	// serialized.
	SessionKey string

	// WorkDir is the agent's working directory.
	WorkDir string

	// Resume is the agent session id from the previous turn, or empty.
	Resume string
}

// TurnOutcome reports how a turn ended. SessionID is populated whenever the
// stream surfaced one, on success and failure alike, so the caller can
// resume the session next turn.
type TurnOutcome struct {
	Err        error
	SessionID  string
	Result     string
	DurationMs int64
	CostUSD    float64
	Rendered   bool
	Failed     bool
}

// DriverConfig configures the turn driver.
type DriverConfig struct {
	// Logger for turn lifecycle events. Nil disables logging.
	Logger *slog.Logger

	// KeepAlivePeriod is the keep-alive re-assertion interval
	// (default 4s).
	KeepAlivePeriod time.Duration

	// Renderer bounds chunking and throttling for each turn's renderer.
	Renderer transcript.RendererConfig
}

// Driver runs turns one at a time per session key. Each turn gets a fresh
// event log and renderer; block-tracking state lives in the agent client and
// spans turns.
type Driver struct {
	client   *agent.Client
	config   DriverConfig
	mu       sync.Mutex
	inFlight map[string]bool
}

// NewDriver creates a driver over the given agent client.
func NewDriver(client *agent.Client, config DriverConfig) *Driver {
	if config.Logger == nil {
		config.Logger = nopLogger
	}
	if config.KeepAlivePeriod <= 0 {
		config.KeepAlivePeriod = DefaultKeepAlivePeriod
	}
	return &Driver{
		client:   client,
		config:   config,
		inFlight: make(map[string]bool),
	}
}

// RunTurn drives one turn to completion: it starts the keep-alive signal,
// consumes the agent stream into the transcript, renders through the
// transport, and tears everything down on every exit path. The keep-alive
// goroutine is always cancelled and awaited before the final flush.
func (d *Driver) RunTurn(ctx context.Context, req TurnRequest, transport transcript.Transport, keepAlive KeepAlive) (*TurnOutcome, error) {
	if err := d.acquire(req.SessionKey); err != nil {
		return nil, err
	}
	defer d.release(req.SessionKey)

	turnID := uuid.NewString()
	log := d.config.Logger.With("turn", turnID, "session_key", req.SessionKey)

	stream, err := d.client.Stream(ctx, agent.StreamRequest{
		Prompt:     req.Prompt,
		SessionKey: req.SessionKey,
		WorkDir:    req.WorkDir,
		Resume:     req.Resume,
	})
	if err != nil {
		return nil, err
	}

	log.Info("turn streaming", "resume", req.Resume != "")

	kaCtx, cancelKeepAlive := context.WithCancel(ctx)
	kaDone := make(chan struct{})
	go d.keepAliveLoop(kaCtx, keepAlive, kaDone)

	rendererConfig := d.config.Renderer
	rendererConfig.Logger = log
	renderer := transcript.NewRenderer(transport, rendererConfig)
	tlog := transcript.NewLog(log)

	outcome := d.consume(ctx, stream, tlog, renderer)

	// Teardown order is load-bearing: stop and await the keep-alive before
	// the final flush so no background signal outlives the turn.
	cancelKeepAlive()
	<-kaDone

	renderer.Update(ctx, tlog.Entries())

	outcome.SessionID = stream.SessionID()
	outcome.Rendered = renderer.Rendered()

	if outcome.Failed {
		log.Warn("turn failed", "error", outcome.Err)
	} else {
		log.Info("turn complete",
			"duration_ms", outcome.DurationMs,
			"cost_usd", outcome.CostUSD,
			"entries", tlog.Len(),
		)
	}

	return outcome, nil
}

// consume routes stream events into the log and renderer until the terminal
// event arrives.
func (d *Driver) consume(ctx context.Context, stream *agent.Stream, tlog *transcript.Log, renderer *transcript.Renderer) *TurnOutcome {
	for ev := range stream.Events() {
		switch e := ev.(type) {
		case agent.TextEvent:
			tlog.AppendText(e.Delta)
			renderer.TextDelta(ctx, tlog.Entries(), len(e.Delta))

		case agent.ToolCallEvent:
			tlog.AppendToolCall(e.ID, e.Name, e.Input)
			renderer.Update(ctx, tlog.Entries())

		case agent.ToolResultEvent:
			tlog.Resolve(e.ToolUseID)
			renderer.Update(ctx, tlog.Entries())

		case agent.ResultEvent:
			tlog.ResolveAll()
			return &TurnOutcome{
				Result:     e.Result,
				DurationMs: e.DurationMs,
				CostUSD:    e.CostUSD,
			}

		case agent.ErrorEvent:
			return &TurnOutcome{Failed: true, Err: e.Err}
		}
	}

	// Stream closed without a terminal event; treat as failure.
	return &TurnOutcome{Failed: true, Err: agent.ErrStreamClosed}
}

// keepAliveLoop re-asserts the keep-alive signal until cancelled. It signals
// once immediately so the surface shows activity before the first event.
func (d *Driver) keepAliveLoop(ctx context.Context, keepAlive KeepAlive, done chan<- struct{}) {
	defer close(done)

	if keepAlive == nil {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(d.config.KeepAlivePeriod)
	defer ticker.Stop()

	if err := keepAlive.Signal(ctx); err != nil {
		d.config.Logger.Debug("keep-alive signal failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := keepAlive.Signal(ctx); err != nil {
				d.config.Logger.Debug("keep-alive signal failed", "error", err)
			}
		}
	}
}

func (d *Driver) acquire(sessionKey string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inFlight[sessionKey] {
		return ErrTurnInFlight
	}
	d.inFlight[sessionKey] = true
	return nil
}

func (d *Driver) release(sessionKey string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, sessionKey)
}
