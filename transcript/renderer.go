package transcript

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Default rendering bounds. The chunk size stays below Telegram's 4096-byte
// message limit with a safety margin for markup the transport may add.
const (
	DefaultChunkSize        = 4000
	DefaultThrottleInterval = 500 * time.Millisecond
	DefaultThrottleDelta    = 50
)

// nopHandler is a slog.Handler that discards all output.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }

var nopLogger = slog.New(nopHandler{})

// RendererConfig bounds the renderer's output rate and chunking.
type RendererConfig struct {
	// Logger for render anomalies. Nil disables logging.
	Logger *slog.Logger

	// ChunkSize is the maximum chunk length in runes (default 4000).
	ChunkSize int

	// ThrottleInterval is the minimum interval between text-triggered
	// renders (default 500ms).
	ThrottleInterval time.Duration

	// ThrottleDelta is the accumulated text size that forces a render
	// before the interval elapses (default 50).
	ThrottleDelta int

	// now is a test hook for the clock.
	now func() time.Time
}

func (c *RendererConfig) applyDefaults() {
	if c.Logger == nil {
		c.Logger = nopLogger
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ThrottleInterval <= 0 {
		c.ThrottleInterval = DefaultThrottleInterval
	}
	if c.ThrottleDelta <= 0 {
		c.ThrottleDelta = DefaultThrottleDelta
	}
	if c.now == nil {
		c.now = time.Now
	}
}

// chunkState tracks one rendered chunk for the turn. A chunk whose edit or
// send failed is abandoned for the rest of the turn.
type chunkState struct {
	handle   MessageHandle
	lastSent string
	failed   bool
}

// Renderer projects the event log into transport messages. One renderer is
// created per turn and discarded after the final flush; its mutex serializes
// overlapping render triggers so writes to chunk state never interleave.
type Renderer struct {
	transport    Transport
	config       RendererConfig
	mu           sync.Mutex
	chunks       []chunkState
	lastRender   time.Time
	pendingDelta int
}

// NewRenderer creates a renderer over the given transport.
func NewRenderer(transport Transport, config RendererConfig) *Renderer {
	config.applyDefaults()
	return &Renderer{transport: transport, config: config}
}

// TextDelta renders after a text event, subject to throttling: the render
// is suppressed unless the throttle interval has elapsed since the last
// render or the text accumulated since then exceeds the delta threshold.
func (r *Renderer) TextDelta(ctx context.Context, entries []Entry, deltaLen int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pendingDelta += deltaLen
	since := r.config.now().Sub(r.lastRender)
	if since < r.config.ThrottleInterval && r.pendingDelta <= r.config.ThrottleDelta {
		return
	}

	r.renderLocked(ctx, entries)
}

// Update renders immediately. Tool lifecycle events and turn completion are
// never throttled.
func (r *Renderer) Update(ctx context.Context, entries []Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderLocked(ctx, entries)
}

// Rendered reports whether any chunk was successfully sent this turn.
func (r *Renderer) Rendered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.chunks {
		if !c.failed {
			return true
		}
	}
	return false
}

// renderLocked materializes the combined text into chunks and reconciles
// them against the transport. Caller holds r.mu.
func (r *Renderer) renderLocked(ctx context.Context, entries []Entry) {
	combined := Format(entries)
	if strings.TrimSpace(combined) == "" {
		return
	}

	for i, chunk := range splitChunks(combined, r.config.ChunkSize) {
		if i < len(r.chunks) {
			r.reconcileExisting(ctx, i, chunk)
			continue
		}
		r.sendNew(ctx, chunk)
	}

	r.lastRender = r.config.now()
	r.pendingDelta = 0
}

// reconcileExisting edits chunk i in place if its content changed.
func (r *Renderer) reconcileExisting(ctx context.Context, i int, chunk string) {
	state := &r.chunks[i]
	if state.failed || state.lastSent == chunk {
		return
	}

	if err := r.editWithFallback(ctx, state.handle, chunk); err != nil {
		// The message may have been deleted or the transport is refusing
		// the edit; either way this chunk is done for the turn.
		r.config.Logger.Warn("chunk edit failed, abandoning chunk", "chunk", i, "error", err)
		state.failed = true
		return
	}
	state.lastSent = chunk
}

// sendNew posts a fresh chunk and records its handle.
func (r *Renderer) sendNew(ctx context.Context, chunk string) {
	handle, err := r.sendWithFallback(ctx, chunk)
	if err != nil {
		r.config.Logger.Warn("chunk send failed, abandoning chunk", "chunk", len(r.chunks), "error", err)
		r.chunks = append(r.chunks, chunkState{failed: true})
		return
	}
	r.chunks = append(r.chunks, chunkState{handle: handle, lastSent: chunk})
}

// sendWithFallback sends with markup, retrying once in plain text if the
// transport rejects the formatting.
func (r *Renderer) sendWithFallback(ctx context.Context, text string) (MessageHandle, error) {
	handle, err := r.transport.Send(ctx, text, true)
	if err == nil {
		return handle, nil
	}
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		return nil, err
	}
	r.config.Logger.Info("markup rejected, retrying send as plain text")
	return r.transport.Send(ctx, text, false)
}

// editWithFallback edits with markup, retrying once in plain text if the
// transport rejects the formatting.
func (r *Renderer) editWithFallback(ctx context.Context, handle MessageHandle, text string) error {
	err := r.transport.Edit(ctx, handle, text, true)
	if err == nil {
		return nil
	}
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		return err
	}
	r.config.Logger.Info("markup rejected, retrying edit as plain text")
	return r.transport.Edit(ctx, handle, text, false)
}

// splitChunks slices text into fixed-size rune windows.
func splitChunks(text string, size int) []string {
	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
