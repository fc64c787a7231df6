package agent

import (
	"strings"
	"testing"
)

func textBlock(text string) Block {
	return Block{Type: BlockTypeText, Text: text}
}

func toolBlock(id, name string) Block {
	return Block{Type: BlockTypeToolUse, ID: id, Name: name}
}

// collectText runs every block through the cursor and concatenates the
// emitted text deltas.
func collectText(c *TurnCursor, blocks []Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		if ev, ok := c.ProcessBlock(b); ok {
			if te, isText := ev.(TextEvent); isText {
				sb.WriteString(te.Delta)
			}
		}
	}
	return sb.String()
}

func TestCursorEmitsDeltas(t *testing.T) {
	tracker := NewBlockTracker(nil)
	cursor := tracker.StartTurn("s")

	// Cumulative snapshots of the same streaming block.
	got := collectText(cursor, []Block{
		textBlock("Hel"),
		textBlock("Hello"),
		textBlock("Hello, world"),
	})

	if got != "Hello, world" {
		t.Errorf("expected deltas to concatenate to the final text, got %q", got)
	}
}

func TestCursorIgnoresEmptyDelta(t *testing.T) {
	tracker := NewBlockTracker(nil)
	cursor := tracker.StartTurn("s")

	cursor.ProcessBlock(textBlock("same"))
	if _, ok := cursor.ProcessBlock(textBlock("same")); ok {
		t.Error("repeated identical text should emit nothing")
	}
}

func TestCursorToolUseResetsTextState(t *testing.T) {
	tracker := NewBlockTracker(nil)
	cursor := tracker.StartTurn("s")

	cursor.ProcessBlock(textBlock("before"))

	ev, ok := cursor.ProcessBlock(toolBlock("tu_1", "Bash"))
	if !ok {
		t.Fatal("tool_use block should emit an event")
	}
	call, isCall := ev.(ToolCallEvent)
	if !isCall {
		t.Fatalf("expected ToolCallEvent, got %T", ev)
	}
	if call.ID != "tu_1" || call.Name != "Bash" {
		t.Errorf("unexpected tool call: %+v", call)
	}

	// Text after the tool starts a fresh cumulative run.
	ev, ok = cursor.ProcessBlock(textBlock("after"))
	if !ok {
		t.Fatal("text after tool should emit")
	}
	if ev.(TextEvent).Delta != "after" {
		t.Errorf("expected full new text as delta, got %q", ev.(TextEvent).Delta)
	}
}

func TestCursorSkipsThinkingBlocks(t *testing.T) {
	tracker := NewBlockTracker(nil)
	cursor := tracker.StartTurn("s")

	if _, ok := cursor.ProcessBlock(Block{Type: BlockTypeThinking, Text: "mulling"}); ok {
		t.Error("thinking blocks should not surface")
	}

	// The thinking block must not advance the replay position either.
	ev, ok := cursor.ProcessBlock(textBlock("visible"))
	if !ok || ev.(TextEvent).Delta != "visible" {
		t.Errorf("text after thinking should emit normally, got %v %v", ev, ok)
	}
}

func TestResumedTurnSkipsReplayedBlocks(t *testing.T) {
	tracker := NewBlockTracker(nil)

	// Turn one: text, then a tool, then a final text run.
	c1 := tracker.StartTurn("s")
	turn1 := collectText(c1, []Block{
		textBlock("intro"),
		toolBlock("tu_1", "Read"),
		textBlock("conclusion"),
	})
	c1.FinishTurn()
	if turn1 != "introconclusion" {
		t.Fatalf("unexpected turn one output: %q", turn1)
	}

	// Turn two replays everything from the start and then continues.
	c2 := tracker.StartTurn("s")
	turn2 := collectText(c2, []Block{
		textBlock("intro"),
		toolBlock("tu_1", "Read"),
		textBlock("conclusion"),
		textBlock("conclusion and more"),
	})
	c2.FinishTurn()

	if turn2 != " and more" {
		t.Errorf("resumed turn should only emit the unseen remainder, got %q", turn2)
	}
}

func TestReplayIsIdempotent(t *testing.T) {
	tracker := NewBlockTracker(nil)
	blocks := []Block{
		textBlock("alpha"),
		toolBlock("tu_1", "Bash"),
		textBlock("beta"),
	}

	c1 := tracker.StartTurn("s")
	first := collectText(c1, blocks)
	c1.FinishTurn()

	c2 := tracker.StartTurn("s")
	second := collectText(c2, blocks)
	c2.FinishTurn()

	if first != "alphabeta" {
		t.Errorf("first pass: got %q", first)
	}
	if second != "" {
		t.Errorf("pure replay should emit nothing, got %q", second)
	}
}

func TestDesyncResynchronizes(t *testing.T) {
	tracker := NewBlockTracker(nil)
	cursor := tracker.StartTurn("s")

	cursor.ProcessBlock(textBlock("a long cumulative run"))

	// A shorter snapshot contradicts the checkpoint; nothing is emitted and
	// the state follows the stream.
	if _, ok := cursor.ProcessBlock(textBlock("short")); ok {
		t.Error("shrinking text should not emit")
	}
	ev, ok := cursor.ProcessBlock(textBlock("short+more"))
	if !ok || ev.(TextEvent).Delta != "+more" {
		t.Errorf("after resync deltas continue from the stream's text, got %v %v", ev, ok)
	}
}

func TestFinishTurnCheckpointsMidBlock(t *testing.T) {
	tracker := NewBlockTracker(nil)

	c1 := tracker.StartTurn("s")
	collectText(c1, []Block{textBlock("partial")})
	c1.FinishTurn()

	// The checkpoint covers the interrupted block, so its replay is skipped
	// wholesale even when the replayed snapshot grew.
	c2 := tracker.StartTurn("s")
	got := collectText(c2, []Block{textBlock("partial output")})
	if got != "" {
		t.Errorf("replayed checkpointed block should emit nothing, got %q", got)
	}
}

func TestResetDiscardsSessionState(t *testing.T) {
	tracker := NewBlockTracker(nil)

	c1 := tracker.StartTurn("s")
	collectText(c1, []Block{textBlock("seen")})
	c1.FinishTurn()

	tracker.Reset("s")

	c2 := tracker.StartTurn("s")
	got := collectText(c2, []Block{textBlock("seen")})
	if got != "seen" {
		t.Errorf("after reset nothing counts as replayed, got %q", got)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	tracker := NewBlockTracker(nil)

	a := tracker.StartTurn("a")
	collectText(a, []Block{textBlock("hello")})
	a.FinishTurn()

	b := tracker.StartTurn("b")
	got := collectText(b, []Block{textBlock("hello")})
	if got != "hello" {
		t.Errorf("session b should not share session a's state, got %q", got)
	}
}
