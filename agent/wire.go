package agent

import (
	"encoding/json"
	"fmt"
)

// messageType discriminates between CLI stream-json message kinds.
type messageType string

const (
	messageTypeSystem    messageType = "system"
	messageTypeAssistant messageType = "assistant"
	messageTypeUser      messageType = "user"
	messageTypeResult    messageType = "result"
)

// Message is the interface for all wire messages read from the agent process.
type Message interface {
	msgType() messageType
}

// SystemMessage carries session initialization and system events.
type SystemMessage struct {
	Subtype   string   `json:"subtype"`
	SessionID string   `json:"session_id"`
	Model     string   `json:"model,omitempty"`
	CWD       string   `json:"cwd,omitempty"`
	Tools     []string `json:"tools,omitempty"`
}

func (m SystemMessage) msgType() messageType { return messageTypeSystem }

// BlockType identifies the kind of content block.
type BlockType string

const (
	BlockTypeText       BlockType = "text"
	BlockTypeThinking   BlockType = "thinking"
	BlockTypeToolUse    BlockType = "tool_use"
	BlockTypeToolResult BlockType = "tool_result"
)

// Block is one unit of the agent's cumulative content. Assistant messages
// carry text and tool_use blocks; user messages carry tool_result blocks.
type Block struct {
	Input     map[string]interface{} `json:"input,omitempty"`
	Type      BlockType              `json:"type"`
	Text      string                 `json:"text,omitempty"`
	ID        string                 `json:"id,omitempty"`
	Name      string                 `json:"name,omitempty"`
	ToolUseID string                 `json:"tool_use_id,omitempty"`
	IsError   bool                   `json:"is_error,omitempty"`
}

// AssistantMessage carries the agent's cumulative content blocks.
type AssistantMessage struct {
	Message struct {
		Content []Block `json:"content"`
	} `json:"message"`
	SessionID string `json:"session_id"`
}

func (m AssistantMessage) msgType() messageType { return messageTypeAssistant }

// UserMessage carries tool results echoed back by the CLI.
type UserMessage struct {
	Message struct {
		Content []Block `json:"content"`
	} `json:"message"`
	SessionID string `json:"session_id"`
}

func (m UserMessage) msgType() messageType { return messageTypeUser }

// ResultMessage terminates the stream for one turn.
type ResultMessage struct {
	Subtype      string  `json:"subtype"`
	SessionID    string  `json:"session_id"`
	Result       string  `json:"result,omitempty"`
	DurationMs   int64   `json:"duration_ms,omitempty"`
	TotalCostUSD float64 `json:"total_cost_usd,omitempty"`
	IsError      bool    `json:"is_error"`
}

func (m ResultMessage) msgType() messageType { return messageTypeResult }

// ParseMessage decodes a single stream-json line into a wire message.
// Unknown message types return (nil, nil) so callers can skip them without
// treating the line as corrupt.
func ParseMessage(line []byte) (Message, error) {
	var envelope struct {
		Type messageType `json:"type"`
	}
	if err := json.Unmarshal(line, &envelope); err != nil {
		return nil, fmt.Errorf("decode message envelope: %w", err)
	}

	switch envelope.Type {
	case messageTypeSystem:
		var m SystemMessage
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, fmt.Errorf("decode system message: %w", err)
		}
		return m, nil
	case messageTypeAssistant:
		var m AssistantMessage
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, fmt.Errorf("decode assistant message: %w", err)
		}
		return m, nil
	case messageTypeUser:
		var m UserMessage
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, fmt.Errorf("decode user message: %w", err)
		}
		return m, nil
	case messageTypeResult:
		var m ResultMessage
		if err := json.Unmarshal(line, &m); err != nil {
			return nil, fmt.Errorf("decode result message: %w", err)
		}
		return m, nil
	default:
		return nil, nil
	}
}
