package telegram

import (
	"fmt"
	"strings"
)

// FormatUserError turns a turn failure into the single user-visible error
// message for that turn.
func FormatUserError(err error) string {
	if err == nil {
		return "❌ *Error*\n\nThe request failed for an unknown reason."
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "no conversation found"):
		return "🔄 *Session Not Found*\n\n" +
			"The agent session could not be found or has expired.\n" +
			"Use /new to start a fresh session and try again."

	case strings.Contains(lower, "usage limit"), strings.Contains(lower, "rate limit"):
		return "⏱️ *Rate Limit Reached*\n\n" +
			"Too many requests in a short period. Wait a moment before trying again."

	case strings.Contains(lower, "timeout"), strings.Contains(lower, "timed out"):
		return "⏰ *Request Timeout*\n\n" +
			"The request took too long. Try breaking it into smaller parts."

	default:
		return fmt.Sprintf("❌ *Error*\n\nFailed to process your request: %s", msg)
	}
}
