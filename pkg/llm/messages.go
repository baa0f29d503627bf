package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// MessageRole represents the role of a message participant
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message represents a single turn in a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// NormalizeRole maps arbitrary role strings onto the canonical roles.
// Unknown roles collapse to user so a conversation imported from
// another system still produces a valid request.
func NormalizeRole(role string) MessageRole {
	switch MessageRole(strings.ToLower(strings.TrimSpace(role))) {
	case RoleSystem:
		return RoleSystem
	case RoleAssistant:
		return RoleAssistant
	default:
		return RoleUser
	}
}

// FilterMessages drops malformed entries (empty role or content) from a
// conversation, logging a warning for each one skipped. It returns a
// validation error when the input is empty or when nothing survives the
// filter, so no adapter ever issues a request with an empty body.
func FilterMessages(messages []Message, logger *zap.Logger) ([]Message, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(messages) == 0 {
		return nil, NewValidationError("empty_messages", "messages list is empty")
	}

	filtered := make([]Message, 0, len(messages))
	for i, msg := range messages {
		if msg.Role == "" || msg.Content == "" {
			logger.Warn("skipping malformed message",
				zap.Int("index", i),
				zap.String("role", string(msg.Role)))
			continue
		}
		filtered = append(filtered, msg)
	}

	if len(filtered) == 0 {
		return nil, NewValidationError("empty_messages",
			fmt.Sprintf("all %d messages are malformed", len(messages)))
	}
	return filtered, nil
}
