package domain

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// IsValidRole reports whether s names one of the supported message roles.
func IsValidRole(s string) bool {
	switch Role(s) {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message represents a single turn in the exchange supplied by the caller.
type Message struct {
	Role    string `json:"role" binding:"required,chatrole"`
	Content string `json:"content"`
}

// ChatRequest is the body accepted by the chat endpoint.
type ChatRequest struct {
	Messages []Message `json:"messages" binding:"required,min=1,dive"`
}

// Variant names the prompt that produced a stream.
type Variant string

const (
	VariantPrimary  Variant = "primary"
	VariantFallback Variant = "fallback"
)

// Question returns the content of the last message, which is treated as the
// user's question regardless of its role.
func Question(messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", ErrNoMessages
	}
	return messages[len(messages)-1].Content, nil
}

// History returns every message except the last one. The returned slice is a
// copy, so appending to it never touches the caller's backing array.
func History(messages []Message) []Message {
	if len(messages) <= 1 {
		return []Message{}
	}
	out := make([]Message, len(messages)-1, len(messages))
	copy(out, messages[:len(messages)-1])
	return out
}
