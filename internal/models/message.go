package models

// Message is a single entry in a conversation history: who said it and what was
// said. Messages are immutable once appended to a history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role represents the role of a message participant. The server accepts arbitrary
// strings; these three are the ones the chat API recognizes.
type Role string

const (
	// RoleUser represents a message written by the user.
	RoleUser Role = "user"
	// RoleAssistant represents a message produced by the model.
	RoleAssistant Role = "assistant"
	// RoleSystem represents a system prompt.
	RoleSystem Role = "system"
)
