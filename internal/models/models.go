package models

import "time"

// Message roles within a conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Answer sources reported in a ResolutionResult.
const (
	SourceFAQ        = "faq"
	SourceAI         = "ai"
	SourceAIDegraded = "ai_degraded"
)

// Conversation is a persisted thread of messages tied to one user on one
// platform ("web", "telegram", ...).
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single turn inside a conversation, immutable once created.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// FAQEntry is a curated question/answer pair searched by keyword.
type FAQEntry struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Keywords  string    `json:"keywords,omitempty"` // comma-separated hints
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Feedback is a helpfulness judgment attached to exactly one bot message.
// Helpful is nil while the message has not been rated yet.
type Feedback struct {
	ID        string    `json:"id"`
	MessageID string    `json:"message_id"`
	Helpful   *bool     `json:"is_helpful"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ResolutionResult is what the engine returns for a processed message.
// MessageID identifies the assistant turn so callers can attach feedback.
type ResolutionResult struct {
	ConversationID string    `json:"conversation_id"`
	MessageID      string    `json:"message_id"`
	Response       string    `json:"response"`
	Source         string    `json:"source"`
	Timestamp      time.Time `json:"timestamp"`
}
