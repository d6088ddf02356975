package storage

import (
	"context"
	"errors"

	"github.com/xaenox/faq-bot/internal/models"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrFAQNotFound          = errors.New("faq entry not found")
	ErrDuplicateFeedback    = errors.New("feedback already recorded for message")
)

type Storage interface {
	ConversationStorage
	FAQStorage
	FeedbackStorage
	Close() error
}

// ConversationStorage holds ordered per-conversation history. Appends are
// single atomic inserts; message order within a conversation is stable even
// when two messages share a timestamp.
type ConversationStorage interface {
	CreateConversation(ctx context.Context, userID, platform string) (*models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ConversationExists(ctx context.Context, id string) (bool, error)
	AppendMessage(ctx context.Context, conversationID, role, content string) (*models.Message, error)
	// GetRecentMessages returns at most limit most recent messages in
	// chronological order, oldest first.
	GetRecentMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error)
	GetMessages(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error)
}

// FAQStorage is the knowledge base. SearchFAQ returns candidate entries that
// mention at least one of the given keywords; relevance ranking happens in
// the matcher so both backends score identically.
type FAQStorage interface {
	CreateFAQ(ctx context.Context, question, answer, keywords string) (*models.FAQEntry, error)
	GetFAQ(ctx context.Context, id string) (*models.FAQEntry, error)
	ListFAQs(ctx context.Context, limit, offset int) ([]models.FAQEntry, error)
	UpdateFAQ(ctx context.Context, id, question, answer, keywords string) (*models.FAQEntry, error)
	DeleteFAQ(ctx context.Context, id string) error
	SearchFAQ(ctx context.Context, keywords []string) ([]models.FAQEntry, error)
}

// FeedbackStorage records at most one helpfulness judgment per message.
type FeedbackStorage interface {
	CreateFeedback(ctx context.Context, messageID string, helpful *bool, comment string) (*models.Feedback, error)
	FeedbackExists(ctx context.Context, messageID string) (bool, error)
	MessageExists(ctx context.Context, messageID string) (bool, error)
}
