package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/faq-bot/internal/models"
)

// MemoryStorage is a mutex-guarded in-memory backend used for local
// development and as the test fake.
type MemoryStorage struct {
	mu            sync.RWMutex
	conversations map[string]*models.Conversation
	messages      map[string][]models.Message // conversationID -> ordered turns
	messageIndex  map[string]string           // messageID -> conversationID
	faqs          map[string]*models.FAQEntry
	feedback      map[string]*models.Feedback // messageID -> feedback
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		conversations: make(map[string]*models.Conversation),
		messages:      make(map[string][]models.Message),
		messageIndex:  make(map[string]string),
		faqs:          make(map[string]*models.FAQEntry),
		feedback:      make(map[string]*models.Feedback),
	}
}

func (s *MemoryStorage) CreateConversation(ctx context.Context, userID, platform string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	conv := &models.Conversation{
		ID:        uuid.New().String(),
		UserID:    userID,
		Platform:  platform,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations[conv.ID] = conv
	return conv, nil
}

func (s *MemoryStorage) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, exists := s.conversations[id]
	if !exists {
		return nil, ErrConversationNotFound
	}
	copied := *conv
	return &copied, nil
}

func (s *MemoryStorage) ConversationExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.conversations[id]
	return exists, nil
}

func (s *MemoryStorage) AppendMessage(ctx context.Context, conversationID, role, content string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, exists := s.conversations[conversationID]
	if !exists {
		return nil, ErrConversationNotFound
	}

	msg := models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	s.messages[conversationID] = append(s.messages[conversationID], msg)
	s.messageIndex[msg.ID] = conversationID
	conv.UpdatedAt = msg.CreatedAt
	return &msg, nil
}

func (s *MemoryStorage) GetRecentMessages(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.conversations[conversationID]; !exists {
		return nil, ErrConversationNotFound
	}

	all := s.messages[conversationID]
	start := 0
	if limit > 0 && len(all) > limit {
		start = len(all) - limit
	}
	result := make([]models.Message, len(all)-start)
	copy(result, all[start:])
	return result, nil
}

func (s *MemoryStorage) GetMessages(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.conversations[conversationID]; !exists {
		return nil, ErrConversationNotFound
	}

	all := s.messages[conversationID]
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []models.Message{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	result := make([]models.Message, end-offset)
	copy(result, all[offset:end])
	return result, nil
}

func (s *MemoryStorage) CreateFAQ(ctx context.Context, question, answer, keywords string) (*models.FAQEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry := &models.FAQEntry{
		ID:        uuid.New().String(),
		Question:  question,
		Answer:    answer,
		Keywords:  keywords,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.faqs[entry.ID] = entry
	copied := *entry
	return &copied, nil
}

func (s *MemoryStorage) GetFAQ(ctx context.Context, id string) (*models.FAQEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.faqs[id]
	if !exists {
		return nil, ErrFAQNotFound
	}
	copied := *entry
	return &copied, nil
}

func (s *MemoryStorage) ListFAQs(ctx context.Context, limit, offset int) ([]models.FAQEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]models.FAQEntry, 0, len(s.faqs))
	for _, entry := range s.faqs {
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return []models.FAQEntry{}, nil
	}
	end := len(entries)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return entries[offset:end], nil
}

func (s *MemoryStorage) UpdateFAQ(ctx context.Context, id, question, answer, keywords string) (*models.FAQEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.faqs[id]
	if !exists {
		return nil, ErrFAQNotFound
	}
	if question != "" {
		entry.Question = question
	}
	if answer != "" {
		entry.Answer = answer
	}
	if keywords != "" {
		entry.Keywords = keywords
	}
	entry.UpdatedAt = time.Now()
	copied := *entry
	return &copied, nil
}

func (s *MemoryStorage) DeleteFAQ(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.faqs[id]; !exists {
		return ErrFAQNotFound
	}
	delete(s.faqs, id)
	return nil
}

func (s *MemoryStorage) SearchFAQ(ctx context.Context, keywords []string) ([]models.FAQEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []models.FAQEntry
	for _, entry := range s.faqs {
		haystack := strings.ToLower(entry.Question + " " + entry.Keywords)
		for _, kw := range keywords {
			if strings.Contains(haystack, strings.ToLower(kw)) {
				results = append(results, *entry)
				break
			}
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (s *MemoryStorage) CreateFeedback(ctx context.Context, messageID string, helpful *bool, comment string) (*models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.messageIndex[messageID]; !exists {
		return nil, ErrMessageNotFound
	}
	if _, exists := s.feedback[messageID]; exists {
		return nil, ErrDuplicateFeedback
	}

	fb := &models.Feedback{
		ID:        uuid.New().String(),
		MessageID: messageID,
		Helpful:   helpful,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
	s.feedback[messageID] = fb
	copied := *fb
	return &copied, nil
}

func (s *MemoryStorage) FeedbackExists(ctx context.Context, messageID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.feedback[messageID]
	return exists, nil
}

func (s *MemoryStorage) MessageExists(ctx context.Context, messageID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.messageIndex[messageID]
	return exists, nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
