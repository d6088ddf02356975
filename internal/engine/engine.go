package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/xaenox/faq-bot/internal/ai"
	"github.com/xaenox/faq-bot/internal/matcher"
	"github.com/xaenox/faq-bot/internal/models"
	"github.com/xaenox/faq-bot/internal/storage"
	"go.uber.org/zap"
)

// DefaultHistoryLimit is the context window handed to the generative
// fallback: the most recent messages, oldest first.
const DefaultHistoryLimit = 5

// DegradedResponse is the fixed assistant turn substituted when generation
// fails or times out. Callers detect the case by SourceAIDegraded, never by
// matching this text.
const DegradedResponse = "I'm sorry, I'm having trouble processing your request right now."

// ChatRequest is one inbound user utterance. ConversationID may be empty, in
// which case a fresh conversation is created for UserID on Platform.
type ChatRequest struct {
	UserID         string
	Platform       string
	ConversationID string
	Content        string
}

// Engine resolves user messages to either a knowledge-base answer or a
// generative completion, keeping per-conversation history consistent. All
// collaborators are injected at construction time.
type Engine struct {
	store        storage.Storage
	matcher      *matcher.Matcher
	responder    ai.Responder
	historyLimit int
	logger       *zap.Logger

	mu    sync.Mutex
	locks map[string]*conversationLock // per-conversation append serialization
}

// conversationLock is reference-counted so the locks map only holds entries
// for conversations with in-flight requests.
type conversationLock struct {
	mu   sync.Mutex
	refs int
}

func New(store storage.Storage, m *matcher.Matcher, responder ai.Responder, historyLimit int, logger *zap.Logger) *Engine {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Engine{
		store:        store,
		matcher:      m,
		responder:    responder,
		historyLimit: historyLimit,
		logger:       logger,
		locks:        make(map[string]*conversationLock),
	}
}

// lockConversation serializes appends within one conversation without
// blocking unrelated conversations.
func (e *Engine) lockConversation(conversationID string) *conversationLock {
	e.mu.Lock()
	lock, exists := e.locks[conversationID]
	if !exists {
		lock = &conversationLock{}
		e.locks[conversationID] = lock
	}
	lock.refs++
	e.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (e *Engine) unlockConversation(conversationID string, lock *conversationLock) {
	lock.mu.Unlock()

	e.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(e.locks, conversationID)
	}
	e.mu.Unlock()
}

// ProcessMessage runs the resolution flow: resolve the conversation, log the
// user turn, try the knowledge base, fall back to generation with windowed
// history, log the assistant turn, and return the source-tagged result.
// Generation failures degrade to a fixed response and never surface as
// errors; conversation resolution and storage failures propagate.
func (e *Engine) ProcessMessage(ctx context.Context, req ChatRequest) (*models.ResolutionResult, error) {
	conversationID := req.ConversationID
	if conversationID == "" {
		conv, err := e.store.CreateConversation(ctx, req.UserID, req.Platform)
		if err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		conversationID = conv.ID
	} else {
		exists, err := e.store.ConversationExists(ctx, conversationID)
		if err != nil {
			return nil, fmt.Errorf("failed to check conversation: %w", err)
		}
		if !exists {
			return nil, storage.ErrConversationNotFound
		}
	}

	lock := e.lockConversation(conversationID)
	defer e.unlockConversation(conversationID, lock)

	// User turn is logged before any matching so history stays complete
	// even if a later step fails.
	if _, err := e.store.AppendMessage(ctx, conversationID, models.RoleUser, req.Content); err != nil {
		return nil, fmt.Errorf("failed to log user message: %w", err)
	}

	response, source, err := e.resolve(ctx, conversationID, req.Content)
	if err != nil {
		return nil, err
	}

	botMsg, err := e.store.AppendMessage(ctx, conversationID, models.RoleAssistant, response)
	if err != nil {
		return nil, fmt.Errorf("failed to log assistant message: %w", err)
	}

	e.logger.Info("Resolved message",
		zap.String("conversation_id", conversationID),
		zap.String("source", source))

	return &models.ResolutionResult{
		ConversationID: conversationID,
		MessageID:      botMsg.ID,
		Response:       response,
		Source:         source,
		Timestamp:      botMsg.CreatedAt,
	}, nil
}

// resolve picks the answer: knowledge base first, then the generative
// fallback over the recent window, then the degraded response.
func (e *Engine) resolve(ctx context.Context, conversationID, content string) (string, string, error) {
	keywords := matcher.ExtractKeywords(content)
	match, err := e.matcher.Match(ctx, keywords)
	if err != nil {
		return "", "", err
	}
	if match != nil {
		return match.Entry.Answer, models.SourceFAQ, nil
	}

	// The window already includes the just-logged user turn.
	window, err := e.store.GetRecentMessages(ctx, conversationID, e.historyLimit)
	if err != nil {
		return "", "", fmt.Errorf("failed to build context window: %w", err)
	}

	turns := make([]ai.Turn, 0, len(window))
	for _, msg := range window {
		turns = append(turns, ai.Turn{Role: msg.Role, Content: msg.Content})
	}

	response, err := e.responder.Complete(ctx, turns)
	if err != nil {
		e.logger.Warn("Generation failed, using degraded response",
			zap.Error(err),
			zap.String("conversation_id", conversationID))
		return DegradedResponse, models.SourceAIDegraded, nil
	}

	return response, models.SourceAI, nil
}
