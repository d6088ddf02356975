package bot

import (
	"context"
	"sync"
	"testing"

	"github.com/xaenox/faq-bot/internal/ai"
	"github.com/xaenox/faq-bot/internal/engine"
	"github.com/xaenox/faq-bot/internal/matcher"
	"github.com/xaenox/faq-bot/internal/storage"
	"go.uber.org/zap"
)

type stubResponder struct{}

func (stubResponder) Complete(ctx context.Context, turns []ai.Turn) (string, error) {
	return "pong", nil
}

func newTestBot(t *testing.T) (*Bot, *storage.MemoryStorage) {
	t.Helper()
	store := storage.NewMemoryStorage()
	logger := zap.NewNop()
	m := matcher.New(store, 0, logger)
	eng := engine.New(store, m, stubResponder{}, 0, logger)
	return &Bot{
		engine:        eng,
		store:         store,
		logger:        logger,
		conversations: make(map[int64]string),
		chatLocks:     make(map[int64]*sync.Mutex),
	}, store
}

func TestProcessForChatReusesConversation(t *testing.T) {
	b, _ := newTestBot(t)
	ctx := context.Background()

	first, err := b.processForChat(ctx, 42, 7, "hello")
	if err != nil {
		t.Fatalf("processForChat: %v", err)
	}
	second, err := b.processForChat(ctx, 42, 7, "hello again")
	if err != nil {
		t.Fatalf("processForChat: %v", err)
	}

	if first.ConversationID != second.ConversationID {
		t.Errorf("chat messages split across conversations %s and %s",
			first.ConversationID, second.ConversationID)
	}
}

func TestProcessForChatConcurrentMessagesShareConversation(t *testing.T) {
	b, store := newTestBot(t)
	ctx := context.Background()

	const messages = 10
	ids := make([]string, messages)
	var wg sync.WaitGroup
	for i := 0; i < messages; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := b.processForChat(ctx, 42, 7, "hello")
			if err != nil {
				t.Errorf("processForChat: %v", err)
				return
			}
			ids[i] = result.ConversationID
		}(i)
	}
	wg.Wait()

	for i := 1; i < messages; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("concurrent messages created separate conversations: %s vs %s", ids[0], ids[i])
		}
	}

	history, err := store.GetMessages(ctx, ids[0], 2*messages, 0)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(history) != 2*messages {
		t.Errorf("history length = %d, want %d", len(history), 2*messages)
	}
}

func TestProcessForChatSeparateChatsSeparateConversations(t *testing.T) {
	b, _ := newTestBot(t)
	ctx := context.Background()

	first, err := b.processForChat(ctx, 1, 7, "hello")
	if err != nil {
		t.Fatalf("processForChat: %v", err)
	}
	second, err := b.processForChat(ctx, 2, 8, "hello")
	if err != nil {
		t.Fatalf("processForChat: %v", err)
	}

	if first.ConversationID == second.ConversationID {
		t.Error("distinct chats must not share a conversation")
	}
}
