package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/faq-bot/internal/engine"
	"github.com/xaenox/faq-bot/internal/models"
	"github.com/xaenox/faq-bot/internal/storage"
	"go.uber.org/zap"
)

const platform = "telegram"

// Bot is the messaging-platform adapter: it forwards each incoming Telegram
// message through the engine and replies with the resolved answer. The
// adapter, not the engine, keeps conversation continuity per chat.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *engine.Engine
	store  storage.ConversationStorage
	logger *zap.Logger

	mu            sync.Mutex
	conversations map[int64]string      // chat id -> conversation id
	chatLocks     map[int64]*sync.Mutex // serializes processing per chat
}

func New(token string, eng *engine.Engine, store storage.ConversationStorage, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:           api,
		engine:        eng,
		store:         store,
		logger:        logger,
		conversations: make(map[int64]string),
		chatLocks:     make(map[int64]*sync.Mutex),
	}, nil
}

func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		go b.handleMessage(update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx := context.Background()

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	content := message.Text
	if content == "" {
		return
	}

	result, err := b.processForChat(ctx, message.Chat.ID, message.From.ID, content)
	if err != nil {
		b.logger.Error("Failed to process message",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't process your message. Please try again.")
		return
	}

	b.sendMessage(message.Chat.ID, result.Response)
}

// processForChat runs one message through the engine while holding the
// chat's lock, so concurrent updates from the same chat reuse one
// conversation instead of racing to create several.
func (b *Bot) processForChat(ctx context.Context, chatID, userID int64, content string) (*models.ResolutionResult, error) {
	lock := b.chatLock(chatID)
	lock.Lock()
	defer lock.Unlock()

	result, err := b.engine.ProcessMessage(ctx, engine.ChatRequest{
		UserID:         strconv.FormatInt(userID, 10),
		Platform:       platform,
		ConversationID: b.conversationFor(chatID),
		Content:        content,
	})
	if err != nil {
		return nil, err
	}

	b.rememberConversation(chatID, result.ConversationID)
	return result, nil
}

func (b *Bot) chatLock(chatID int64) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()

	lock, exists := b.chatLocks[chatID]
	if !exists {
		lock = &sync.Mutex{}
		b.chatLocks[chatID] = lock
	}
	return lock
}

func (b *Bot) conversationFor(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[chatID]
}

func (b *Bot) rememberConversation(chatID int64, conversationID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[chatID] = conversationID
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(message)
	case "help":
		b.handleHelp(message)
	case "history":
		b.handleHistory(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleStart(message *tgbotapi.Message) {
	// A fresh conversation begins with the next message.
	b.mu.Lock()
	delete(b.conversations, message.Chat.ID)
	b.mu.Unlock()

	welcome := `Hi! I'm a support assistant. 💬
Ask me anything — I'll answer from our knowledge base, or figure it out myself if there's no stored answer.

Use /help to see all available commands.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Available commands:
/start - Start a new conversation
/help - Show this help message
/history - Show your recent messages

Just type a question and I'll answer it.`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	conversationID := b.conversationFor(message.Chat.ID)
	if conversationID == "" {
		b.sendMessage(message.Chat.ID, "You don't have any messages yet.")
		return
	}

	messages, err := b.store.GetRecentMessages(ctx, conversationID, 10)
	if err != nil {
		b.logger.Error("Failed to get conversation history",
			zap.Error(err),
			zap.String("conversation_id", conversationID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't retrieve your message history.")
		return
	}

	if len(messages) == 0 {
		b.sendMessage(message.Chat.ID, "You don't have any messages yet.")
		return
	}

	response := "Your recent messages:\n\n"
	for _, msg := range messages {
		prefix := "You"
		if msg.Role == models.RoleAssistant {
			prefix = "Bot"
		}
		response += fmt.Sprintf("%s: %s\n", prefix, msg.Content)
	}

	b.sendMessage(message.Chat.ID, response)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
