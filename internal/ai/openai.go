package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/xaenox/faq-bot/internal/models"
	"go.uber.org/zap"
)

// ErrGenerationUnavailable marks any completion failure, including timeouts.
// The engine recovers from it by substituting a degraded response.
var ErrGenerationUnavailable = errors.New("generation unavailable")

type OpenAIResponder struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
	logger      *zap.Logger
}

func NewOpenAIResponder(apiKey, model string, maxTokens int, temperature float64, timeout time.Duration, logger *zap.Logger) *OpenAIResponder {
	return &OpenAIResponder{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
		logger:      logger,
	}
}

func (r *OpenAIResponder) Complete(ctx context.Context, turns []Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, turn := range turns {
		role := openai.ChatMessageRoleAssistant
		if turn.Role == models.RoleUser {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}

	resp, err := r.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       r.model,
			Messages:    messages,
			MaxTokens:   r.maxTokens,
			Temperature: float32(r.temperature),
		},
	)
	if err != nil {
		r.logger.Error("Failed to get completion", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrGenerationUnavailable)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
