package engine

import (
	"context"
	"fmt"

	"github.com/xaenox/faq-bot/internal/models"
	"github.com/xaenox/faq-bot/internal/storage"
	"go.uber.org/zap"
)

// RecordFeedback attaches a helpfulness judgment to an existing message.
// A second rating for the same message is rejected with ErrDuplicateFeedback
// rather than overwriting the first.
func (e *Engine) RecordFeedback(ctx context.Context, messageID string, helpful *bool, comment string) (*models.Feedback, error) {
	exists, err := e.store.MessageExists(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to check message: %w", err)
	}
	if !exists {
		return nil, storage.ErrMessageNotFound
	}

	rated, err := e.store.FeedbackExists(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to check feedback: %w", err)
	}
	if rated {
		return nil, storage.ErrDuplicateFeedback
	}

	fb, err := e.store.CreateFeedback(ctx, messageID, helpful, comment)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Feedback recorded",
		zap.String("message_id", messageID),
		zap.Boolp("helpful", helpful))

	return fb, nil
}
