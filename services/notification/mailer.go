package notification

import (
	"context"
	"errors"
	"fmt"

	"traceaq/models"
	"traceaq/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueMailer turns mail requests into asynq tasks handled by the mail worker.
type QueueMailer struct {
	queue  Enqueuer
	logger *zap.Logger
}

func NewQueueMailer(queue Enqueuer, logger *zap.Logger) *QueueMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueMailer{queue: queue, logger: logger}
}

func (m *QueueMailer) SendResetCode(ctx context.Context, email, code string) error {
	task, opts, err := tasks.NewResetCodeTask(models.ResetCodePayload{Email: email, Code: code})
	if err != nil {
		return fmt.Errorf("failed to build reset code task: %w", err)
	}
	if _, err := m.queue.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to queue reset code: %w", err)
	}
	return nil
}

// SubscriptionConfirmed queues the confirmation email of a completed order. Queuing the
// same order twice is not an error.
func (m *QueueMailer) SubscriptionConfirmed(ctx context.Context, order *models.Order) error {
	task, opts, err := tasks.NewSubscriptionTask(models.SubscriptionPayload{
		OrderID:      order.ID,
		Email:        order.Email,
		FullName:     order.FullName,
		Amount:       order.Amount,
		Currency:     order.Currency,
		IsResearcher: order.IsResearcher,
	})
	if err != nil {
		return fmt.Errorf("failed to build subscription task: %w", err)
	}
	if _, err := m.queue.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			m.logger.Debug("Subscription email already queued", zap.String("orderID", order.ID))
			return nil
		}
		return fmt.Errorf("failed to queue subscription email: %w", err)
	}
	return nil
}
