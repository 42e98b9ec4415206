package notification

import (
	"context"

	"traceaq/models"

	"github.com/hibiken/asynq"
)

// Enqueuer is the part of *asynq.Client the mailer needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg models.MailMessage) error
}

// Mailer queues the transactional emails of the checkout.
type Mailer interface {
	SendResetCode(ctx context.Context, email, code string) error
	SubscriptionConfirmed(ctx context.Context, order *models.Order) error
}
