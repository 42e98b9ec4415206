package tasks

import (
	"time"

	"traceaq/models"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
)

const (
	TypeSendResetCode        = "mail:reset_code"
	TypeSendSubscriptionMail = "mail:subscription_confirmed"
)

func NewResetCodeTask(payload models.ResetCodePayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendResetCode, b)
	// A reset code is useless once it expires, so stop retrying before that.
	opts := []asynq.Option{asynq.MaxRetry(3), asynq.Deadline(time.Now().Add(10 * time.Minute))}
	return task, opts, nil
}

func NewSubscriptionTask(payload models.SubscriptionPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendSubscriptionMail, b)
	opts := []asynq.Option{asynq.MaxRetry(10), asynq.TaskID("subscription:" + payload.OrderID)}
	return task, opts, nil
}

// DecodeResetCode reads a reset code task payload.
func DecodeResetCode(t *asynq.Task) (models.ResetCodePayload, error) {
	var p models.ResetCodePayload
	err := json.Unmarshal(t.Payload(), &p)
	return p, err
}

func DecodeSubscription(t *asynq.Task) (models.SubscriptionPayload, error) {
	var p models.SubscriptionPayload
	err := json.Unmarshal(t.Payload(), &p)
	return p, err
}
