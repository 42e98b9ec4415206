package cron

import (
	"context"
	"fmt"
	"time"

	"traceaq/config"
	"traceaq/services/notification"
	"traceaq/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt is the asynq connection used by both the mail client and the worker.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewMailMux routes queued mail tasks to the sender.
func NewMailMux(sender notification.Sender, from string, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendResetCode, handleResetCodeTask(sender, from, logger))
	mux.HandleFunc(tasks.TypeSendSubscriptionMail, handleSubscriptionTask(sender, from, logger))
	return mux
}

// InitMailWorker runs the mail worker in background and returns the server so
// the caller can shut it down.
func InitMailWorker(sender notification.Sender, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := NewMailMux(sender, config.AppConfig.MailFrom, logger)

	go func() {
		logger.Info("Starting mail worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				break
			}
			logger.Error("Mail worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err),
			)
			if attempts == maxAttempts {
				logger.Fatal("Max retry attempts reached for mail worker")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleResetCodeTask(sender notification.Sender, from string, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.DecodeResetCode(task)
		if err != nil {
			logger.Error("Invalid reset code payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err := sender.Send(ctx, notification.ResetCodeMessage(from, p)); err != nil {
			logger.Warn("Failed to send reset code", zap.Error(err))
			return err
		}
		return nil
	}
}

func handleSubscriptionTask(sender notification.Sender, from string, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.DecodeSubscription(task)
		if err != nil {
			logger.Error("Invalid subscription payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err := sender.Send(ctx, notification.SubscriptionMessage(from, p)); err != nil {
			logger.Warn("Failed to send subscription email", zap.String("orderID", p.OrderID), zap.Error(err))
			return err
		}
		logger.Info("Subscription email sent", zap.String("orderID", p.OrderID))
		return nil
	}
}
