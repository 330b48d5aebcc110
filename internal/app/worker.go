package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
)

var errNoMailQueue = errors.New("worker mode requires RABBITMQ_URL")

// runWorker читает письма из очереди RabbitMQ и отправляет их по SMTP до отмены ctx
func (a *App) runWorker(ctx context.Context) error {
	if a.mailConsumer == nil {
		return errNoMailQueue
	}

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	handle := func(ctx context.Context, payload payloads.MailPayload) error {
		start := time.Now()
		if err := a.mailSender.Send(ctx, payload); err != nil {
			return err
		}
		a.logger.Info("queued mail delivered",
			"kind", payload.Kind,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	if err := a.mailConsumer.StartConsumingMail(workerCtx, handle); err != nil {
		return fmt.Errorf("start mail consumer: %w", err)
	}
	a.logger.Info("worker started, waiting for mail")

	<-ctx.Done()
	a.logger.Info("shutdown signal received, stopping worker")
	return nil
}
