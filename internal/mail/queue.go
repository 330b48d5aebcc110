package mail

import (
	"context"

	"github.com/GoArmGo/BlogApp/internal/core/ports"
	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
	"github.com/GoArmGo/BlogApp/internal/metrics"
)

// QueueMailer откладывает отправку: письмо уходит в очередь, его отправляет воркер.
type QueueMailer struct {
	publisher ports.MailPublisher
}

func NewQueueMailer(publisher ports.MailPublisher) *QueueMailer {
	return &QueueMailer{publisher: publisher}
}

func (m *QueueMailer) Send(ctx context.Context, payload payloads.MailPayload) error {
	if err := m.publisher.PublishMail(ctx, payload); err != nil {
		metrics.MailsSent.WithLabelValues(payload.Kind, "error").Inc()
		return err
	}
	metrics.MailsSent.WithLabelValues(payload.Kind, "queued").Inc()
	return nil
}
