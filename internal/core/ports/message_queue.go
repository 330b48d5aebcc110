package ports

import (
	"context"

	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
)

// MailPublisher публикует письма в очередь, отправкой занимается воркер
type MailPublisher interface {
	PublishMail(ctx context.Context, payload payloads.MailPayload) error
}

// MailConsumer определяет методы для потребления писем из очереди
type MailConsumer interface {
	// StartConsumingMail начинает прослушивание очереди,
	// handler вызывается для каждого полученного письма
	StartConsumingMail(ctx context.Context, handler func(context.Context, payloads.MailPayload) error) error
}

// Mailer отправляет письмо (сразу по SMTP или через очередь)
type Mailer interface {
	Send(ctx context.Context, msg payloads.MailPayload) error
}
