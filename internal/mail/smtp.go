// Package mail отправляет письма сайта: напрямую по SMTP или через очередь RabbitMQ.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/BlogApp/internal/config"
	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
	"github.com/GoArmGo/BlogApp/internal/metrics"
	gomail "github.com/wneessen/go-mail"
)

// SMTPMailer отправляет письма через SMTP-сервер, реализует ports.Mailer.
type SMTPMailer struct {
	client *gomail.Client
	from   string
	logger *slog.Logger
}

// NewSMTPMailer создает отправителя. Авторизация включается, только если задан SMTP_USERNAME.
func NewSMTPMailer(cfg *config.Config, logger *slog.Logger) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.SMTP.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
	}
	if cfg.SMTP.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.SMTP.Username),
			gomail.WithPassword(cfg.SMTP.Password),
		)
	}

	client, err := gomail.NewClient(cfg.SMTP.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.SMTP.From, logger: logger}, nil
}

// Send собирает письмо и отправляет его одним SMTP-сеансом.
func (m *SMTPMailer) Send(ctx context.Context, payload payloads.MailPayload) error {
	start := time.Now()

	msg, err := BuildMessage(m.from, payload)
	if err != nil {
		metrics.MailsSent.WithLabelValues(payload.Kind, "invalid").Inc()
		return err
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		metrics.MailsSent.WithLabelValues(payload.Kind, "error").Inc()
		m.logger.Error("failed to send mail", "kind", payload.Kind, "error", err)
		return fmt.Errorf("send mail: %w", err)
	}

	metrics.MailsSent.WithLabelValues(payload.Kind, "sent").Inc()
	m.logger.Info("mail sent",
		"kind", payload.Kind,
		"recipients", len(payload.To),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// BuildMessage собирает текстовое письмо от from.
func BuildMessage(from string, payload payloads.MailPayload) (*gomail.Msg, error) {
	if len(payload.To) == 0 {
		return nil, fmt.Errorf("mail has no recipients")
	}

	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := msg.To(payload.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(payload.Subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(gomail.TypeTextPlain, payload.Body)
	return msg, nil
}
