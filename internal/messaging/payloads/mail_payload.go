package payloads

// MailPayload представляет письмо, которое нужно отправить.
// Используется и напрямую SMTP-отправителем, и как тело сообщения в очереди RabbitMQ.
type MailPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	// Kind помечает источник письма в логах: "share", "password_reset"
	Kind string `json:"kind,omitempty"`
}
