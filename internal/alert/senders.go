package alert

import (
	"context"
	"log/slog"
)

// truncateAt bounds how much of a message body lands in the log.
const truncateAt = 200

// LogEmailSender is a development email channel that logs instead of
// delivering. Swap in a real provider implementation behind
// service.EmailSender to go live.
type LogEmailSender struct{}

// NewLogEmailSender creates the logging email channel.
func NewLogEmailSender() *LogEmailSender {
	return &LogEmailSender{}
}

// SendEmail logs the outgoing email.
func (s *LogEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	slog.Info("EMAIL",
		"to", to,
		"subject", subject,
		"body", truncate(body, truncateAt))
	return nil
}

// LogWhatsAppSender is a development WhatsApp channel that logs instead of
// delivering.
type LogWhatsAppSender struct{}

// NewLogWhatsAppSender creates the logging WhatsApp channel.
func NewLogWhatsAppSender() *LogWhatsAppSender {
	return &LogWhatsAppSender{}
}

// SendMessage logs the outgoing message.
func (s *LogWhatsAppSender) SendMessage(_ context.Context, to, body string) error {
	slog.Info("WHATSAPP",
		"to", to,
		"body", truncate(body, truncateAt))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
