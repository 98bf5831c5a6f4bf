package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/rahmatfauzi/modular-backend/pkg/logger"
)

// Mailer sends transactional mail. The password-reset flow is the only
// consumer today.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

// SMTPSender delivers through a plain SMTP relay.
type SMTPSender struct {
	addr        string
	from        string
	subject     string
	urlTemplate string
}

// NewSMTPSender builds a sender; urlTemplate must contain a %s placeholder
// that receives the reset token.
func NewSMTPSender(host string, port int, from, subject, urlTemplate string) *SMTPSender {
	return &SMTPSender{
		addr:        fmt.Sprintf("%s:%d", host, port),
		from:        from,
		subject:     subject,
		urlTemplate: urlTemplate,
	}
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, to, token string) error {
	resetURL := fmt.Sprintf(s.urlTemplate, token)
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n"+
			"To reset your password, open the link below:\r\n\r\n%s\r\n",
		s.from, to, s.subject, resetURL)

	if err := smtp.SendMail(s.addr, nil, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender logs instead of sending, the development fallback when no SMTP
// host is configured. The token itself is never logged.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(lg *slog.Logger) *LogSender {
	if lg == nil {
		lg = logger.L()
	}
	return &LogSender{logger: lg}
}

func (s *LogSender) SendPasswordReset(ctx context.Context, to, token string) error {
	s.logger.Info("password reset mail (log sender, not delivered)", "to", to)
	return nil
}
