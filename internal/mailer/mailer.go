// Package mailer sends outbound notification email over SMTP. Sending is
// best-effort: callers log failures and never fail the originating request.
package mailer

import (
	"context"
	"fmt"

	"techstore/internal/config"
	"techstore/internal/domain"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Mailer wraps an SMTP client for support notifications. A nil *Mailer is a
// valid no-op sender, used when SMTP is not configured.
type Mailer struct {
	client  *mail.Client
	from    string
	support string
	logger  *zap.Logger
}

// New creates a Mailer from SMTP configuration. It returns (nil, nil) when no
// SMTP host is configured, which disables outbound email.
func New(cfg config.SMTPConfig, logger *zap.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, nil
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &Mailer{
		client:  client,
		from:    cfg.From,
		support: cfg.SupportAddress,
		logger:  logger,
	}, nil
}

// SendContactNotification forwards a contact submission to the support inbox
func (m *Mailer) SendContactNotification(ctx context.Context, message *domain.ContactMessage) error {
	if m == nil || m.support == "" {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(m.support); err != nil {
		return fmt.Errorf("invalid support address: %w", err)
	}
	if err := msg.ReplyTo(message.Email); err != nil {
		return fmt.Errorf("invalid reply-to address: %w", err)
	}

	msg.Subject(fmt.Sprintf("[Contact] %s", message.Subject))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"From: %s <%s>\n\n%s\n\nMessage ID: %s",
		message.Name, message.Email, message.Message, message.ID,
	))

	m.logger.Info("Sending contact notification email",
		zap.String("message_id", message.ID.String()),
		zap.String("to", m.support),
	)

	return m.client.DialAndSendWithContext(ctx, msg)
}
