// Package mailer sends transactional email over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/maisonaurelle/boutique-backend/pkg/config"
	"github.com/maisonaurelle/boutique-backend/pkg/logger"
)

// Message is a single outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender delivers messages. Implemented by Client and by test doubles.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client sends mail through the configured SMTP relay.
type Client struct {
	smtp   *mail.Client
	from   string
	logger *logger.Logger
}

// New validates the mail configuration and builds an SMTP client.
func New(cfg config.MailConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("mail host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("mail from address is required")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	smtp, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("building smtp client: %w", err)
	}

	return &Client{smtp: smtp, from: cfg.From, logger: logg}, nil
}

// Send delivers a single message. The body may be HTML, plain text, or both.
func (c *Client) Send(ctx context.Context, msg Message) error {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return errors.New("recipient is required")
	}

	m := mail.NewMsg()
	if err := m.From(c.from); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}
	m.Subject(msg.Subject)
	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.TextBody)
	}

	if c.logger != nil {
		c.logger.Info(c.logger.WithField(ctx, "subject", msg.Subject), "sending email")
	}
	if err := c.smtp.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}
