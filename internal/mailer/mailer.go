package mailer

import (
	"context"
	"fmt"
	"html"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/induskill/marketplace-api/internal/config"
	"github.com/scorredoira/email"
	"go.uber.org/zap"
)

// Message is an outbound HTML email
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Mailer sends email
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendFunc matches email.Send
type SendFunc func(addr string, auth smtp.Auth, m *email.Message) error

// SMTPMailer sends mail through the configured SMTP relay. With no host
// configured it logs and drops messages.
type SMTPMailer struct {
	cfg    *config.MailConfig
	send   SendFunc
	logger *zap.Logger
}

func NewSMTPMailer(cfg *config.MailConfig, logger *zap.Logger) *SMTPMailer {
	return NewSMTPMailerWithSender(cfg, email.Send, logger)
}

// NewSMTPMailerWithSender replaces the transport, mainly for tests
func NewSMTPMailerWithSender(cfg *config.MailConfig, send SendFunc, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: send, logger: logger}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.cfg.Enabled() {
		m.logger.Info("Email host is not configured, skipping send",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
		)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	em := email.NewHTMLMessage(msg.Subject, msg.HTMLBody)
	em.From = mail.Address{Name: m.cfg.FromName, Address: m.cfg.FromAddress}
	em.To = []string{to.Address}

	m.logger.Info("Sending email", zap.String("to", to.Address), zap.String("subject", msg.Subject))
	if err := m.send(m.cfg.Addr(), auth, em); err != nil {
		m.logger.Error("Error sending email", zap.String("to", to.Address), zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// PlainTextToHTML escapes text and keeps its line breaks
func PlainTextToHTML(text string) string {
	escaped := html.EscapeString(strings.TrimSpace(text))
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

// ReplyBody renders a contact reply quoting the visitor's original message
func ReplyBody(recipientName, reply, original, siteName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hi %s,</p>", html.EscapeString(recipientName))
	b.WriteString(PlainTextToHTML(reply))
	fmt.Fprintf(&b, "<p>Regards,<br>%s</p>", html.EscapeString(siteName))
	b.WriteString(`<hr><blockquote style="color:#666">`)
	b.WriteString(PlainTextToHTML(original))
	b.WriteString("</blockquote>")
	return b.String()
}
