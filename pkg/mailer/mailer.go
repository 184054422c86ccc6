package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/roblesmun/roblesmun-api/pkg/config"
)

// Mailer sends plain-text notification email over SMTP. An unset host or
// sender address leaves the mailer unconfigured; callers are expected to
// check IsConfigured and treat sending as optional.
type Mailer struct {
	cfg config.MailConfig
	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New constructs a mailer from configuration.
func New(cfg config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// IsConfigured reports whether outbound email can be attempted.
func (m *Mailer) IsConfigured() bool {
	return m.cfg.Host != "" && m.cfg.From != ""
}

// Send delivers a single plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	if !m.IsConfigured() {
		return fmt.Errorf("mailer is not configured")
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("recipient address is empty")
	}

	headers := []string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
	}
	if m.cfg.ReplyTo != "" {
		headers = append(headers, "Reply-To: "+m.cfg.ReplyTo)
	}
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body + "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := m.send(addr, auth, m.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
