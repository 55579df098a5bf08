package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/foodcircle/foodcircle-backend/pkg/config"
	pkgerrors "github.com/foodcircle/foodcircle-backend/pkg/errors"
)

// Sender delivers plain-text email. Callers treat delivery as best effort.
type Sender interface {
	Send(to, subject, body string) error
}

// Mailer sends mail over SMTP using the configured relay.
type Mailer struct {
	cfg  config.SMTPConfig
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// New constructs a Sender. Returns a nil interface when SMTP is not
// configured so callers comparing against nil skip delivery entirely.
func New(cfg config.SMTPConfig) Sender {
	if !cfg.Enabled() {
		return nil
	}
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// Send delivers a single plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	if m == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "mailer not configured")
	}
	recipient := strings.TrimSpace(to)
	if recipient == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}

	msg := buildMessage(m.cfg.From, recipient, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(addr, auth, m.cfg.From, []string{recipient}, msg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send mail")
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
