package infra

import (
	"errors"
	"fmt"
	"net/smtp"

	"github.com/bfrpaulondev/fitness-api/internal/config"

	"github.com/jordan-wright/email"
)

// ErrSMTPDisabled is returned when no SMTP host is configured.
var ErrSMTPDisabled = errors.New("mailer: SMTP no configurado")

// Mailer wraps SMTP configuration for sending budget alert emails.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// SendBudgetAlert sends a plain-text alert to one recipient.
func (m *Mailer) SendBudgetAlert(to, subject, body string) error {
	if m.host == "" {
		return ErrSMTPDisabled
	}
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}
