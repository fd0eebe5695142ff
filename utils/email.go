package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer delivers a multipart (text + html) email.
type Mailer interface {
	Send(to, subject, textBody, htmlBody string) error
}

// EmailConfig holds email configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends mail through an SMTP relay using gomail
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds a mailer from configuration. The dialer connects lazily
// on every Send, so a misconfigured relay only surfaces when mail is sent.
func NewSMTPMailer(cfg EmailConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

// Send implements Mailer
func (m *SMTPMailer) Send(to, subject, textBody, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("recipient address is empty")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)
	if htmlBody != "" {
		msg.AddAlternative("text/html", htmlBody)
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	LogInfo("Email %q sent to %s", subject, to)
	return nil
}

// LogMailer writes mail to the log instead of sending it. It stands in for
// SMTPMailer when no relay is configured.
type LogMailer struct{}

// Send implements Mailer
func (LogMailer) Send(to, subject, textBody, htmlBody string) error {
	if to == "" {
		return fmt.Errorf("recipient address is empty")
	}
	LogInfo("Email %q to %s not sent (no SMTP relay configured):\n%s", subject, to, textBody)
	return nil
}
