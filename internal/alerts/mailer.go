package alerts

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sudo-init-do/coderr/internal/config"
)

// Mailer delivers a rendered email.
type Mailer interface {
	Send(to, subject, body string) error
}

// NewMailer picks Plunk or SMTP from the configuration.
func NewMailer(cfg *config.Config) (Mailer, error) {
	if cfg.MailProvider == "plunk" || (cfg.MailProvider == "" && cfg.PlunkAPIKey != "") {
		return NewPlunkMailer(cfg.PlunkAPIURL, cfg.PlunkAPIKey, cfg.PlunkFrom, cfg.MailReplyTo)
	}
	m := &SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		ReplyTo:  cfg.MailReplyTo,
	}
	if m.Host == "" || m.Port == "" || m.Username == "" || m.Password == "" || m.From == "" {
		return nil, fmt.Errorf("smtp not configured: set SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM (or set MAIL_PROVIDER=plunk)")
	}
	return m, nil
}

type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	ReplyTo  string
}

func (m *SMTPMailer) message(to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	if m.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", m.ReplyTo)
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	contentType := "text/plain"
	lb := strings.ToLower(body)
	if strings.Contains(lb, "<html") || strings.Contains(lb, "<body") || strings.Contains(lb, "<!doctype html") {
		contentType = "text/html"
	}
	fmt.Fprintf(&b, "Content-Type: %s; charset=\"utf-8\"\r\n", contentType)
	b.WriteString("\r\n" + body + "\r\n")
	return b.String()
}

// Send delivers a plain text or HTML email over implicit TLS.
func (m *SMTPMailer) Send(to, subject, body string) error {
	conn, err := tls.Dial("tcp", m.Host+":"+m.Port, &tls.Config{ServerName: m.Host})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Close()

	if err := c.Auth(smtp.PlainAuth("", m.Username, m.Password, m.Host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(m.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := wc.Write([]byte(m.message(to, subject, body))); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return c.Quit()
}
