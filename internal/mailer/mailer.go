// Package mailer sends templated transactional mail over SMTP.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/smtp"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const smtpTimeout = 30 * time.Second

type SMTPMailer struct {
	host      string
	port      int
	username  string
	password  string
	from      string
	templates *template.Template
	logger    *slog.Logger
}

func NewSMTPMailer(host string, port int, username, password, from string, logger *slog.Logger) (*SMTPMailer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	return &SMTPMailer{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		from:      from,
		templates: templates,
		logger:    logger,
	}, nil
}

// Send renders the named template with data and delivers the result to a
// single recipient.
func (m *SMTPMailer) Send(ctx context.Context, to string, subject string, name string, data any) error {
	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, name+".tmpl", data); err != nil {
		return fmt.Errorf("render template %s: %w", name, err)
	}
	return m.send(ctx, to, subject, body.String())
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	ctx, cancel := context.WithTimeout(ctx, smtpTimeout)
	defer cancel()

	dialer := net.Dialer{Timeout: smtpTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("create SMTP client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("STARTTLS: %w", err)
		}
	} else if m.port != 25 && m.port != 1025 {
		return fmt.Errorf("STARTTLS not available on port %d", m.port)
	}

	if m.username != "" && m.password != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication: %w", err)
		}
	}

	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("SMTP MAIL command: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT command: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA command: %w", err)
	}
	if _, err := wc.Write([]byte(m.buildMessage(to, subject, body))); err != nil {
		wc.Close()
		return fmt.Errorf("write mail body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close mail body: %w", err)
	}

	if err := client.Quit(); err != nil {
		m.logger.Warn("smtp QUIT failed", slog.String("error", err.Error()))
	}
	return nil
}

func (m *SMTPMailer) buildMessage(to, subject, body string) string {
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"utf-8\"\r\n\r\n%s",
		m.from, to, subject, body)
}
