package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Mailer is the outbound email collaborator. Both sends run synchronously on
// the request path; callers decide what to do with a failure.
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, to, username string) error
	SendPasswordResetEmail(ctx context.Context, to, resetToken string) error
}

// SMTPMailer delivers through a plain SMTP relay with STARTTLS.
type SMTPMailer struct {
	host          string
	port          int
	username      string
	password      string
	sender        string
	frontendURL   string
	expireMinutes int
}

func NewSMTPMailer(host string, port int, username, password, sender, frontendURL string, expireMinutes int) *SMTPMailer {
	return &SMTPMailer{
		host:          host,
		port:          port,
		username:      username,
		password:      password,
		sender:        sender,
		frontendURL:   frontendURL,
		expireMinutes: expireMinutes,
	}
}

func renderTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s",
		m.sender, to, subject, htmlBody)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	return smtp.SendMail(addr, auth, m.sender, []string{to}, []byte(msg))
}

func (m *SMTPMailer) SendWelcomeEmail(ctx context.Context, to, username string) error {
	body, err := renderTemplate("welcome.html", map[string]interface{}{
		"Username": username,
	})
	if err != nil {
		return err
	}
	return m.send(to, "¡Bienvenido a nuestra plataforma!", body)
}

func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, to, resetToken string) error {
	resetURL := fmt.Sprintf("%s/auth/password-reset?token=%s", m.frontendURL, resetToken)
	body, err := renderTemplate("password_reset.html", map[string]interface{}{
		"ResetURL":          resetURL,
		"ExpirationMinutes": m.expireMinutes,
	})
	if err != nil {
		return err
	}
	return m.send(to, "Restablecimiento de contraseña", body)
}

// LogMailer is the development implementation: it only logs what would have
// been sent.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendWelcomeEmail(ctx context.Context, to, username string) error {
	m.logger.InfoContext(ctx, "welcome email", "to", to, "username", username)
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(ctx context.Context, to, resetToken string) error {
	m.logger.InfoContext(ctx, "password reset email", "to", to, "token", resetToken)
	return nil
}
