package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"
)

// Config holds SMTP settings. Any SMTP relay with PLAIN auth works (Brevo, SES, Mailgun).
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	// From defaults to Username.
	From string
}

// EmailService sends plain credential emails via SMTP.
type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// Message is one outgoing email. Text is rendered as preformatted HTML.
type Message struct {
	To      string
	Subject string
	Text    string
}

func NewEmailService(cfg Config) *EmailService {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	port := cfg.Port
	if port == "" {
		port = "587"
	}
	return &EmailService{
		host:     cfg.Host,
		port:     port,
		username: cfg.Username,
		password: cfg.Password,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

const messageTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <pre style="white-space: pre-wrap; font-family: inherit;">{{.Text}}</pre>
        <p style="color: #888; font-size: 12px;">This message was sent by the HireMatrix recruitment portal.</p>
    </div>
</body>
</html>`

var tmpl = template.Must(template.New("message").Parse(messageTemplate))

// Send delivers msg. ctx is checked before dialing; net/smtp has no context support.
func (s *EmailService) Send(ctx context.Context, msg Message) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email: SMTP not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(msg.To, "\r\n") || strings.ContainsAny(msg.Subject, "\r\n") {
		return fmt.Errorf("email: header values must not contain line breaks")
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, msg); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	raw := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.from,
		msg.To,
		mime.QEncoding.Encode("utf-8", msg.Subject),
		body.String(),
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.sendMail(addr, auth, s.from, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s != nil && s.host != "" && s.username != "" && s.password != ""
}
