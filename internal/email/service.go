package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/redmonkez12/wasteless-api/internal/logging"
	"github.com/redmonkez12/wasteless-api/templates"
)

// Notice is the data shared by every notification template.
type Notice struct {
	To            string
	RecipientName string
	OtherName     string
	FoodName      string
	Link          string
}

type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	frontendURL  string
	requested    *template.Template
	fulfilled    *template.Template
	send         func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, frontendURL string) (*Service, error) {
	requested, err := parse("email/requested.html")
	if err != nil {
		return nil, err
	}
	fulfilled, err := parse("email/fulfilled.html")
	if err != nil {
		return nil, err
	}

	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    smtpUser,
		frontendURL:  frontendURL,
		requested:    requested,
		fulfilled:    fulfilled,
		send:         smtp.SendMail,
	}, nil
}

func parse(name string) (*template.Template, error) {
	t, err := template.ParseFS(templates.EmailFS, "email/layout.html", name)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return t, nil
}

// SendRequestNotification tells a donor that someone requested their listing.
// This method is designed to be called in a goroutine
func (s *Service) SendRequestNotification(ctx context.Context, n Notice) error {
	return s.deliver(ctx, s.requested, fmt.Sprintf("%s requested %s", n.OtherName, n.FoodName), n)
}

// SendFulfilledNotification tells a requester that the donor handed the food over.
// This method is designed to be called in a goroutine
func (s *Service) SendFulfilledNotification(ctx context.Context, n Notice) error {
	return s.deliver(ctx, s.fulfilled, fmt.Sprintf("Your request for %s was fulfilled", n.FoodName), n)
}

func (s *Service) deliver(ctx context.Context, t *template.Template, subject string, n Notice) error {
	logger := logging.GetLoggerFromContext(ctx)

	if n.Link == "" {
		n.Link = s.frontendURL + "/history"
	}

	body, err := render(t, n)
	if err != nil {
		logger.Error("failed to render email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(n.To, subject, body); err != nil {
		logger.Error("failed to send notification email", "email", n.To, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("notification email sent", "email", n.To, "subject", subject)
	return nil
}

func render(t *template.Template, n Notice) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", n); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	// Build message
	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return s.send(addr, auth, s.fromEmail, []string{to}, msg)
}

// Noop drops every notification. Used when SMTP is not configured.
type Noop struct{}

func (Noop) SendRequestNotification(ctx context.Context, n Notice) error {
	logging.GetLoggerFromContext(ctx).Debug("smtp disabled, request notification skipped", "email", n.To)
	return nil
}

func (Noop) SendFulfilledNotification(ctx context.Context, n Notice) error {
	logging.GetLoggerFromContext(ctx).Debug("smtp disabled, fulfilled notification skipped", "email", n.To)
	return nil
}
