package gateway

import (
	"context"
	"errors"

	"hirematrix-backend/internal/domain"
	"hirematrix-backend/pkg/email"
)

const emailService = "notification-smtp"

type mailSender interface {
	IsConfigured() bool
	Send(ctx context.Context, msg email.Message) error
}

// EmailNotifier delivers credential notifications over SMTP.
type EmailNotifier struct {
	sender mailSender
}

func NewEmailNotifier(sender mailSender) *EmailNotifier {
	return &EmailNotifier{sender: sender}
}

func (n *EmailNotifier) Enabled() bool {
	return n != nil && n.sender != nil && n.sender.IsConfigured()
}

func (n *EmailNotifier) Notify(ctx context.Context, msg domain.Notification) error {
	if !n.Enabled() {
		return unavailable(emailService, 0, "smtp not configured")
	}
	if err := n.sender.Send(ctx, email.Message{To: msg.To, Subject: msg.Subject, Text: msg.Text}); err != nil {
		return unavailable(emailService, 0, err.Error())
	}
	return nil
}

// NotifierChain tries each enabled notifier in order and stops at the first
// successful delivery.
type NotifierChain []domain.CredentialNotifier

func (c NotifierChain) Enabled() bool {
	for _, n := range c {
		if n.Enabled() {
			return true
		}
	}
	return false
}

func (c NotifierChain) Notify(ctx context.Context, msg domain.Notification) error {
	var errs []error
	for _, n := range c {
		if !n.Enabled() {
			continue
		}
		err := n.Notify(ctx, msg)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return unavailable("notification", 0, "no channel configured")
	}
	return errors.Join(errs...)
}
