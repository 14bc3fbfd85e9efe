// Package notify sends outbound notifications when visitors reach out or
// submit an intake ticket.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
)

// Kind labels what triggered a notification.
type Kind string

const (
	KindContact Kind = "contact"
	KindTicket  Kind = "ticket"
)

// Notification carries the contact fields of a visitor.
type Notification struct {
	Kind    Kind   `json:"kind"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message,omitempty"`
}

// Normalize trims fields and fills in defaults.
func (n *Notification) Normalize() {
	n.Name = strings.TrimSpace(n.Name)
	n.Email = strings.TrimSpace(n.Email)
	n.Phone = strings.TrimSpace(n.Phone)
	n.Company = strings.TrimSpace(n.Company)
	n.Subject = strings.TrimSpace(n.Subject)
	n.Message = strings.TrimSpace(n.Message)
	if n.Kind == "" {
		n.Kind = KindContact
	}
	if n.Subject == "" {
		n.Subject = fmt.Sprintf("New %s from %s", n.Kind, n.Name)
	}
}

// Validate ensures required fields are present.
func (n Notification) Validate() error {
	if n.Name == "" {
		return errors.New("name is required")
	}
	if n.Email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(n.Email); err != nil {
		return errors.New("email is not a valid address")
	}
	return nil
}

// Body renders the plain-text message body.
func (n Notification) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Kind: %s\n", n.Kind)
	fmt.Fprintf(&b, "Name: %s\n", n.Name)
	fmt.Fprintf(&b, "Email: %s\n", n.Email)
	if n.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", n.Phone)
	}
	if n.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", n.Company)
	}
	if n.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", n.Message)
	}
	return b.String()
}

// Notifier delivers notifications.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

// Send logs n at info level.
func (l LogNotifier) Send(ctx context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification",
		"kind", n.Kind,
		"name", n.Name,
		"email", n.Email,
		"subject", n.Subject,
	)
	return nil
}
