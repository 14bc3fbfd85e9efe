package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPOptions configures the mail relay.
type SMTPOptions struct {
	Addr     string
	Username string
	Password string
	From     string
	To       []string
}

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier mails notifications to the agency inbox.
type SMTPNotifier struct {
	opts     SMTPOptions
	sendMail SendMailFunc
	now      func() time.Time
}

// NewSMTPNotifier validates opts and returns a notifier using smtp.SendMail.
func NewSMTPNotifier(opts SMTPOptions) (*SMTPNotifier, error) {
	if opts.Addr == "" {
		return nil, errors.New("smtp address is required")
	}
	if opts.From == "" || len(opts.To) == 0 {
		return nil, errors.New("smtp sender and recipient are required")
	}
	return &SMTPNotifier{opts: opts, sendMail: smtp.SendMail, now: time.Now}, nil
}

// WithSendMail swaps the transport, used by tests.
func (s *SMTPNotifier) WithSendMail(fn SendMailFunc) *SMTPNotifier {
	s.sendMail = fn
	return s
}

// Send delivers n. smtp.SendMail has no context support, so the send runs in
// a goroutine and ctx only bounds how long the caller waits.
func (s *SMTPNotifier) Send(ctx context.Context, n Notification) error {
	var auth smtp.Auth
	if s.opts.Username != "" {
		host, _, err := net.SplitHostPort(s.opts.Addr)
		if err != nil {
			return fmt.Errorf("parse smtp addr: %w", err)
		}
		auth = smtp.PlainAuth("", s.opts.Username, s.opts.Password, host)
	}

	msg := s.message(n)
	done := make(chan error, 1)
	go func() {
		done <- s.sendMail(s.opts.Addr, auth, s.opts.From, s.opts.To, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send mail: %w", ctx.Err())
	}
}

func (s *SMTPNotifier) message(n Notification) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.opts.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(s.opts.To, ", "))
	if n.Email != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", sanitizeHeader(n.Email))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(n.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(n.Body(), "\n", "\r\n"))
	return []byte(b.String())
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
