package notify

import (
	"context"
	"fmt"
	"os"
	"time"

	gomail "gopkg.in/gomail.v2"
)

const (
	smtpHost    = "smtp.gmail.com"
	smtpPort    = 587
	sendTimeout = 30 * time.Second
)

// SMTPSender sends email through an SMTP relay using app-password
// auth, optionally attaching the intake form PDF.
type SMTPSender struct {
	from     string
	password string
	dialer   *gomail.Dialer
	timeout  time.Duration
}

func NewSMTPSender(address, appPassword string) *SMTPSender {
	return &SMTPSender{
		from:     address,
		password: appPassword,
		dialer:   gomail.NewDialer(smtpHost, smtpPort, address, appPassword),
		timeout:  sendTimeout,
	}
}

func (s *SMTPSender) Configured() bool {
	return s.from != "" && s.password != ""
}

func (s *SMTPSender) Send(ctx context.Context, to string, msg Message) DeliveryResult {
	if !s.Configured() {
		return notConfigured("Email credentials not configured")
	}
	if to == "" {
		return failed("Email error: no destination address")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if msg.AttachmentPath != "" {
		if _, err := os.Stat(msg.AttachmentPath); err == nil {
			m.Attach(msg.AttachmentPath)
		}
	}

	// gomail has no context support, so the send runs in a goroutine
	// and loses the race against the timeout instead of stalling the
	// workflow.
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return failed(fmt.Sprintf("Email error: %v", err))
		}
		return sent("Email sent")
	case <-time.After(s.timeout):
		return failed("Email error: send timed out")
	case <-ctx.Done():
		return failed(fmt.Sprintf("Email error: %v", ctx.Err()))
	}
}

var _ EmailSender = (*SMTPSender)(nil)
