package sender

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
)

const defaultSendTimeout = 10 * time.Second

var ErrSenderDisabled = errors.New("email sender is not configured")

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMTPEmailSender delivers mail over a small pool of SMTP connections.
type SMTPEmailSender struct {
	pool *email.Pool
	from string
}

func NewSMTPEmailSender(host, port, user, pass, from string, poolSize int) (*SMTPEmailSender, error) {
	if poolSize <= 0 {
		poolSize = 1
	}
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	pool, err := email.NewPool(fmt.Sprintf("%s:%s", host, port), poolSize, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp pool: %w", err)
	}
	return &SMTPEmailSender{pool: pool, from: from}, nil
}

func (s *SMTPEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	e := email.NewEmail()
	e.From = s.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	return s.pool.Send(e, sendTimeout(ctx))
}

func (s *SMTPEmailSender) Close() {
	s.pool.Close()
}

func sendTimeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 {
			return d
		}
		return time.Millisecond
	}
	return defaultSendTimeout
}

// NoopSender is used when SMTP is not configured. Every send fails with
// ErrSenderDisabled so the attempt still shows up in the email log.
type NoopSender struct{}

func (NoopSender) SendEmail(context.Context, string, string, string) error {
	return ErrSenderDisabled
}
