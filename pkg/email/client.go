package email

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/Alijeyrad/mindbook_backend/config"
)

// Sender is what the notification dispatcher depends on.
type Sender interface {
	Send(ctx context.Context, m Message) error
	Enabled() bool
}

type Client struct {
	cfg Config
}

func NewFromCentral(cfg config.EmailConfig) (*Client, error) {
	return New(FromCentralConfig(cfg))
}

func New(cfg Config) (*Client, error) {
	if cfg.Enabled && strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil, ErrInvalidMessage{Reason: "smtp host is required when email is enabled"}
	}
	if cfg.Enabled && strings.TrimSpace(cfg.From) == "" {
		return nil, ErrInvalidMessage{Reason: "from address is required when email is enabled"}
	}
	return &Client{cfg: cfg}, nil
}

func (c *Client) Enabled() bool { return c.cfg.Enabled }

// Send dials per message. gomail has no context support, so the dial runs in
// a goroutine and is abandoned when ctx or the SMTP timeout ends first.
func (c *Client) Send(ctx context.Context, m Message) error {
	if !c.cfg.Enabled {
		return ErrDisabled{}
	}
	msg, err := c.compose(m)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- c.dialer().DialAndSend(msg) }()

	wait := c.cfg.SMTPTimeout
	if wait <= 0 {
		wait = DefaultConfig().SMTPTimeout
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return ErrSend{Provider: "smtp", Err: err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrSend{Provider: "smtp", Err: context.DeadlineExceeded}
	}
}

func (c *Client) dialer() *gomail.Dialer {
	d := gomail.NewDialer(c.cfg.SMTPHost, c.cfg.SMTPPort, c.cfg.SMTPUsername, c.cfg.SMTPPassword)
	// port 465 speaks TLS from the first byte; 587 upgrades with STARTTLS
	d.SSL = c.cfg.SMTPUseTLS && c.cfg.SMTPPort == 465
	d.TLSConfig = &tls.Config{ServerName: c.cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	return d
}

func (c *Client) compose(m Message) (*gomail.Message, error) {
	to := recipients(m.To)
	switch {
	case len(to) == 0:
		return nil, ErrInvalidMessage{Reason: "no recipients"}
	case strings.TrimSpace(m.Subject) == "":
		return nil, ErrInvalidMessage{Reason: "subject is required"}
	case strings.TrimSpace(m.TextBody) == "" && strings.TrimSpace(m.HTMLBody) == "":
		return nil, ErrInvalidMessage{Reason: "body is required"}
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", c.cfg.From)
	if len(to) == 1 {
		msg.SetHeader("To", to[0])
	} else {
		msg.SetHeader("To", c.cfg.From)
		msg.SetHeader("Bcc", to...)
	}
	msg.SetHeader("Subject", strings.TrimSpace(m.Subject))

	if m.TextBody != "" {
		msg.SetBody("text/plain", m.TextBody)
		if m.HTMLBody != "" {
			msg.AddAlternative("text/html", m.HTMLBody)
		}
	} else {
		msg.SetBody("text/html", m.HTMLBody)
	}
	return msg, nil
}

// recipients trims and de-duplicates addresses.
func recipients(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if _, dup := seen[s]; s == "" || dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
