package email

import (
	"time"

	"github.com/Alijeyrad/mindbook_backend/config"
)

type Config struct {
	Enabled bool
	From    string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	// SMTPUseTLS selects implicit TLS on port 465; other ports use STARTTLS.
	SMTPUseTLS  bool
	SMTPTimeout time.Duration

	// AppName and BaseURL end up in message bodies.
	AppName string
	BaseURL string
}

func DefaultConfig() Config {
	return Config{
		SMTPPort:    587,
		SMTPUseTLS:  true,
		SMTPTimeout: 30 * time.Second,
		AppName:     "Mindbook",
	}
}

func FromCentralConfig(c config.EmailConfig) Config {
	out := DefaultConfig()
	out.Enabled = c.Enabled
	out.From = c.From
	out.BaseURL = c.BaseURL
	out.SMTPHost = c.SMTP.Host
	out.SMTPUsername = c.SMTP.Username
	out.SMTPPassword = c.SMTP.Password
	out.SMTPUseTLS = c.SMTP.UseTLS
	if c.SMTP.Port > 0 {
		out.SMTPPort = c.SMTP.Port
	}
	if c.SMTP.TimeoutSeconds > 0 {
		out.SMTPTimeout = time.Duration(c.SMTP.TimeoutSeconds) * time.Second
	}
	return out
}
