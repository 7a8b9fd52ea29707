package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arsmn/go-smsir/smsir"
	"github.com/nyaruka/phonenumbers"

	"github.com/Alijeyrad/mindbook_backend/config"
)

var (
	ErrInvalidPhone    = errors.New("invalid phone number")
	ErrMissingTemplate = errors.New("sms template id is required")
)

// Sender is the subset used by the notification worker.
type Sender interface {
	SendReminder(ctx context.Context, phone string, params map[string]string) error
	Enabled() bool
}

// Client sends templated messages through sms.ir. A disabled client accepts
// every call and sends nothing.
type Client struct {
	client             *smsir.Client
	enabled            bool
	reminderTemplateID string
	region             string
}

// NewFromConfig builds a client. region is the default region used when a
// phone number has no country prefix.
func NewFromConfig(cfg config.SMSConfig, region string) (*Client, error) {
	if region == "" {
		region = "IR"
	}
	if !cfg.Enabled {
		return &Client{enabled: false, region: region}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}

	return &Client{
		client:             smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey),
		enabled:            true,
		reminderTemplateID: cfg.SMSIR.ReminderTemplateID,
		region:             region,
	}, nil
}

func (c *Client) Enabled() bool {
	return c.enabled
}

// Normalize returns phone in E.164 form.
func (c *Client) Normalize(phone string) (string, error) {
	return Normalize(phone, c.region)
}

func Normalize(phone, region string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", ErrInvalidPhone
	}
	num, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// SendReminder sends the session reminder template with the given parameters.
func (c *Client) SendReminder(ctx context.Context, phone string, params map[string]string) error {
	return c.send(ctx, phone, c.reminderTemplateID, params)
}

func (c *Client) send(ctx context.Context, phone, templateID string, params map[string]string) error {
	if !c.enabled {
		return nil
	}
	if templateID == "" {
		return ErrMissingTemplate
	}

	mobile, err := c.Normalize(phone)
	if err != nil {
		return err
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     mobile,
		TemplateID: templateID,
	}
	for k, v := range params {
		req.Parameters = append(req.Parameters, smsir.UltraFastParameter{Key: k, Value: v})
	}

	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}
	return nil
}
