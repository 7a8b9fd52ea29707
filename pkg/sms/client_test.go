package sms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindbook_backend/config"
)

func TestNewFromConfig(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		c, err := NewFromConfig(config.SMSConfig{}, "")
		require.NoError(t, err)
		assert.False(t, c.Enabled())
	})

	t.Run("enabled without key", func(t *testing.T) {
		_, err := NewFromConfig(config.SMSConfig{Enabled: true}, "IR")
		assert.Error(t, err)
	})

	t.Run("enabled with key", func(t *testing.T) {
		c, err := NewFromConfig(config.SMSConfig{
			Enabled: true,
			SMSIR:   config.SMSIRConfig{APIKey: "k", SecretKey: "s", ReminderTemplateID: "42"},
		}, "IR")
		require.NoError(t, err)
		assert.True(t, c.Enabled())
	})
}

func TestDisabledClientIsNoop(t *testing.T) {
	c, err := NewFromConfig(config.SMSConfig{}, "IR")
	require.NoError(t, err)
	assert.NoError(t, c.SendReminder(context.Background(), "not a phone", nil))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		region string
		want   string
		ok     bool
	}{
		{"local iranian mobile", "09121234567", "IR", "+989121234567", true},
		{"already e164", "+989121234567", "US", "+989121234567", true},
		{"us number", "(201) 555-0123", "US", "+12015550123", true},
		{"empty", "  ", "IR", "", false},
		{"letters", "call me", "IR", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in, tt.region)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidPhone)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
