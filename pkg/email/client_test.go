package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enabled(t *testing.T) *Client {
	t.Helper()
	c, err := New(Config{Enabled: true, From: "care@mindbook.test", SMTPHost: "smtp.mindbook.test", SMTPPort: 587})
	require.NoError(t, err)
	return c
}

func TestNewRequiresHostAndFrom(t *testing.T) {
	_, err := New(Config{Enabled: true, From: "care@mindbook.test"})
	assert.Error(t, err)
	_, err = New(Config{Enabled: true, SMTPHost: "smtp.mindbook.test"})
	assert.Error(t, err)

	c, err := New(Config{})
	require.NoError(t, err)
	assert.ErrorAs(t, c.Send(context.Background(), Message{}), &ErrDisabled{})
}

func TestComposeSingleRecipient(t *testing.T) {
	msg, err := enabled(t).compose(Message{To: []string{" Sara@Mindbook.test "}, Subject: "Hi", TextBody: "hello"})
	require.NoError(t, err)
	assert.Equal(t, []string{"sara@mindbook.test"}, msg.GetHeader("To"))
	assert.Empty(t, msg.GetHeader("Bcc"))
}

func TestComposeHidesAdminList(t *testing.T) {
	msg, err := enabled(t).compose(Message{
		To:       []string{"a@mindbook.test", "b@mindbook.test", "A@mindbook.test"},
		Subject:  "Callback requested",
		HTMLBody: "<p>call back</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"care@mindbook.test"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"a@mindbook.test", "b@mindbook.test"}, msg.GetHeader("Bcc"))
}

func TestComposeRejectsIncompleteMessages(t *testing.T) {
	c := enabled(t)
	for name, m := range map[string]Message{
		"no recipients": {Subject: "x", TextBody: "x"},
		"no subject":    {To: []string{"a@mindbook.test"}, TextBody: "x"},
		"no body":       {To: []string{"a@mindbook.test"}, Subject: "x"},
	} {
		_, err := c.compose(m)
		assert.ErrorAs(t, err, &ErrInvalidMessage{}, name)
	}
}
