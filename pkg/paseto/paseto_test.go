package pasetotoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, keys Keys, ttl time.Duration) *Manager {
	t.Helper()
	m, err := New(Config{
		Mode:       keys.Mode,
		Issuer:     "mindbook",
		AccessTTL:  ttl,
		RefreshTTL: time.Hour,
	}, keys)
	require.NoError(t, err)
	return m
}

func TestIssueAndVerify(t *testing.T) {
	for name, keys := range map[string]Keys{"local": NewLocalKeys(), "public": NewPublicKeys()} {
		t.Run(name, func(t *testing.T) {
			m := newTestManager(t, keys, time.Minute)
			accountID, sessionID := uuid.New(), uuid.New()

			tok, err := m.IssueAccess(accountID, sessionID)
			require.NoError(t, err)

			claims, err := m.Verify(tok)
			require.NoError(t, err)
			assert.True(t, claims.IsAccess())
			assert.Equal(t, accountID, claims.AccountID)
			require.NotNil(t, claims.SessionID)
			assert.Equal(t, sessionID, *claims.SessionID)
			assert.False(t, claims.IsExpired())

			refresh, err := m.IssueRefresh(accountID, sessionID)
			require.NoError(t, err)
			rc, err := m.Verify(refresh)
			require.NoError(t, err)
			assert.True(t, rc.IsRefresh())
		})
	}
}

func TestVerify_Rejects(t *testing.T) {
	m := newTestManager(t, NewLocalKeys(), time.Minute)
	other := newTestManager(t, NewLocalKeys(), time.Minute)

	tok, err := other.IssueAccess(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken, "token from another key must be rejected")

	_, err = m.Verify("v4.local.garbage")
	assert.Error(t, err)
}

func TestVerify_Expired(t *testing.T) {
	m := newTestManager(t, NewLocalKeys(), time.Nanosecond)
	tok, err := m.IssueAccess(uuid.New(), uuid.New())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = m.Verify(tok)
	assert.Error(t, err)
}

func TestNew_ModeMismatch(t *testing.T) {
	_, err := New(Config{Mode: ModePublic, Issuer: "x"}, NewLocalKeys())
	assert.Error(t, err)
}

func TestLoadKeysErrors(t *testing.T) {
	tests := []struct {
		name string
		in   KeyStrings
	}{
		{"unknown mode", KeyStrings{Mode: "hybrid"}},
		{"local without key", KeyStrings{Mode: ModeLocal}},
		{"local bad hex", KeyStrings{Mode: ModeLocal, SymmetricHex: "zz"}},
		{"public without keys", KeyStrings{Mode: ModePublic}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadKeys(tt.in)
			assert.ErrorIs(t, err, ErrMisconfigured)
		})
	}
}

func TestClaimsKindNeedsSession(t *testing.T) {
	sid := uuid.New()
	assert.True(t, (&Claims{Type: TokenTypeAccess, SessionID: &sid}).IsAccess())
	assert.False(t, (&Claims{Type: TokenTypeAccess}).IsAccess())
	assert.False(t, (&Claims{Type: TokenTypeAccess, SessionID: &sid}).IsRefresh())
	assert.True(t, (&Claims{ExpiresAt: time.Now().Add(-time.Second)}).IsExpired())
}
