package pasetotoken

import (
	"time"

	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is a verified token. SessionID is the Redis login session both
// tokens of a pair point at.
type Claims struct {
	Type      TokenType
	AccountID uuid.UUID
	SessionID *uuid.UUID

	Issuer    string
	Audience  string
	IssuedAt  time.Time
	ExpiresAt time.Time
	TokenID   string
}

func (c *Claims) Account() uuid.UUID { return c.AccountID }

func (c *Claims) IsExpired() bool { return !time.Now().Before(c.ExpiresAt) }

// IsAccess and IsRefresh also require a session, which every token this
// package issues carries.
func (c *Claims) IsAccess() bool { return c.Type == TokenTypeAccess && c.SessionID != nil }
func (c *Claims) IsRefresh() bool { return c.Type == TokenTypeRefresh && c.SessionID != nil }
