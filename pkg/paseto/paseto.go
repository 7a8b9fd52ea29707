package pasetotoken

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

type Config struct {
	Mode Mode

	Issuer   string
	Audience string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	Implicit []byte
}

type Manager struct {
	cfg   Config
	keys  Keys
	parse paseto.Parser
}

func New(cfg Config, keys Keys) (*Manager, error) {
	if cfg.Mode != keys.Mode {
		return nil, misconfigured("cfg.Mode must match keys.Mode")
	}
	if cfg.Issuer == "" {
		return nil, misconfigured("Issuer is required")
	}
	if cfg.Audience == "" {
		cfg.Audience = cfg.Issuer
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}

	// NewParser already rejects expired tokens.
	p := paseto.NewParser()
	p.AddRule(paseto.IssuedBy(cfg.Issuer))
	p.AddRule(paseto.ForAudience(cfg.Audience))

	return &Manager{cfg: cfg, keys: keys, parse: p}, nil
}

func (m *Manager) AccessTTL() time.Duration  { return m.cfg.AccessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.cfg.RefreshTTL }

func (m *Manager) IssueAccess(accountID, sessionID uuid.UUID) (string, error) {
	return m.issue(TokenTypeAccess, accountID, sessionID, m.cfg.AccessTTL)
}

func (m *Manager) IssueRefresh(accountID, sessionID uuid.UUID) (string, error) {
	return m.issue(TokenTypeRefresh, accountID, sessionID, m.cfg.RefreshTTL)
}

func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	var (
		tok *paseto.Token
		err error
	)

	switch m.cfg.Mode {
	case ModeLocal:
		if m.keys.Symmetric == nil {
			return nil, misconfigured("missing symmetric key")
		}
		tok, err = m.parse.ParseV4Local(*m.keys.Symmetric, tokenStr, m.cfg.Implicit)
	case ModePublic:
		if m.keys.Public == nil {
			return nil, misconfigured("missing public key")
		}
		tok, err = m.parse.ParseV4Public(*m.keys.Public, tokenStr, m.cfg.Implicit)
	default:
		return nil, misconfigured("unknown mode")
	}

	if err != nil {
		return nil, invalidToken(err)
	}

	claims, err := extractClaims(tok, m.cfg.Issuer, m.cfg.Audience)
	if err != nil {
		return nil, invalidToken(err)
	}

	return claims, nil
}

func (m *Manager) issue(tt TokenType, accountID, sessionID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()

	tok := paseto.NewToken()
	tok.SetIssuer(m.cfg.Issuer)
	tok.SetAudience(m.cfg.Audience)
	tok.SetJti(randHex(16))
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(now.Add(ttl))
	tok.SetSubject(accountID.String())
	tok.SetString("typ", string(tt))
	tok.SetString("sid", sessionID.String())

	switch m.cfg.Mode {
	case ModeLocal:
		if m.keys.Symmetric == nil {
			return "", misconfigured("missing symmetric key")
		}
		return tok.V4Encrypt(*m.keys.Symmetric, m.cfg.Implicit), nil
	case ModePublic:
		if m.keys.Secret == nil {
			return "", misconfigured("missing secret key")
		}
		return tok.V4Sign(*m.keys.Secret, m.cfg.Implicit), nil
	default:
		return "", misconfigured("unknown mode")
	}
}

func randHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func extractClaims(tok *paseto.Token, iss, aud string) (*Claims, error) {
	jti, err := tok.GetJti()
	if err != nil {
		return nil, err
	}
	sub, err := tok.GetSubject()
	if err != nil {
		return nil, err
	}
	accountID, err := uuid.Parse(sub)
	if err != nil {
		return nil, err
	}
	iat, err := tok.GetIssuedAt()
	if err != nil {
		return nil, err
	}
	exp, err := tok.GetExpiration()
	if err != nil {
		return nil, err
	}
	typ, err := tok.GetString("typ")
	if err != nil {
		return nil, err
	}
	sidStr, err := tok.GetString("sid")
	if err != nil {
		return nil, err
	}
	sid, err := uuid.Parse(sidStr)
	if err != nil {
		return nil, err
	}

	return &Claims{
		Type:      TokenType(typ),
		AccountID: accountID,
		SessionID: &sid,
		Issuer:    iss,
		Audience:  aud,
		IssuedAt:  iat,
		ExpiresAt: exp,
		TokenID:   jti,
	}, nil
}
