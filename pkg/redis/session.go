package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// SessionStore keeps login sessions as session:<sid> -> account id.
type SessionStore struct {
	rdb *goredis.Client
}

func NewSessionStore(rdb *goredis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(sid uuid.UUID) string { return "session:" + sid.String() }

// accountSessionsKey indexes every live session of an account so they can
// be revoked together.
func accountSessionsKey(accountID uuid.UUID) string { return "account_sessions:" + accountID.String() }

func (s *SessionStore) Create(ctx context.Context, sid, accountID uuid.UUID, ttl time.Duration) error {
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, sessionKey(sid), accountID.String(), ttl)
	pipe.SAdd(ctx, accountSessionsKey(accountID), sid.String())
	pipe.Expire(ctx, accountSessionsKey(accountID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Account returns the account a live session belongs to.
func (s *SessionStore) Account(ctx context.Context, sid uuid.UUID) (uuid.UUID, error) {
	v, err := s.rdb.Get(ctx, sessionKey(sid)).Result()
	if errors.Is(err, goredis.Nil) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("get session: %w", err)
	}
	return uuid.Parse(v)
}

// Touch extends a live session.
func (s *SessionStore) Touch(ctx context.Context, sid uuid.UUID, ttl time.Duration) error {
	ok, err := s.rdb.Expire(ctx, sessionKey(sid), ttl).Result()
	if err != nil {
		return fmt.Errorf("extend session: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// Delete removes one session. A session that already expired is not an error.
func (s *SessionStore) Delete(ctx context.Context, sid, accountID uuid.UUID) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, sessionKey(sid))
	pipe.SRem(ctx, accountSessionsKey(accountID), sid.String())
	_, err := pipe.Exec(ctx)
	return err
}

// DeleteAll revokes every session of the account, e.g. after deactivation.
func (s *SessionStore) DeleteAll(ctx context.Context, accountID uuid.UUID) error {
	sids, err := s.rdb.SMembers(ctx, accountSessionsKey(accountID)).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("list sessions: %w", err)
	}
	keys := make([]string, 0, len(sids)+1)
	for _, sid := range sids {
		keys = append(keys, "session:"+sid)
	}
	keys = append(keys, accountSessionsKey(accountID))
	return s.rdb.Del(ctx, keys...).Err()
}
