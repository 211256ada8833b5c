package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	tokensvc "fitfest/internal/token"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("refresh session not found")
	// ErrTokenReplayed is returned when a presented refresh token does not
	// match the stored value. The session is torn down before returning so
	// a stolen prior token cannot be raced against the current one.
	ErrTokenReplayed = errors.New("refresh token already rotated")
)

const (
	sessionKeyPrefix = "session:"
	lockKeyPrefix    = "lock:session:"
)

// Store persists refresh sessions in Redis. One key per session holding the
// owning user and the SHA-256 of the currently valid refresh token; the key
// TTL is the refresh token expiry.
type Store struct {
	cache  *redis.Client
	locker *redislock.Client
	ttl    time.Duration
}

func NewStore(cache *redis.Client, locker *redislock.Client, expiry int64) *Store {
	return &Store{
		cache:  cache,
		locker: locker,
		ttl:    time.Duration(expiry) * time.Second,
	}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Save creates the record for a freshly issued session.
func (s *Store) Save(ctx context.Context, userID, sessionID, tokenHash string) error {
	key := sessionKey(sessionID)
	pipe := s.cache.TxPipeline()
	pipe.HSet(ctx, key, "user_id", userID, "token_hash", tokenHash)
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Rotate atomically swaps the stored token hash for newTokenHash, provided
// the presented token matches the current record. The per-session lock
// serializes racing refresh calls; the loser re-reads the already-rotated
// hash, fails the comparison, and the session is deleted as a replay.
func (s *Store) Rotate(ctx context.Context, sessionID, presentedToken, newTokenHash string) (userID string, err error) {
	lock, err := s.locker.Obtain(ctx, lockKeyPrefix+sessionID, 2*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 10),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("obtain session lock: %w", err)
	}
	defer func() { _ = lock.Release(context.WithoutCancel(ctx)) }()

	key := sessionKey(sessionID)
	record, err := s.cache.HGetAll(ctx, key).Result()
	if err != nil {
		return "", err
	}
	if len(record) == 0 {
		return "", ErrSessionNotFound
	}

	stored := record["token_hash"]
	presented := tokensvc.HashToken(presentedToken)
	if subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		_ = s.cache.Del(ctx, key).Err()
		return "", ErrTokenReplayed
	}

	pipe := s.cache.TxPipeline()
	pipe.HSet(ctx, key, "token_hash", newTokenHash)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return record["user_id"], nil
}

// Verify checks a presented token without rotating it. Used by logout, where
// the record is about to be deleted anyway.
func (s *Store) Verify(ctx context.Context, sessionID, presentedToken string) (userID string, err error) {
	record, err := s.cache.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return "", err
	}
	if len(record) == 0 {
		return "", ErrSessionNotFound
	}
	if subtle.ConstantTimeCompare([]byte(record["token_hash"]), []byte(tokensvc.HashToken(presentedToken))) != 1 {
		return "", ErrTokenReplayed
	}
	return record["user_id"], nil
}

// Delete removes a session record. Deleting a missing session is not an
// error; logout must be idempotent.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Del(ctx, sessionKey(sessionID)).Err()
}
