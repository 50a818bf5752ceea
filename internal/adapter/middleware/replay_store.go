package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const replayKeyPrefix = "srp:replay:"

// replayEntry is what the store keeps per (route, user, request id). Pending
// entries hold only the body fingerprint; settled ones carry the response.
type replayEntry struct {
	Pending     bool      `json:"pending"`
	Status      int       `json:"status,omitempty"`
	Response    []byte    `json:"response,omitempty"`
	Fingerprint string    `json:"fingerprint"`
	RequestID   string    `json:"request_id"`
	RequestAtMS int64     `json:"request_at_ms,omitempty"`
	StoredAt    time.Time `json:"stored_at"`
}

// replayable reports whether the entry holds a response that can be sent again.
func (e replayEntry) replayable() bool {
	return !e.Pending && e.Status != 0 && len(e.Response) > 0
}

// fingerprint identifies a request body; a request id reused with another
// fingerprint is a client error.
func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// replayKey scopes a request id to the route and the canonical user id, so
// "042" and "42" share a key while two users never do.
func replayKey(method, route string, userID uint64, reqID string) string {
	return fmt.Sprintf("%s%s:%s:%d:%s", replayKeyPrefix, strings.ToLower(method), route, userID, reqID)
}

var errEntryMissing = errors.New("replay entry missing")

// replayStore keeps mutating responses in Redis keyed by replayKey.
type replayStore struct {
	rdb      *redis.Client
	claimTTL time.Duration
	keepTTL  time.Duration
}

func newReplayStore(rdb *redis.Client, claimTTL, keepTTL time.Duration) *replayStore {
	return &replayStore{rdb: rdb, claimTTL: claimTTL, keepTTL: keepTTL}
}

// claim stores a pending entry unless the key is already taken.
func (s *replayStore) claim(ctx context.Context, key string, e replayEntry) (bool, error) {
	e.Pending = true
	payload, err := json.Marshal(e)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, payload, s.claimTTL).Result()
}

func (s *replayStore) load(ctx context.Context, key string) (replayEntry, error) {
	var e replayEntry
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return e, errEntryMissing
	}
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, fmt.Errorf("decode replay entry %s: %w", key, err)
	}
	return e, nil
}

// settle replaces the pending entry with the final response for keepTTL.
func (s *replayStore) settle(ctx context.Context, key string, e replayEntry) error {
	e.Pending = false
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, payload, s.keepTTL).Err()
}

// release drops the key so the same request id can be retried.
func (s *replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
