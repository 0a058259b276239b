package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yeremiapane/restaurant-ordering/models"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

// touchSessionScript extends a session only if it still exists, so a refresh
// racing a logout cannot resurrect it.
var touchSessionScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('PEXPIRE', KEYS[1], ARGV[1])
return 1
`)

// RedisSessionStore keeps sessions as Redis hashes that expire with the
// session, so every API instance sees the same logins and logouts.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (r *RedisSessionStore) Create(ctx context.Context, userID uint, role models.Role, ttl time.Duration) (*Session, error) {
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		ExpiresAt: time.Now().Add(ttl),
	}

	key := sessionKeyPrefix + session.ID
	userKey := userSessionKey(userID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			"user_id": userID,
			"role":    string(role),
		})
		pipe.PExpire(ctx, key, ttl)
		pipe.SAdd(ctx, userKey, session.ID)
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	key := sessionKeyPrefix + id

	var fields *redis.MapStringStringCmd
	var ttl *redis.DurationCmd
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		fields = pipe.HGetAll(ctx, key)
		ttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	values := fields.Val()
	if len(values) == 0 || ttl.Val() <= 0 {
		return nil, ErrSessionNotFound
	}
	userID, err := strconv.ParseUint(values["user_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}

	return &Session{
		ID:        id,
		UserID:    uint(userID),
		Role:      models.Role(values["role"]),
		ExpiresAt: time.Now().Add(ttl.Val()),
	}, nil
}

func (r *RedisSessionStore) Touch(ctx context.Context, id string, ttl time.Duration) (*Session, error) {
	ok, err := touchSessionScript.Run(ctx, r.client, []string{sessionKeyPrefix + id}, ttl.Milliseconds()).Int()
	if err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}
	if ok != 1 {
		return nil, ErrSessionNotFound
	}

	session, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.client.Expire(ctx, userSessionKey(session.UserID), ttl).Err(); err != nil {
		return nil, fmt.Errorf("touch session index: %w", err)
	}
	return session, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	key := sessionKeyPrefix + id
	userID, err := r.client.HGet(ctx, key, "user_id").Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, userSessionKeyPrefix+userID, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteUser ends every session of the user, used when an account is removed
// or its role changes.
func (r *RedisSessionStore) DeleteUser(ctx context.Context, userID uint) error {
	userKey := userSessionKey(userID)
	ids, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKeyPrefix+id)
	}
	keys = append(keys, userKey)
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

func userSessionKey(userID uint) string {
	return userSessionKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}
