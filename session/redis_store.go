package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares tokens across processes. Layout:
//
//	auth:token:<token>      -> Token JSON
//	auth:user_tokens:<uid>  -> set of the user's live tokens (for revoke-all)
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration // 0 = tokens never expire
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func tokenKey(token string) string { return fmt.Sprintf("auth:token:%s", token) }
func userSetKey(uid string) string { return fmt.Sprintf("auth:user_tokens:%s", uid) }

func (s *RedisStore) Create(ctx context.Context, token, userID string) error {
	now := time.Now()
	t := Token{UserID: userID, IssuedAt: now.Unix()}
	if s.ttl > 0 {
		t.ExpiresAt = now.Add(s.ttl).Unix()
	}
	b, _ := json.Marshal(t)

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, tokenKey(token), b, s.ttl)
	pipe.SAdd(ctx, userSetKey(userID), token)
	if s.ttl > 0 {
		pipe.Expire(ctx, userSetKey(userID), s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Token, error) {
	b, err := s.rdb.Get(ctx, tokenKey(token)).Bytes()
	if err == redis.Nil {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	var t Token
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	t, _ := s.Get(ctx, token) // 忽略失败
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, tokenKey(token))
	if t != nil {
		pipe.SRem(ctx, userSetKey(t.UserID), token)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) RevokeAllForUser(ctx context.Context, userID string) error {
	tokens, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	for _, token := range tokens {
		pipe.Del(ctx, tokenKey(token))
	}
	pipe.Del(ctx, userSetKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
