package codestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store backed by a shared Redis instance, for multi-instance
// deployments where any node may redeem a code issued by another. Entries
// expire via native TTL. A per-email index key preserves the one-live-code
// invariant across nodes.
type Redis struct {
	client redis.UniversalClient
}

var _ Store = (*Redis)(nil)

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func codeKey(code string) string   { return "authcode:" + code }
func emailKey(email string) string { return "authcode:email:" + email }

func (s *Redis) Put(ctx context.Context, code string, entry Entry, ttl time.Duration) error {
	// Supersede any prior code for this email
	prior, err := s.client.Get(ctx, emailKey(entry.Email)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("load prior code: %w", err)
	}
	if prior != "" {
		if err := s.client.Del(ctx, codeKey(prior)).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("delete prior code: %w", err)
		}
	}

	entry.ExpiresAt = time.Now().Add(ttl)
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := s.client.Set(ctx, codeKey(code), payload, ttl).Err(); err != nil {
		return fmt.Errorf("persist code: %w", err)
	}
	if err := s.client.Set(ctx, emailKey(entry.Email), code, ttl).Err(); err != nil {
		return fmt.Errorf("persist email index: %w", err)
	}
	return nil
}

func (s *Redis) Consume(ctx context.Context, code string) (Entry, error) {
	// GETDEL makes the winner of concurrent redemptions unambiguous
	bytes, err := s.client.GetDel(ctx, codeKey(code)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("consume code: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(bytes, &entry); err != nil {
		return Entry{}, fmt.Errorf("decode entry: %w", err)
	}

	// Drop the index only if it still points at this code
	current, err := s.client.Get(ctx, emailKey(entry.Email)).Result()
	if err == nil && current == code {
		if err := s.client.Del(ctx, emailKey(entry.Email)).Err(); err != nil && err != redis.Nil {
			return Entry{}, fmt.Errorf("delete email index: %w", err)
		}
	}
	return entry, nil
}

func (s *Redis) DeleteByEmail(ctx context.Context, email string) error {
	code, err := s.client.Get(ctx, emailKey(email)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("load email index: %w", err)
	}

	if err := s.client.Del(ctx, codeKey(code), emailKey(email)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("delete code: %w", err)
	}
	return nil
}

func (s *Redis) Close() error {
	return s.client.Close()
}
