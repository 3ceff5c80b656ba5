// Package codestore holds outstanding one-time verification codes.
//
// Codes are keyed by their plaintext value and carry the email they were
// issued for plus optional signup payload. At most one live code exists per
// email: issuing a new code supersedes any prior one. Entries are single-use
// and expire after their TTL.
package codestore

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("code not found")

// Entry is the payload associated with an outstanding code.
type Entry struct {
	Email       string    `json:"email"`
	Name        string    `json:"name,omitempty"`
	CompanyName string    `json:"companyName,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (e Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Store is the keyed code store. The in-memory implementation backs
// single-process deployments and tests; the Redis implementation shares
// codes across instances.
type Store interface {
	// Put stores the entry under code, replacing any prior code for the
	// same email.
	Put(ctx context.Context, code string, entry Entry, ttl time.Duration) error

	// Consume atomically removes the code and returns its entry, or
	// ErrNotFound. Of N concurrent consumers exactly one wins. Expiry is
	// not checked here; callers decide what an expired entry means.
	Consume(ctx context.Context, code string) (Entry, error)

	// DeleteByEmail removes all codes issued for email.
	DeleteByEmail(ctx context.Context, email string) error

	Close() error
}
