package codestore

import (
	"context"
	"sync"
	"time"
)

// Memory is a mutex-guarded in-process Store. Codes are lost on restart.
// A background sweeper evicts expired entries so abandoned signups don't
// accumulate for the lifetime of the process.
type Memory struct {
	mu      sync.Mutex
	codes   map[string]Entry
	byEmail map[string]string // email -> live code
	done    chan struct{}
	once    sync.Once
}

func NewMemory() *Memory {
	m := &Memory{
		codes:   make(map[string]Entry),
		byEmail: make(map[string]string),
		done:    make(chan struct{}),
	}

	go m.sweepLoop()

	return m
}

func (m *Memory) Put(ctx context.Context, code string, entry Entry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Supersede any prior code for this email
	if prior, ok := m.byEmail[entry.Email]; ok {
		delete(m.codes, prior)
	}

	entry.ExpiresAt = time.Now().Add(ttl)
	m.codes[code] = entry
	m.byEmail[entry.Email] = code
	return nil
}

func (m *Memory) Consume(ctx context.Context, code string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.codes[code]
	if !ok {
		return Entry{}, ErrNotFound
	}
	m.remove(code)
	return entry, nil
}

func (m *Memory) DeleteByEmail(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if code, ok := m.byEmail[email]; ok {
		m.remove(code)
	}
	return nil
}

func (m *Memory) Close() error {
	m.once.Do(func() {
		close(m.done)
	})
	return nil
}

// remove deletes a code and its email index entry. Caller must hold the lock.
func (m *Memory) remove(code string) {
	entry, ok := m.codes[code]
	if !ok {
		return
	}
	delete(m.codes, code)
	if m.byEmail[entry.Email] == code {
		delete(m.byEmail, entry.Email)
	}
}

func (m *Memory) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep(time.Now())
		}
	}
}

func (m *Memory) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for code, entry := range m.codes {
		if entry.Expired(now) {
			m.remove(code)
		}
	}
}
