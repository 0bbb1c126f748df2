// Package ratelimit bounds retry attempts per key within a decay window.
// Keys look like "login:1.2.3.4"; the counter resets on success or when
// the window expires.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Limiter interface {
	// TooManyAttempts reports whether the key has reached max attempts
	// inside the current decay window.
	TooManyAttempts(ctx context.Context, key string, max int) (bool, error)
	// Hit records a failed attempt; the first hit opens a window of ttl.
	Hit(ctx context.Context, key string, ttl time.Duration) error
	// Clear forgets the key (called on success).
	Clear(ctx context.Context, key string) error
}

type memoryEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryLimiter is a process-wide counter map with TTL. Shared by all
// request handlers in the process.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{entries: make(map[string]memoryEntry)}
}

func (l *MemoryLimiter) TooManyAttempts(_ context.Context, key string, max int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return false, nil
	}
	if time.Now().After(e.expiresAt) {
		delete(l.entries, key)
		return false, nil
	}
	return e.count >= max, nil
}

func (l *MemoryLimiter) Hit(_ context.Context, key string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.entries[key]
	if !ok || now.After(e.expiresAt) {
		l.entries[key] = memoryEntry{count: 1, expiresAt: now.Add(ttl)}
		return nil
	}
	e.count++
	l.entries[key] = e
	return nil
}

func (l *MemoryLimiter) Clear(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}
