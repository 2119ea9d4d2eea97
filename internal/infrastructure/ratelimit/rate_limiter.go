package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket is a refilling bucket guarding one (user, action) pair.
type TokenBucket struct {
	tokens     int
	maxTokens  int
	refillRate int
	refillTime time.Duration
	lastRefill time.Time
	mutex      sync.Mutex
}

func NewTokenBucket(maxTokens, refillRate int, refillTime time.Duration) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		refillTime: refillTime,
		lastRefill: time.Now(),
	}
}

// Allow consumes a token if one is available and otherwise reports how long
// until the next refill.
func (tb *TokenBucket) Allow() (bool, time.Duration) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)
	tokensToAdd := int(elapsed/tb.refillTime) * tb.refillRate
	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.maxTokens {
			tb.tokens = tb.maxTokens
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true, 0
	}

	return false, tb.lastRefill.Add(tb.refillTime).Sub(now)
}

type bucketConfig struct {
	maxTokens  int
	refillRate int
	refillTime time.Duration
}

var actionConfigs = map[string]bucketConfig{
	"send_message":   {maxTokens: 20, refillRate: 10, refillTime: 10 * time.Second},
	"create_room":    {maxTokens: 5, refillRate: 5, refillTime: time.Minute},
	"friend_request": {maxTokens: 10, refillRate: 10, refillTime: time.Minute},
}

var defaultConfig = bucketConfig{maxTokens: 60, refillRate: 60, refillTime: time.Minute}

// RateLimiter tracks buckets per user and action.
type RateLimiter struct {
	buckets map[string]*TokenBucket
	mutex   sync.RWMutex
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*TokenBucket),
	}
}

func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	key := userID + ":" + action

	rl.mutex.RLock()
	bucket, exists := rl.buckets[key]
	rl.mutex.RUnlock()

	if !exists {
		rl.mutex.Lock()
		bucket, exists = rl.buckets[key]
		if !exists {
			cfg, ok := actionConfigs[action]
			if !ok {
				cfg = defaultConfig
			}
			bucket = NewTokenBucket(cfg.maxTokens, cfg.refillRate, cfg.refillTime)
			rl.buckets[key] = bucket
		}
		rl.mutex.Unlock()
	}

	return bucket.Allow()
}

// StartCleanupRoutine drops all buckets periodically so idle users do not
// accumulate forever. Buckets recreate full on next use.
func (rl *RateLimiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			rl.mutex.Lock()
			rl.buckets = make(map[string]*TokenBucket)
			rl.mutex.Unlock()
		}
	}()
}
