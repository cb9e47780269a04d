package chatsvc

import (
	"sync"
	"time"
)

type idempotencyEntry struct {
	result   *SendMessageResult
	storedAt time.Time
}

// IdempotencyCache maps a client-supplied key to the result of a previously
// completed send, so retries of a timed-out send return the original message
// instead of creating a second row. Entries live for a fixed window and are
// removed by a periodic sweep; nothing is evicted early. Keys whose first
// send has not completed yet are tracked separately so a concurrent retry
// waits for the original instead of racing it into a second row.
type IdempotencyCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	entries  map[string]idempotencyEntry
	inflight map[string]chan struct{}
}

func NewIdempotencyCache(ttl time.Duration) *IdempotencyCache {
	return &IdempotencyCache{
		ttl:      ttl,
		entries:  make(map[string]idempotencyEntry),
		inflight: make(map[string]chan struct{}),
	}
}

// cacheKey scopes keys per user so two users reusing the same token never
// collide.
func cacheKey(userID, key string) string { return userID + "\x00" + key }

// Get returns the cached result for (userID, key) if it is still inside the
// window.
func (c *IdempotencyCache) Get(userID, key string) (*SendMessageResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[cacheKey(userID, key)]
	if !ok {
		return nil, false
	}
	if time.Since(entry.storedAt) > c.ttl {
		delete(c.entries, cacheKey(userID, key))
		return nil, false
	}
	return entry.result, true
}

// TryBegin claims the key for the calling send. On success it returns a
// release func the caller must invoke once the send has completed (after
// Put on success, without it on failure). When another send already holds
// the key, release is nil and inflight signals that send's completion;
// the caller waits on it and re-reads the cache.
func (c *IdempotencyCache) TryBegin(userID, key string) (release func(), inflight <-chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := cacheKey(userID, key)
	if ch, ok := c.inflight[k]; ok {
		return nil, ch
	}

	ch := make(chan struct{})
	c.inflight[k] = ch
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.inflight, k)
		close(ch)
	}, nil
}

func (c *IdempotencyCache) Put(userID, key string, result *SendMessageResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(userID, key)] = idempotencyEntry{result: result, storedAt: time.Now()}
}

// Sweep drops every entry older than the window and returns how many were
// removed.
func (c *IdempotencyCache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.storedAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs the periodic sweep until stop is closed.
func (c *IdempotencyCache) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				c.Sweep(now)
			case <-stop:
				return
			}
		}
	}()
}
