package service

import (
	"Tipwall/internal/model"
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheEntry 某条内容当前可见性的本地记忆，EventAt 为对应事件的发生时间
type CacheEntry struct {
	Visibility model.Visibility
	EventType  model.EventType
	EventAt    time.Time
	InsertedAt time.Time
}

// VisibilityCache 进程内 TTL 缓存，由拥有者显式创建并注入，不跨进程共享。
// 不启动后台清理协程，过期条目在 Get 时或由 Run 周期性清除
type VisibilityCache struct {
	mu    sync.Mutex
	store *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

type CacheOption func(*VisibilityCache)

// WithClock 替换时间源
func WithClock(now func() time.Time) CacheOption {
	return func(c *VisibilityCache) {
		c.now = now
	}
}

func NewVisibilityCache(ttl time.Duration, opts ...CacheOption) *VisibilityCache {
	c := &VisibilityCache{
		store: cache.New(ttl, 0),
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cacheKey(contentID, replyID uint64) string {
	if replyID == 0 {
		return strconv.FormatUint(contentID, 10)
	}
	return strconv.FormatUint(contentID, 10) + ":" + strconv.FormatUint(replyID, 10)
}

// Get 命中且未超过 TTL 时返回条目，过期条目顺带清除
func (c *VisibilityCache) Get(contentID, replyID uint64) (CacheEntry, bool) {
	key := cacheKey(contentID, replyID)
	v, found := c.store.Get(key)
	if !found {
		return CacheEntry{}, false
	}
	entry := v.(CacheEntry)
	if c.now().Sub(entry.InsertedAt) >= c.ttl {
		c.store.Delete(key)
		return CacheEntry{}, false
	}
	return entry, true
}

// Put 写入从存储读到的最新事件，返回是否写入
func (c *VisibilityCache) Put(contentID, replyID uint64, visibility model.Visibility, eventType model.EventType, eventAt time.Time) bool {
	return c.put(contentID, replyID, visibility, eventType, eventAt)
}

// Refresh 用广播来的变化更新条目，返回是否写入
func (c *VisibilityCache) Refresh(change VisibilityChange) bool {
	return c.put(change.ContentID, change.ReplyID, change.Visibility, change.EventType, change.Timestamp)
}

// put 早于已缓存事件的变化被忽略；时间相同而内容不同时无法判定先后，清除条目交给存储裁决
func (c *VisibilityCache) put(contentID, replyID uint64, visibility model.Visibility, eventType model.EventType, eventAt time.Time) bool {
	key := cacheKey(contentID, replyID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if eventAt.IsZero() {
		c.store.Delete(key)
		return false
	}

	v, found := c.store.Get(key)
	if found && c.now().Sub(v.(CacheEntry).InsertedAt) >= c.ttl {
		c.store.Delete(key)
		found = false
	}
	if found {
		cur := v.(CacheEntry)
		if cur.EventAt.After(eventAt) {
			return false
		}
		if cur.EventAt.Equal(eventAt) && (cur.Visibility != visibility || cur.EventType != eventType) {
			c.store.Delete(key)
			return false
		}
	}

	c.store.Set(key, CacheEntry{
		Visibility: visibility,
		EventType:  eventType,
		EventAt:    eventAt,
		InsertedAt: c.now(),
	}, cache.DefaultExpiration)
	return true
}

func (c *VisibilityCache) Invalidate(contentID, replyID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Delete(cacheKey(contentID, replyID))
}

func (c *VisibilityCache) Clear() {
	c.store.Flush()
}

func (c *VisibilityCache) Len() int {
	return c.store.ItemCount()
}

func (c *VisibilityCache) TTL() time.Duration {
	return c.ttl
}

// Sweep 清除按时间源已过期的条目，返回清除数量
func (c *VisibilityCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.DeleteExpired()
	removed := 0
	for key, item := range c.store.Items() {
		if c.now().Sub(item.Object.(CacheEntry).InsertedAt) >= c.ttl {
			c.store.Delete(key)
			removed++
		}
	}
	return removed
}

// Run 按 interval 周期清理，直到 ctx 结束
func (c *VisibilityCache) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.Sweep()
		}
	}
}
