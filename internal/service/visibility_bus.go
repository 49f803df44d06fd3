package service

import (
	"Tipwall/internal/model"
	"context"
	log "log/slog"
	"sync"
	"time"
)

const defaultSubscriptionBuffer = 16

// VisibilityChange 一次可见性变化通知
type VisibilityChange struct {
	ContentID   uint64            `json:"contentId"`
	ReplyID     uint64            `json:"replyId"`
	ContentType model.ContentType `json:"contentType"`
	Visibility  model.Visibility  `json:"visibility"`
	EventType   model.EventType   `json:"eventType"`
	Actor       string            `json:"actor,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// ChangeFromEvent 由事件记录构造通知
func ChangeFromEvent(event *model.VisibilityEvent) VisibilityChange {
	return VisibilityChange{
		ContentID:   event.ContentID,
		ReplyID:     event.ReplyID,
		ContentType: event.ContentType,
		Visibility:  event.VisibilityType,
		EventType:   event.EventType,
		Actor:       event.Actor,
		Timestamp:   event.CreatedAt,
	}
}

// Publisher 发布可见性变化
type Publisher interface {
	Publish(ctx context.Context, change VisibilityChange)
}

// Subscription 一个订阅句柄，Unsubscribe 后 C() 被关闭
type Subscription struct {
	id        uint64
	contentID uint64
	all       bool
	ch        chan VisibilityChange
	bus       *VisibilityBus
	once      sync.Once
}

func (s *Subscription) C() <-chan VisibilityChange {
	return s.ch
}

// Unsubscribe 可重复调用
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.remove(s.id)
	})
}

func (s *Subscription) matches(change VisibilityChange) bool {
	return s.all || s.contentID == change.ContentID
}

// VisibilityBus 进程内的可见性变化广播，发布时先刷新缓存再投递
type VisibilityBus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*Subscription
	cache  *VisibilityCache
	buffer int
}

func NewVisibilityBus(cache *VisibilityCache) *VisibilityBus {
	return &VisibilityBus{
		subs:   make(map[uint64]*Subscription),
		cache:  cache,
		buffer: defaultSubscriptionBuffer,
	}
}

// Subscribe 订阅某个帖子(含其回复)的变化
func (b *VisibilityBus) Subscribe(contentID uint64) *Subscription {
	return b.add(contentID, false)
}

// SubscribeAll 订阅全部变化
func (b *VisibilityBus) SubscribeAll() *Subscription {
	return b.add(0, true)
}

func (b *VisibilityBus) add(contentID uint64, all bool) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscription{
		id:        b.nextID,
		contentID: contentID,
		all:       all,
		ch:        make(chan VisibilityChange, b.buffer),
		bus:       b,
	}
	b.subs[sub.id] = sub
	return sub
}

func (b *VisibilityBus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// Publish 刷新缓存后非阻塞投递，订阅者积压时丢弃该通知。
// 迟到的旧变化不覆盖缓存，但仍投递给订阅者
func (b *VisibilityBus) Publish(ctx context.Context, change VisibilityChange) {
	if b.cache != nil {
		if change.Visibility.Valid() {
			if !b.cache.Refresh(change) {
				log.DebugContext(ctx, "visibility change not applied to cache",
					"content_id", change.ContentID, "reply_id", change.ReplyID, "event_at", change.Timestamp)
			}
		} else {
			b.cache.Invalidate(change.ContentID, change.ReplyID)
		}
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !sub.matches(change) {
			continue
		}
		select {
		case sub.ch <- change:
		default:
			log.WarnContext(ctx, "visibility subscriber lagging, change dropped",
				"subscription", sub.id, "content_id", change.ContentID, "reply_id", change.ReplyID)
		}
	}
}

// SubscriberCount 当前订阅数
func (b *VisibilityBus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
