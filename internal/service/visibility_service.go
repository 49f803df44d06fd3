package service

import (
	"Tipwall/internal/model"
	"Tipwall/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"time"
)

// VisibilityResult 当前可见性。Found 为 false 时是失败即锁定的默认值
type VisibilityResult struct {
	Visibility model.Visibility `json:"visibility"`
	EventType  model.EventType  `json:"eventType"`
	IsCached   bool             `json:"isCached"`
	Found      bool             `json:"found"`
}

func failClosed() *VisibilityResult {
	return &VisibilityResult{
		Visibility: model.VisibilityTippable,
		EventType:  model.EventCreated,
	}
}

type VisibilityService interface {
	GetVisibility(ctx context.Context, contentID, replyID uint64) (*VisibilityResult, error)
	AppendEvent(ctx context.Context, event *model.VisibilityEvent) error
	History(ctx context.Context, contentID, replyID uint64, limit int) ([]*model.VisibilityEvent, error)
}

type VisibilityServiceImpl struct {
	eventRepo repository.VisibilityEventRepo
	cache     *VisibilityCache
	publisher Publisher
	now       func() time.Time
}

func NewVisibilityService(eventRepo repository.VisibilityEventRepo, cache *VisibilityCache, publisher Publisher) VisibilityService {
	return &VisibilityServiceImpl{
		eventRepo: eventRepo,
		cache:     cache,
		publisher: publisher,
		now:       time.Now,
	}
}

// GetVisibility 读取失败时同样返回锁定的默认值，调用方可只记录错误
func (s *VisibilityServiceImpl) GetVisibility(ctx context.Context, contentID, replyID uint64) (*VisibilityResult, error) {
	if entry, ok := s.cache.Get(contentID, replyID); ok {
		return &VisibilityResult{
			Visibility: entry.Visibility,
			EventType:  entry.EventType,
			IsCached:   true,
			Found:      true,
		}, nil
	}

	event, err := s.eventRepo.GetLatest(ctx, contentID, replyID)
	if err != nil {
		return failClosed(), fmt.Errorf("load latest visibility event: %w", err)
	}
	if event == nil {
		return failClosed(), nil
	}

	s.cache.Put(contentID, replyID, event.VisibilityType, event.EventType, event.CreatedAt)
	return &VisibilityResult{
		Visibility: event.VisibilityType,
		EventType:  event.EventType,
		Found:      true,
	}, nil
}

// AppendEvent 追加事件并广播，广播负责刷新缓存
func (s *VisibilityServiceImpl) AppendEvent(ctx context.Context, event *model.VisibilityEvent) error {
	if !event.VisibilityType.Valid() {
		return ErrParamInvalid
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	// 与 datetime(3) 列精度一致，广播与存储中的时间可直接比较
	event.CreatedAt = event.CreatedAt.Truncate(time.Millisecond)
	if err := s.eventRepo.Append(ctx, event); err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.Publish(ctx, ChangeFromEvent(event))
	} else {
		s.cache.Invalidate(event.ContentID, event.ReplyID)
	}
	log.InfoContext(ctx, "visibility event appended",
		"content_id", event.ContentID, "reply_id", event.ReplyID,
		"visibility", event.VisibilityType, "event", event.EventType)
	return nil
}

func (s *VisibilityServiceImpl) History(ctx context.Context, contentID, replyID uint64, limit int) ([]*model.VisibilityEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.eventRepo.ListByContent(ctx, contentID, replyID, limit)
}
