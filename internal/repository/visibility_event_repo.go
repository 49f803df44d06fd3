package repository

import (
	"Tipwall/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type VisibilityEventRepo interface {
	Append(ctx context.Context, event *model.VisibilityEvent) error
	GetLatest(ctx context.Context, contentID, replyID uint64) (*model.VisibilityEvent, error)
	ListByContent(ctx context.Context, contentID, replyID uint64, limit int) ([]*model.VisibilityEvent, error)
}

type visibilityEventRepoImpl struct {
	db *gorm.DB
}

func NewVisibilityEventRepo(db *gorm.DB) VisibilityEventRepo {
	return &visibilityEventRepoImpl{db: db}
}

func (r *visibilityEventRepoImpl) Append(ctx context.Context, event *model.VisibilityEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetLatest 取时间戳最大的一条事件，同一时间戳按自增 id 决胜；无事件时返回 nil, nil
func (r *visibilityEventRepoImpl) GetLatest(ctx context.Context, contentID, replyID uint64) (*model.VisibilityEvent, error) {
	var event model.VisibilityEvent
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND reply_id = ?", contentID, replyID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(1).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *visibilityEventRepoImpl) ListByContent(ctx context.Context, contentID, replyID uint64, limit int) ([]*model.VisibilityEvent, error) {
	events := make([]*model.VisibilityEvent, 0)
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND reply_id = ?", contentID, replyID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
