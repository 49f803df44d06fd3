package repository

import (
	"Tipwall/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostStatsRepo interface {
	Get(ctx context.Context, contentID uint64) (*model.PostStats, error)
	GetBatch(ctx context.Context, contentIDs []uint64) (map[uint64]*model.PostStats, error)
	UpsertVotes(ctx context.Context, contentID uint64, up, down int64) error
	UpsertReplyCount(ctx context.Context, contentID uint64, replyCount int64) error
}

type postStatsRepoImpl struct {
	db *gorm.DB
}

func NewPostStatsRepository(db *gorm.DB) PostStatsRepo {
	return &postStatsRepoImpl{db: db}
}

// Get 不存在时返回 nil, nil
func (r *postStatsRepoImpl) Get(ctx context.Context, contentID uint64) (*model.PostStats, error) {
	var stats model.PostStats
	err := r.db.WithContext(ctx).Where("content_id = ?", contentID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *postStatsRepoImpl) GetBatch(ctx context.Context, contentIDs []uint64) (map[uint64]*model.PostStats, error) {
	res := make(map[uint64]*model.PostStats, len(contentIDs))
	if len(contentIDs) == 0 {
		return res, nil
	}
	var list []*model.PostStats
	if err := r.db.WithContext(ctx).Where("content_id IN ?", contentIDs).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, s := range list {
		res[s.ContentID] = s
	}
	return res, nil
}

// UpsertVotes 只覆盖投票数，保留已有的 reply_count
func (r *postStatsRepoImpl) UpsertVotes(ctx context.Context, contentID uint64, up, down int64) error {
	stats := &model.PostStats{
		ContentID:     contentID,
		UpvoteCount:   up,
		DownvoteCount: down,
		LastUpdated:   time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"upvote_count", "downvote_count", "last_updated"}),
	}).Create(stats).Error
}

// UpsertReplyCount 只覆盖回复数，保留已有的投票数
func (r *postStatsRepoImpl) UpsertReplyCount(ctx context.Context, contentID uint64, replyCount int64) error {
	stats := &model.PostStats{
		ContentID:   contentID,
		ReplyCount:  replyCount,
		LastUpdated: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"reply_count", "last_updated"}),
	}).Create(stats).Error
}
