package repository

import (
	"Tipwall/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EngagementRepo interface {
	CheckExists(ctx context.Context, contentID uint64, viewerID string, t model.EngagementType) (bool, error)
	GetVote(ctx context.Context, contentID uint64, viewerID string) (*model.Engagement, error)
	Delete(ctx context.Context, contentID uint64, viewerID string, t model.EngagementType) error
	Upsert(ctx context.Context, e *model.Engagement) error
	CountByType(ctx context.Context, contentID uint64) (up int64, down int64, err error)
	GetActiveContentIDs(ctx context.Context) ([]uint64, error)
}

type EngagementRepoImpl struct {
	db *gorm.DB
}

func NewEngagementRepo(db *gorm.DB) EngagementRepo {
	return &EngagementRepoImpl{db}
}

func (s *EngagementRepoImpl) CheckExists(ctx context.Context, contentID uint64, viewerID string, t model.EngagementType) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Engagement{}).
		Where("content_id = ? AND viewer_id = ? AND engagement_type = ?", contentID, viewerID, t).
		Count(&count).Error
	return count > 0, err
}

// GetVote 不存在时返回 nil, nil
func (s *EngagementRepoImpl) GetVote(ctx context.Context, contentID uint64, viewerID string) (*model.Engagement, error) {
	var e model.Engagement
	err := s.db.WithContext(ctx).
		Where("content_id = ? AND viewer_id = ?", contentID, viewerID).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *EngagementRepoImpl) Delete(ctx context.Context, contentID uint64, viewerID string, t model.EngagementType) error {
	return s.db.WithContext(ctx).
		Where("content_id = ? AND viewer_id = ? AND engagement_type = ?", contentID, viewerID, t).
		Delete(&model.Engagement{}).Error
}

// Upsert 依赖 (content_id, viewer_id) 唯一索引，并发时以最后一次写入为准
func (s *EngagementRepoImpl) Upsert(ctx context.Context, e *model.Engagement) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_id"}, {Name: "viewer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"engagement_type", "created_at"}),
	}).Create(e).Error
}

func (s *EngagementRepoImpl) CountByType(ctx context.Context, contentID uint64) (int64, int64, error) {
	var rows []struct {
		EngagementType model.EngagementType
		Total          int64
	}
	err := s.db.WithContext(ctx).Model(&model.Engagement{}).
		Select("engagement_type, COUNT(*) AS total").
		Where("content_id = ?", contentID).
		Group("engagement_type").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}

	var up, down int64
	for _, row := range rows {
		switch row.EngagementType {
		case model.Upvote:
			up = row.Total
		case model.Downvote:
			down = row.Total
		}
	}
	return up, down, nil
}

func (s *EngagementRepoImpl) GetActiveContentIDs(ctx context.Context) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.Engagement{}).
		Distinct("content_id").
		Pluck("content_id", &ids).Error
	return ids, err
}
