package repository

import (
	"Tipwall/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccessRepo interface {
	Grant(ctx context.Context, access *model.ContentAccess) error
	HasAccess(ctx context.Context, contentID, replyID uint64, viewer string) (bool, error)
}

type AccessRepoImpl struct {
	db *gorm.DB
}

func NewAccessRepo(db *gorm.DB) AccessRepo {
	return &AccessRepoImpl{db: db}
}

// Grant 幂等写入，重复解锁不会产生第二条记录
func (s *AccessRepoImpl) Grant(ctx context.Context, access *model.ContentAccess) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(access).Error
}

func (s *AccessRepoImpl) HasAccess(ctx context.Context, contentID, replyID uint64, viewer string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.ContentAccess{}).
		Where("content_id = ? AND reply_id = ? AND viewer_address = ?", contentID, replyID, viewer).
		Count(&count).Error
	return count > 0, err
}
