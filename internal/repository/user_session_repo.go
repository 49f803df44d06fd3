package repository

import (
	"Tipwall/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserSessionRepo interface {
	Upsert(ctx context.Context, session *model.UserSession) error
	GetByAddress(ctx context.Context, address string) (*model.UserSession, error)
	Touch(ctx context.Context, address string) error
}

type UserSessionRepoImpl struct {
	db *gorm.DB
}

func NewUserSessionRepo(db *gorm.DB) UserSessionRepo {
	return &UserSessionRepoImpl{db: db}
}

// Upsert 重复注册时刷新加密身份，注册时间保持不变
func (s *UserSessionRepoImpl) Upsert(ctx context.Context, session *model.UserSession) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"encrypted_identity", "proof", "tx_hash", "last_seen_at"}),
	}).Create(session).Error
}

// GetByAddress 不存在时返回 nil, nil
func (s *UserSessionRepoImpl) GetByAddress(ctx context.Context, address string) (*model.UserSession, error) {
	var session model.UserSession
	err := s.db.WithContext(ctx).Where("address = ?", address).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *UserSessionRepoImpl) Touch(ctx context.Context, address string) error {
	return s.db.WithContext(ctx).Model(&model.UserSession{}).
		Where("address = ?", address).
		Update("last_seen_at", time.Now()).Error
}
