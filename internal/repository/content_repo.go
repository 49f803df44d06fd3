package repository

import (
	"Tipwall/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type ContentRepo interface {
	CreatePost(ctx context.Context, post *model.Content) error
	GetPostByLedgerID(ctx context.Context, ledgerID uint64) (*model.Content, error)
	GetPostsByLedgerIDs(ctx context.Context, ledgerIDs []uint64) ([]*model.Content, error)
	ListPosts(ctx context.Context, limit, offset int) ([]*model.Content, error)

	CreateReply(ctx context.Context, reply *model.Reply) error
	GetReplyByLedgerID(ctx context.Context, ledgerID uint64) (*model.Reply, error)
	GetRepliesByPostID(ctx context.Context, postID uint64, limit, offset int) ([]*model.Reply, error)
	CountRepliesByPostID(ctx context.Context, postID uint64) (int64, error)
}

type ContentRepoImpl struct {
	db *gorm.DB
}

func NewContentRepo(db *gorm.DB) ContentRepo {
	return &ContentRepoImpl{db}
}

// CreatePost 账本编号已存在时返回 ErrDuplicate
func (s *ContentRepoImpl) CreatePost(ctx context.Context, post *model.Content) error {
	return translate(s.db.WithContext(ctx).Create(post).Error)
}

// GetPostByLedgerID 不存在时返回 nil, nil
func (s *ContentRepoImpl) GetPostByLedgerID(ctx context.Context, ledgerID uint64) (*model.Content, error) {
	var post model.Content
	err := s.db.WithContext(ctx).Where("ledger_id = ?", ledgerID).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *ContentRepoImpl) GetPostsByLedgerIDs(ctx context.Context, ledgerIDs []uint64) ([]*model.Content, error) {
	var posts []*model.Content
	if len(ledgerIDs) == 0 {
		return posts, nil
	}
	err := s.db.WithContext(ctx).Where("ledger_id IN ?", ledgerIDs).Find(&posts).Error
	return posts, err
}

func (s *ContentRepoImpl) ListPosts(ctx context.Context, limit, offset int) ([]*model.Content, error) {
	var posts []*model.Content
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (s *ContentRepoImpl) CreateReply(ctx context.Context, reply *model.Reply) error {
	return translate(s.db.WithContext(ctx).Create(reply).Error)
}

// GetReplyByLedgerID 不存在时返回 nil, nil
func (s *ContentRepoImpl) GetReplyByLedgerID(ctx context.Context, ledgerID uint64) (*model.Reply, error) {
	var reply model.Reply
	err := s.db.WithContext(ctx).Where("ledger_id = ?", ledgerID).First(&reply).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (s *ContentRepoImpl) GetRepliesByPostID(ctx context.Context, postID uint64, limit, offset int) ([]*model.Reply, error) {
	var replies []*model.Reply
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&replies).Error
	return replies, err
}

func (s *ContentRepoImpl) CountRepliesByPostID(ctx context.Context, postID uint64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Reply{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
